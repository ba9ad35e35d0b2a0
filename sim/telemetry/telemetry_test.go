package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/freight-sim/sim"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, c.Write(&metric))
	return metric.Counter.GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, h.Write(&metric))
	return metric.Histogram.GetSampleCount()
}

func TestNewRegistry_InitializesMetrics(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.NotNil(t, r.RunsTotal)
	assert.NotNil(t, r.OffersTotal)
	assert.NotNil(t, r.TrialDuration)
	assert.NotNil(t, r.Gatherer())
}

func TestRegistry_OnDecision_CountsByOutcome(t *testing.T) {
	// GIVEN a fresh registry
	r := NewRegistry()

	// WHEN two accepted and one price-rejected decision arrive
	r.OnDecision(0, sim.Decision{Accepted: true, Offer: sim.Offer{Price: 30}})
	r.OnDecision(1, sim.Decision{Accepted: true, Offer: sim.Offer{Price: 12}})
	r.OnDecision(1, sim.Decision{Err: fmt.Errorf("offer 10: %w", sim.ErrPriceTooLow)})

	// THEN outcomes are counted under their labels and revenue is summed
	assert.Equal(t, 2.0, counterValue(t, r.OffersTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, counterValue(t, r.OffersTotal.WithLabelValues("price")))
	assert.Equal(t, 42.0, counterValue(t, r.AcceptedRevenue))
}

func TestRegistry_MarketEvents(t *testing.T) {
	r := NewRegistry()

	r.OnBankruptcy(3, sim.Bankruptcy{Company: "A"})
	r.OnEdgeExplosion(4, sim.Edge{U: 0, V: 1, Weight: 2})
	r.OnEdgeExplosion(5, sim.Edge{U: 1, V: 2, Weight: 2})
	r.OnTruckExplosion(6, "B", 0)

	assert.Equal(t, 1.0, counterValue(t, r.BankruptciesTotal))
	assert.Equal(t, 2.0, counterValue(t, r.EdgeExplosionsTotal))
	assert.Equal(t, 1.0, counterValue(t, r.TruckExplosionsTotal))
}

func TestRegistry_OnRunEnd_CountsStatusAndTicks(t *testing.T) {
	// GIVEN a registry
	r := NewRegistry()

	// WHEN two runs finish with different statuses
	r.OnRunEnd(&sim.RunResult{Status: sim.StatusCompleted, TicksRun: 100})
	r.OnRunEnd(&sim.RunResult{Status: sim.StatusAllBankrupt, TicksRun: 12})
	r.OnRunEnd(nil)

	// THEN each status counter is 1 and both tick observations are present
	assert.Equal(t, 1.0, counterValue(t, r.RunsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, counterValue(t, r.RunsTotal.WithLabelValues("all-bankrupt")))
	assert.Equal(t, uint64(2), histogramCount(t, r.TicksPerRun))
}

func TestRegistry_NilReceiver_IsNoOp(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.OnDecision(0, sim.Decision{Accepted: true})
		r.OnBankruptcy(0, sim.Bankruptcy{})
		r.OnEdgeExplosion(0, sim.Edge{})
		r.OnTruckExplosion(0, "A", 0)
		r.OnRunEnd(&sim.RunResult{})
		r.ObserveTrialDuration(time.Second)
	})
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}

func TestRegistry_WriteTextfile(t *testing.T) {
	// GIVEN a registry with one observed trial
	r := NewRegistry()
	r.ObserveTrialDuration(20 * time.Millisecond)
	r.OnRunEnd(&sim.RunResult{Status: sim.StatusCompleted, TicksRun: 5})
	path := filepath.Join(t.TempDir(), "freightsim.prom")

	// WHEN written to a textfile
	require.NoError(t, r.WriteTextfile(path))

	// THEN the file holds the exposition format
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "freightsim_trial_duration_seconds_count 1"), text)
	assert.True(t, strings.Contains(text, `freightsim_runs_total{status="completed"} 1`), text)
}
