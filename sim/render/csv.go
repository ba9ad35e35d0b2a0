package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/freight-sim/freight-sim/sim/experiment"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteAggregateCSV writes one row per company and tick:
// company,node,tick,mean,low,high.
func WriteAggregateCSV(w io.Writer, agg *experiment.Aggregate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"company", "node", "tick", "mean", "low", "high"}); err != nil {
		return err
	}
	for _, c := range agg.Companies {
		for tick := range c.Mean {
			record := []string{
				string(c.Company),
				strconv.Itoa(int(c.Node)),
				strconv.Itoa(tick),
				formatFloat(c.Mean[tick]),
				formatFloat(c.Low[tick]),
				formatFloat(c.High[tick]),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSweepCSV writes one row per sweep point: series,x,value.
func WriteSweepCSV(w io.Writer, res *experiment.SweepResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"series", "x", "value"}); err != nil {
		return err
	}
	for _, s := range res.Series {
		for _, p := range s.Points {
			if err := cw.Write([]string{s.Name, formatFloat(p.X), formatFloat(p.Value)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
