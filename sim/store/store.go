// Package store persists experiment aggregates and sweep results to SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/freight-sim/freight-sim/sim"
	"github.com/freight-sim/freight-sim/sim/experiment"
)

// ErrNotFound is returned when a requested experiment or series does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection holding experiment results.
type DB struct {
	conn *sqlx.DB
}

// Experiment is one stored experiment row.
type Experiment struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	CreatedAt  string `db:"created_at"` // RFC 3339, UTC
	Trials     int    `db:"trials"`
	Iterations int    `db:"iterations"`
	ParamsJSON string `db:"params_json"`
}

// Created parses CreatedAt.
func (e Experiment) Created() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, e.CreatedAt)
}

// Params decodes the stored parameters.
func (e Experiment) Params() (sim.Params, error) {
	var p sim.Params
	err := json.Unmarshal([]byte(e.ParamsJSON), &p)
	return p, err
}

type trajectoryRow struct {
	Company string  `db:"company"`
	Node    int     `db:"node"`
	Tick    int     `db:"tick"`
	Mean    float64 `db:"mean"`
	Low     float64 `db:"low"`
	High    float64 `db:"high"`
}

type sweepRow struct {
	Series string  `db:"series"`
	X      float64 `db:"x"`
	Value  float64 `db:"value"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS experiments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		trials INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		params_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trajectories (
		experiment_id TEXT NOT NULL REFERENCES experiments(id),
		company TEXT NOT NULL,
		node INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		mean REAL NOT NULL,
		low REAL NOT NULL,
		high REAL NOT NULL,
		PRIMARY KEY (experiment_id, company, tick)
	);

	CREATE TABLE IF NOT EXISTS sweep_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		experiment_id TEXT NOT NULL REFERENCES experiments(id),
		series TEXT NOT NULL,
		x REAL NOT NULL,
		value REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sweep_points_experiment ON sweep_points(experiment_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveAggregate stores a multi-trial experiment under a new ID.
func (db *DB) SaveAggregate(name string, p sim.Params, agg *experiment.Aggregate) (uuid.UUID, error) {
	id := uuid.New()
	tx, err := db.conn.Beginx()
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if err := insertExperiment(tx, id, name, p, agg.Trials, agg.Iterations); err != nil {
		return uuid.Nil, err
	}
	if err := insertTrajectories(tx, id, agg); err != nil {
		return uuid.Nil, err
	}
	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	logrus.Infof("stored experiment %s (%s, %d companies)", id, name, len(agg.Companies))
	return id, nil
}

// SaveSweep stores a sweep under its own ID, including its baseline aggregate
// when it has one.
func (db *DB) SaveSweep(p sim.Params, trials, iterations int, res *experiment.SweepResult) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertExperiment(tx, res.ID, res.Name, p, trials, iterations); err != nil {
		return err
	}
	if res.Aggregate != nil {
		if err := insertTrajectories(tx, res.ID, res.Aggregate); err != nil {
			return err
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO sweep_points (experiment_id, series, x, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, s := range res.Series {
		for _, pt := range s.Points {
			if _, err := stmt.Exec(res.ID.String(), s.Name, pt.X, pt.Value); err != nil {
				return fmt.Errorf("insert sweep point: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logrus.Infof("stored sweep %s (%s, %d series)", res.ID, res.Name, len(res.Series))
	return nil
}

func insertExperiment(tx *sqlx.Tx, id uuid.UUID, name string, p sim.Params, trials, iterations int) error {
	paramsJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO experiments (id, name, created_at, trials, iterations, params_json) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), name, time.Now().UTC().Format(time.RFC3339Nano), trials, iterations, string(paramsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert experiment: %w", err)
	}
	return nil
}

func insertTrajectories(tx *sqlx.Tx, id uuid.UUID, agg *experiment.Aggregate) error {
	stmt, err := tx.Preparex(`INSERT INTO trajectories
		(experiment_id, company, node, tick, mean, low, high)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range agg.Companies {
		for tick := range s.Mean {
			if _, err := stmt.Exec(id.String(), string(s.Company), int(s.Node), tick, s.Mean[tick], s.Low[tick], s.High[tick]); err != nil {
				return fmt.Errorf("insert trajectory %s: %w", s.Company, err)
			}
		}
	}
	return nil
}

// Experiment returns the stored experiment row.
func (db *DB) Experiment(id uuid.UUID) (Experiment, error) {
	var e Experiment
	err := db.conn.Get(&e, "SELECT id, name, created_at, trials, iterations, params_json FROM experiments WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("experiment %s: %w", id, ErrNotFound)
	}
	return e, err
}

// Experiments returns every stored experiment, newest first.
func (db *DB) Experiments() ([]Experiment, error) {
	var out []Experiment
	err := db.conn.Select(&out, "SELECT id, name, created_at, trials, iterations, params_json FROM experiments ORDER BY created_at DESC")
	return out, err
}

// LoadTrajectory reads back one company's averaged series.
func (db *DB) LoadTrajectory(id uuid.UUID, company sim.CompanyID) (experiment.CompanySeries, error) {
	var rows []trajectoryRow
	err := db.conn.Select(&rows,
		"SELECT company, node, tick, mean, low, high FROM trajectories WHERE experiment_id = ? AND company = ? ORDER BY tick",
		id.String(), string(company),
	)
	if err != nil {
		return experiment.CompanySeries{}, err
	}
	if len(rows) == 0 {
		return experiment.CompanySeries{}, fmt.Errorf("trajectory %s/%s: %w", id, company, ErrNotFound)
	}

	s := experiment.CompanySeries{
		Company: company,
		Node:    sim.NodeID(rows[0].Node),
		Mean:    make([]float64, len(rows)),
		Low:     make([]float64, len(rows)),
		High:    make([]float64, len(rows)),
	}
	for i, r := range rows {
		s.Mean[i], s.Low[i], s.High[i] = r.Mean, r.Low, r.High
	}
	return s, nil
}

// LoadSweep reads back the series of a stored sweep, in insertion order.
func (db *DB) LoadSweep(id uuid.UUID) ([]experiment.Series, error) {
	var rows []sweepRow
	err := db.conn.Select(&rows, "SELECT series, x, value FROM sweep_points WHERE experiment_id = ? ORDER BY id", id.String())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sweep %s: %w", id, ErrNotFound)
	}

	var out []experiment.Series
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].Name != r.Series {
			out = append(out, experiment.Series{Name: r.Series})
		}
		last := &out[len(out)-1]
		last.Points = append(last.Points, experiment.Point{X: r.X, Value: r.Value})
	}
	return out, nil
}
