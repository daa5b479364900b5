package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// ErrNotFound reports a missing scenario or run.
var ErrNotFound = errors.New("not found")

// ScenarioRecord is one stored scenario with its raw input document.
type ScenarioRecord struct {
	ID        string
	Name      string
	InputYAML []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SQLiteStore persists scenarios and finished runs.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveScenario inserts or updates a scenario by id.
func (s *SQLiteStore) SaveScenario(ctx context.Context, rec ScenarioRecord) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, name, input_yaml, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			input_yaml = excluded.input_yaml,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Name, rec.InputYAML, now, now,
	)
	return err
}

func (s *SQLiteStore) GetScenario(ctx context.Context, id string) (ScenarioRecord, error) {
	var rec ScenarioRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, input_yaml, created_at, updated_at
		FROM scenarios WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Name, &rec.InputYAML, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	return rec, err
}

func (s *SQLiteStore) ListScenarios(ctx context.Context) ([]ScenarioRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, input_yaml, created_at, updated_at
		FROM scenarios ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScenarioRecord
	for rows.Next() {
		var rec ScenarioRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.InputYAML, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveRun persists a finished run. The result serializes to JSON; error runs
// store a null result.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.SimulationRun) error {
	var resultJSON []byte
	if run.Result != nil {
		var err error
		resultJSON, err = json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario_id, started_at, finished_at, status, error_message, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ScenarioID, run.StartedAt, run.FinishedAt,
		string(run.Status), run.ErrorMessage, resultJSON,
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.SimulationRun, error) {
	var (
		run        domain.SimulationRun
		status     string
		resultJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario_id, started_at, finished_at, status, error_message, result_json
		FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.ScenarioID, &run.StartedAt, &run.FinishedAt, &status, &run.ErrorMessage, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	if len(resultJSON) > 0 {
		run.Result = &domain.SimulationResult{}
		if err := json.Unmarshal(resultJSON, run.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &run, nil
}

// ListRuns returns run envelopes without their results, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, scenarioID string, limit int) ([]domain.SimulationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, scenario_id, started_at, finished_at, status, error_message
		FROM runs`
	args := []any{}
	if scenarioID != "" {
		query += ` WHERE scenario_id = ?`
		args = append(args, scenarioID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SimulationRun
	for rows.Next() {
		var (
			run    domain.SimulationRun
			status string
		)
		if err := rows.Scan(&run.ID, &run.ScenarioID, &run.StartedAt, &run.FinishedAt, &status, &run.ErrorMessage); err != nil {
			return nil, err
		}
		run.Status = domain.RunStatus(status)
		out = append(out, run)
	}
	return out, rows.Err()
}
