package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/accordlab/accord/internal/escalation"
	"github.com/accordlab/accord/internal/models"
)

// RunRecord is one persisted simulation run.
type RunRecord struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	ConfigHash string            `json:"config_hash"`
	Config     escalation.Config `json:"config"`
	Result     escalation.Result `json:"result"`
}

// RunStore persists runs and historical datasets in a SQLite database.
type RunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// Open opens (or creates) the run store at dbPath, creating parent
// directories and initializing the schema as needed.
func Open(dbPath string) (*RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &RunStore{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// ConfigHash returns a stable hash of a simulation configuration with
// the seed zeroed, so runs of the same setup share a hash across seeds.
func ConfigHash(cfg escalation.Config) (string, error) {
	cfg.Seed = 0
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// SaveRun persists a completed run and its full incident log. The
// record's ID and CreatedAt are filled in when empty.
func (s *RunStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.ConfigHash == "" {
		hash, err := ConfigHash(rec.Config)
		if err != nil {
			return err
		}
		rec.ConfigHash = hash
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("run-%s-%d", rec.ConfigHash[:12], rec.Result.Seed)
	}

	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, created_at, domain, seed, steps, config_hash, config,
			 incident_count, mean_severity, trend, final_pressure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(time.RFC3339Nano), string(rec.Config.Domain),
		rec.Result.Seed, rec.Config.Steps, rec.ConfigHash, string(configJSON),
		rec.Result.Summary.Count, rec.Result.Summary.MeanSeverity,
		rec.Result.Summary.Trend, rec.Result.FinalPressure); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	// Replace semantics: drop any incidents from a previous save
	if _, err := tx.ExecContext(ctx, `DELETE FROM incidents WHERE run_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear incidents: %w", err)
	}

	for ord, inc := range rec.Result.Incidents {
		participants, err := json.Marshal(inc.Participants)
		if err != nil {
			return fmt.Errorf("failed to marshal participants: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO incidents (run_id, ord, step, type, severity, participants)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, ord, inc.Step, string(inc.Type), inc.Severity, string(participants)); err != nil {
			return fmt.Errorf("failed to insert incident %d: %w", ord, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run by ID, including its incident log.
func (s *RunStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := &RunRecord{ID: id}
	var createdAt, configJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, config_hash, config,
		       incident_count, mean_severity, trend, final_pressure, seed
		FROM runs WHERE id = ?`, id).Scan(
		&createdAt, &rec.ConfigHash, &configJSON,
		&rec.Result.Summary.Count, &rec.Result.Summary.MeanSeverity,
		&rec.Result.Summary.Trend, &rec.Result.FinalPressure, &rec.Result.Seed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT step, type, severity, participants
		FROM incidents WHERE run_id = ? ORDER BY ord`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var inc models.Incident
		var typ, participants string
		if err := rows.Scan(&inc.Step, &typ, &inc.Severity, &participants); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		inc.Type = models.IncidentType(typ)
		if err := json.Unmarshal([]byte(participants), &inc.Participants); err != nil {
			return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
		}
		rec.Result.Incidents = append(rec.Result.Incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("incident rows: %w", err)
	}

	return rec, nil
}

// RunInfo is a list entry: the run row without its incident log.
type RunInfo struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	Domain        models.Domain `json:"domain"`
	Seed          int64         `json:"seed"`
	Steps         int           `json:"steps"`
	IncidentCount int           `json:"incident_count"`
	MeanSeverity  float64       `json:"mean_severity"`
}

// ListRuns returns run summaries newest first, up to limit (0 = all).
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, created_at, domain, seed, steps, incident_count, mean_severity
		FROM runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt, domain string
		if err := rows.Scan(&info.ID, &createdAt, &domain, &info.Seed,
			&info.Steps, &info.IncidentCount, &info.MeanSeverity); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		info.Domain = models.Domain(domain)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteRun removes a run and its incidents.
func (s *RunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %q not found", id)
	}
	return nil
}

// SaveHistorical replaces the named dataset with the given records.
func (s *RunStore) SaveHistorical(ctx context.Context, dataset string, records []models.HistoricalIncidentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dataset == "" {
		return fmt.Errorf("dataset name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM historical WHERE dataset = ?`, dataset); err != nil {
		return fmt.Errorf("failed to clear dataset: %w", err)
	}
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO historical (dataset, period, count, mean_severity)
			VALUES (?, ?, ?, ?)`,
			dataset, rec.Period, rec.Count, rec.MeanSeverity); err != nil {
			return fmt.Errorf("failed to insert period %d: %w", rec.Period, err)
		}
	}
	return tx.Commit()
}

// Historical loads the named dataset ordered by period.
func (s *RunStore) Historical(ctx context.Context, dataset string) ([]models.HistoricalIncidentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT period, count, mean_severity
		FROM historical WHERE dataset = ? ORDER BY period`, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	defer rows.Close()

	var records []models.HistoricalIncidentRecord
	for rows.Next() {
		var rec models.HistoricalIncidentRecord
		if err := rows.Scan(&rec.Period, &rec.Count, &rec.MeanSeverity); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset rows: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %q not found", dataset)
	}
	return records, nil
}
