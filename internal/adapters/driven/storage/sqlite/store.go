package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Store is a SQLite-backed run store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.RunStore = (*Store)(nil)

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.pathscout/data/runs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pathscout", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.db")

	// WAL lets `runs` and `lineage` read while an analysis is saving.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrationFiles); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrate applies the pending up migrations in version order. Each
// migration records its own version in schema_migrations.
func (s *Store) migrate(files fs.FS) error {
	fsys, err := fs.Sub(files, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_runs.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRun stores or replaces a run together with its hypotheses and lineage.
func (s *Store) SaveRun(ctx context.Context, run *domain.AnalysisRun) error {
	seedsJSON, err := json.Marshal(run.Seeds)
	if err != nil {
		return fmt.Errorf("marshalling seeds: %w", err)
	}
	diagsJSON, err := json.Marshal(run.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshalling diagnostics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, status, last_stage, error, strategy, seeds, diagnostics, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			last_stage = excluded.last_stage,
			error = excluded.error,
			strategy = excluded.strategy,
			seeds = excluded.seeds,
			diagnostics = excluded.diagnostics,
			finished_at = excluded.finished_at
	`, run.ID, run.Status, run.LastStage, run.Error, run.Strategy,
		string(seedsJSON), string(diagsJSON), run.CreatedAt.UTC(), nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM hypotheses WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing hypotheses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM lineages WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing lineages: %w", err)
	}

	for i := range run.Hypotheses {
		h := &run.Hypotheses[i]
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("marshalling hypothesis %s: %w", h.Pathway.CanonicalID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO hypotheses (run_id, pathway_id, rank, nes_score, data) VALUES (?, ?, ?, ?, ?)",
			run.ID, h.Pathway.CanonicalID, h.Rank, h.NES, string(data)); err != nil {
			return fmt.Errorf("saving hypothesis %s: %w", h.Pathway.CanonicalID, err)
		}
	}

	for i := range run.Lineages {
		l := &run.Lineages[i]
		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("marshalling lineage %s: %w", l.PathwayID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO lineages (run_id, pathway_id, data) VALUES (?, ?, ?)",
			run.ID, l.PathwayID, string(data)); err != nil {
			return fmt.Errorf("saving lineage %s: %w", l.PathwayID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID with hypotheses in rank order.
func (s *Store) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, last_stage, error, strategy, seeds, diagnostics, created_at, finished_at
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM hypotheses WHERE run_id = ? ORDER BY rank ASC", id)
	if err != nil {
		return nil, fmt.Errorf("querying hypotheses: %w", err)
	}
	defer rows.Close()

	run.Hypotheses = []domain.ScoredHypothesis{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning hypothesis: %w", err)
		}
		var h domain.ScoredHypothesis
		if err := json.Unmarshal([]byte(data), &h); err != nil {
			return nil, fmt.Errorf("unmarshalling hypothesis: %w", err)
		}
		run.Hypotheses = append(run.Hypotheses, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hypotheses: %w", err)
	}

	lineages, err := s.lineages(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Lineages = lineages
	return run, nil
}

func (s *Store) lineages(ctx context.Context, runID string) ([]domain.Lineage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.data FROM lineages l
		LEFT JOIN hypotheses h ON h.run_id = l.run_id AND h.pathway_id = l.pathway_id
		WHERE l.run_id = ?
		ORDER BY h.rank ASC, l.pathway_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying lineages: %w", err)
	}
	defer rows.Close()

	out := []domain.Lineage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning lineage: %w", err)
		}
		var l domain.Lineage
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, fmt.Errorf("unmarshalling lineage: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListRuns returns all runs, newest first, without hypotheses or lineage.
func (s *Store) ListRuns(ctx context.Context) ([]domain.AnalysisRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, last_stage, error, strategy, seeds, diagnostics, created_at, finished_at
		FROM runs ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// GetLineage returns the lineage of one pathway of a run.
func (s *Store) GetLineage(ctx context.Context, runID, pathwayID string) (*domain.Lineage, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM lineages WHERE run_id = ? AND pathway_id = ?", runID, pathwayID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying lineage: %w", err)
	}

	var l domain.Lineage
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("unmarshalling lineage: %w", err)
	}
	return &l, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.AnalysisRun, error) {
	var run domain.AnalysisRun
	var errText sql.NullString
	var seedsJSON, diagsJSON string
	var createdAt, finishedAt sql.NullTime

	if err := row.Scan(&run.ID, &run.Status, &run.LastStage, &errText, &run.Strategy,
		&seedsJSON, &diagsJSON, &createdAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Error = errText.String
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	if err := json.Unmarshal([]byte(seedsJSON), &run.Seeds); err != nil {
		return nil, fmt.Errorf("unmarshalling seeds: %w", err)
	}
	if err := json.Unmarshal([]byte(diagsJSON), &run.Diagnostics); err != nil {
		return nil, fmt.Errorf("unmarshalling diagnostics: %w", err)
	}
	return &run, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
