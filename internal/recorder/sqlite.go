package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists forecast runs to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened",
		zap.String("op", "recorder.NewSQLiteRecorder"),
		zap.String("path", dbPath),
	)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			source     TEXT,
			days       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS scenario_summaries (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id              TEXT NOT NULL REFERENCES runs(id),
			name                TEXT,
			days                INTEGER,
			final_balance       REAL,
			final_production    REAL,
			final_bonused       REAL,
			final_bonus_percent REAL,
			final_reward_rate   REAL,
			upgrades_bought     INTEGER,
			upgrades_pending    INTEGER,
			spent               REAL,
			last_purchase_day   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_run ON scenario_summaries(run_id)`,

		`CREATE TABLE IF NOT EXISTS scenario_failures (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL REFERENCES runs(id),
			name    TEXT,
			message TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores run and all of its summaries in one transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := run.ID.String()
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, started_at, source, days) VALUES (?,?,?,?)`,
		id, run.StartedAt.Unix(), run.Source, run.Days,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, s := range run.Summaries {
		if _, err := tx.ExecContext(ctx, `INSERT INTO scenario_summaries
			(run_id, name, days, final_balance, final_production, final_bonused,
			 final_bonus_percent, final_reward_rate, upgrades_bought, upgrades_pending,
			 spent, last_purchase_day)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			id, s.Name, s.Days, s.FinalBalance, s.FinalProduction, s.FinalBonused,
			s.FinalBonusPercent, s.FinalRewardRate, s.UpgradesBought, s.UpgradesPending,
			s.Spent, s.LastPurchaseDay,
		); err != nil {
			return fmt.Errorf("insert summary %q: %w", s.Name, err)
		}
	}

	for _, f := range run.Errors {
		if _, err := tx.ExecContext(ctx, `INSERT INTO scenario_failures (run_id, name, message) VALUES (?,?,?)`,
			id, f.Name, f.Message,
		); err != nil {
			return fmt.Errorf("insert failure %q: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug("run recorded",
		zap.String("op", "recorder.RecordRun"),
		zap.String("run", id),
		zap.Int("scenarios", len(run.Summaries)),
	)
	return nil
}

// CountRuns returns the number of stored runs.
func (r *SQLiteRecorder) CountRuns(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

// Summaries returns the scenario summaries stored for runID.
func (r *SQLiteRecorder) Summaries(ctx context.Context, runID string) ([]SummaryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT name, final_balance, upgrades_bought
		FROM scenario_summaries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.Name, &row.FinalBalance, &row.UpgradesBought); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SummaryRow is the stored subset of a scenario summary.
type SummaryRow struct {
	Name           string
	FinalBalance   float64
	UpgradesBought int
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
