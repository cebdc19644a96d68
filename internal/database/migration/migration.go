package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fundvote/internal/model"
)

type migrationStep struct {
	Name string
	SQL  string
}

// Dialect carries the SQL that differs between the supported databases.
type Dialect struct {
	Name     string
	Sentinel string
	Steps    []migrationStep
	Insert   string
	// TimeArg converts created_at into the value the driver should bind.
	TimeArg func(time.Time) any
}

var Postgres = Dialect{
	Name:     "postgres",
	Sentinel: "SELECT to_regclass('public.proposals') IS NOT NULL",
	Steps: []migrationStep{
		{
			Name: "create_table_proposals",
			SQL: `CREATE TABLE IF NOT EXISTS proposals (
  id          TEXT             PRIMARY KEY,
  title       TEXT             NOT NULL CHECK (title <> ''),
  abstract    TEXT             NOT NULL CHECK (abstract <> ''),
  institution TEXT             NOT NULL CHECK (institution <> ''),
  funding     DOUBLE PRECISION NOT NULL CHECK (funding >= 0),
  duration    INTEGER          NOT NULL CHECK (duration > 0),
  status      TEXT             NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
  created_at  TIMESTAMPTZ      NOT NULL DEFAULT now(),
  upvotes     BIGINT           NOT NULL DEFAULT 0 CHECK (upvotes >= 0),
  downvotes   BIGINT           NOT NULL DEFAULT 0 CHECK (downvotes >= 0)
);`,
		},
		{
			Name: "create_index_proposals_status",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals (status);`,
		},
		{
			Name: "create_index_proposals_created_at",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_proposals_created_at ON proposals (created_at);`,
		},
	},
	Insert: `INSERT INTO proposals (id, title, abstract, institution, funding, duration, status, created_at, upvotes, downvotes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO NOTHING`,
	TimeArg: func(t time.Time) any { return t },
}

var SQLite = Dialect{
	Name:     "sqlite",
	Sentinel: "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'proposals')",
	Steps: []migrationStep{
		{
			Name: "create_table_proposals",
			SQL: `CREATE TABLE IF NOT EXISTS proposals (
  id          TEXT    PRIMARY KEY,
  title       TEXT    NOT NULL CHECK (title <> ''),
  abstract    TEXT    NOT NULL CHECK (abstract <> ''),
  institution TEXT    NOT NULL CHECK (institution <> ''),
  funding     REAL    NOT NULL CHECK (funding >= 0),
  duration    INTEGER NOT NULL CHECK (duration > 0),
  status      TEXT    NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
  created_at  TEXT    NOT NULL,
  upvotes     INTEGER NOT NULL DEFAULT 0 CHECK (upvotes >= 0),
  downvotes   INTEGER NOT NULL DEFAULT 0 CHECK (downvotes >= 0)
);`,
		},
		{
			Name: "create_index_proposals_status",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_proposals_status ON proposals (status);`,
		},
	},
	Insert: `INSERT OR IGNORE INTO proposals (id, title, abstract, institution, funding, duration, status, created_at, upvotes, downvotes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	TimeArg: func(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) },
}

// EnsureMigrated creates the proposals schema when the sentinel table is missing and
// loads the seed catalog into it. Existing rows are never overwritten.
func EnsureMigrated(ctx context.Context, db *sql.DB, d Dialect, seed []model.Proposal, log *zap.Logger) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("dialect", d.Name))
	log.Info("db_migration_check")

	var exists bool
	if err := db.QueryRowContext(ctx, d.Sentinel).Scan(&exists); err != nil {
		log.Error("db_migration_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip", zap.String("reason", "schema already exists"), zap.Duration("duration", time.Since(start)))
		return nil
	}

	log.Info("db_migration_start")
	for _, step := range d.Steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("step_duration", time.Since(stepStart)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step", zap.String("migration_step", step.Name), zap.Duration("step_duration", time.Since(stepStart)))
	}

	if err := Seed(ctx, db, d, seed); err != nil {
		log.Error("db_migration_failed", zap.String("migration_step", "seed_proposals"), zap.Error(err))
		return err
	}

	log.Info("db_migration_success", zap.Int("seeded", len(seed)), zap.Duration("duration", time.Since(start)))
	return nil
}

// Seed inserts the proposals in one transaction, skipping ids that already exist.
func Seed(ctx context.Context, db *sql.DB, d Dialect, seed []model.Proposal) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed proposals: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range seed {
		if _, err := tx.ExecContext(ctx, d.Insert,
			p.ID,
			p.Title,
			p.Abstract,
			p.Institution,
			p.Funding,
			p.Duration,
			string(p.Status),
			d.TimeArg(p.CreatedAt),
			p.Votes.Upvotes,
			p.Votes.Downvotes,
		); err != nil {
			return fmt.Errorf("seed proposal %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed proposals: %w", err)
	}
	return nil
}
