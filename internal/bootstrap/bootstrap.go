// Package bootstrap assembles the configured proposal store for the binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fundvote/internal/catalog"
	"fundvote/internal/config"
	"fundvote/internal/database"
	"fundvote/internal/database/migration"
	"fundvote/internal/model"
	"fundvote/internal/repository"
	"fundvote/internal/repository/memory"
	"fundvote/internal/repository/postgres"
	"fundvote/internal/repository/sqlite"
	"fundvote/internal/snapshot"
	"fundvote/internal/storage"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Store is an opened proposal repository. DB is nil for the memory driver.
type Store struct {
	Driver string
	Repo   repository.ProposalRepository
	DB     *sql.DB
}

// Close releases the underlying connection, if any.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// ObjectStorage connects to MinIO when it is configured and returns nil otherwise.
func ObjectStorage(ctx context.Context, cfg config.MinIOConfig) (storage.Storage, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	return storage.NewMinIO(ctx, cfg)
}

// Seed returns the initial catalog: a stored snapshot when CATALOG_SEED_SNAPSHOT
// is set, otherwise the seed file or the embedded catalog.
func Seed(ctx context.Context, cfg config.CatalogConfig, objStore storage.Storage) ([]model.Proposal, error) {
	if cfg.SeedSnapshot != "" {
		if objStore == nil {
			return nil, fmt.Errorf("seed snapshot %q requires object storage", cfg.SeedSnapshot)
		}
		return snapshot.Load(ctx, objStore, cfg.SeedSnapshot)
	}
	return catalog.Load(cfg.SeedFile)
}

// Latency converts the configured millisecond delays.
func Latency(cfg config.CatalogConfig) memory.Latency {
	return memory.Latency{
		List: time.Duration(cfg.ListLatencyMS) * time.Millisecond,
		Get:  time.Duration(cfg.GetLatencyMS) * time.Millisecond,
		Vote: time.Duration(cfg.VoteLatencyMS) * time.Millisecond,
	}
}

// OpenStore opens the store selected by cfg.Store.Driver. SQL stores are
// migrated and seeded on first use; existing rows are never overwritten.
func OpenStore(ctx context.Context, cfg *config.AppConfig, seed []model.Proposal, log *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		repo, err := memory.NewProposalMemory(seed, memory.WithLatency(Latency(cfg.Catalog)))
		if err != nil {
			return nil, err
		}
		return &Store{Driver: config.DriverMemory, Repo: repo}, nil

	case config.DriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, migration.Postgres, seed, log); err != nil {
			db.Close()
			return nil, err
		}
		return &Store{Driver: config.DriverPostgres, Repo: postgres.NewProposalPostgres(db), DB: db}, nil

	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, migration.SQLite, seed, log); err != nil {
			db.Close()
			return nil, err
		}
		return &Store{Driver: config.DriverSQLite, Repo: sqlite.NewProposalSQLite(db), DB: db}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Store.Driver)
}
