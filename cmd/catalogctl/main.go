// Command catalogctl inspects and votes on the proposal catalog from a terminal.
// It reads the same environment as the API server and opens the configured store directly.
package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fundvote/internal/bootstrap"
	"fundvote/internal/config"
	"fundvote/internal/logger"
	"fundvote/internal/service"
	"fundvote/internal/snapshot"
)

const (
	Version = "0.1.0"
	appName = "catalogctl"
)

func main() {
	if err := rootCmd(&app{open: openEnv}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// backend is what a command needs from an opened store.
type backend struct {
	svc      service.ProposalService
	exporter *snapshot.Exporter // nil without object storage
	close    func() error
}

type app struct {
	open   func(ctx context.Context, o globalOptions) (*backend, error)
	global globalOptions
}

type globalOptions struct {
	driver     string
	sqlitePath string
	noLatency  bool
	logLevel   string
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Browse and vote on research funding proposals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.global.driver, "store", "", "Store driver override (memory, postgres, sqlite)")
	f.StringVar(&a.global.sqlitePath, "sqlite-path", "", "SQLite database file override")
	f.BoolVar(&a.global.noLatency, "no-latency", false, "Disable the simulated latency of the memory store")
	f.StringVar(&a.global.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(listCmd(a), getCmd(a), voteCmd(a), snapshotCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

// openEnv opens the store described by the environment, with flag overrides applied.
func openEnv(ctx context.Context, o globalOptions) (*backend, error) {
	cfg := config.Load()
	cfg.Log.Level = o.logLevel
	cfg.Log.Output = "stderr"
	if o.driver != "" {
		cfg.Store.Driver = o.driver
	}
	if o.sqlitePath != "" {
		cfg.Store.SQLitePath = o.sqlitePath
	}
	if o.noLatency {
		cfg.Catalog.ListLatencyMS, cfg.Catalog.GetLatencyMS, cfg.Catalog.VoteLatencyMS = 0, 0, 0
	}
	log := logger.New(cfg.Log)

	objStore, err := bootstrap.ObjectStorage(ctx, cfg.MinIO)
	if err != nil {
		return nil, err
	}
	seed, err := bootstrap.Seed(ctx, cfg.Catalog, objStore)
	if err != nil {
		return nil, err
	}
	store, err := bootstrap.OpenStore(ctx, cfg, seed, log)
	if err != nil {
		return nil, err
	}
	if store.Driver == config.DriverMemory {
		log.Warn("memory_store_in_cli", zap.String("hint", "votes are discarded when the command exits"))
	}

	b := &backend{
		svc:   service.NewProposalService(store.Repo, service.WithLogger(log)),
		close: store.Close,
	}
	if objStore != nil {
		b.exporter = snapshot.NewExporter(store.Repo, objStore, cfg.Snapshot.Prefix, snapshot.WithLogger(log))
	}
	return b, nil
}

// withBackend opens the backend for the duration of fn.
func (a *app) withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := a.open(ctx, a.global)
	if err != nil {
		return err
	}
	defer func() {
		if b.close != nil {
			_ = b.close()
		}
	}()
	return fn(ctx, b)
}
