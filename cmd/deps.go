package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/immich-tools/internal/config"
	"github.com/kozaktomas/immich-tools/internal/curator"
	"github.com/kozaktomas/immich-tools/internal/database/postgres"
	"github.com/kozaktomas/immich-tools/internal/immich"
	"github.com/kozaktomas/immich-tools/internal/logging"
	"github.com/kozaktomas/immich-tools/internal/probe"
	"go.uber.org/zap"
)

// commandDeps holds everything a command needs after the connectivity probe passed.
type commandDeps struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger
	client *immich.Client
	pool   *postgres.Pool
	creds  *probe.Credentials
}

// Close releases the database connection and flushes the logger.
func (d *commandDeps) Close() {
	if d.pool != nil {
		if err := d.pool.Close(); err != nil {
			d.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}

// newCurator builds a curator printing to stdout, or to stderr when stdout carries
// machine readable output.
func (d *commandDeps) newCurator(machineOutput bool) *curator.Curator {
	out := os.Stdout
	if machineOutput {
		out = os.Stderr
	}
	return curator.New(d.client, &d.cfg.Immich, curator.WithOutput(out))
}

// initDeps loads the configuration, connects to Immich and the database and runs
// the connectivity probe. Any failure aborts the command.
func initDeps(ctx context.Context, machineOutput bool) (*commandDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	ctx = logging.WithLogger(ctx, logger)

	client, err := immich.New(cfg.Immich.ServerAddress, cfg.Immich.APIKey,
		immich.WithTimeout(cfg.Immich.Timeout),
		immich.WithCaptureDir(captureDir),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Immich client: %w", err)
	}

	pool, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	deps := &commandDeps{ctx: ctx, cfg: cfg, logger: logger, client: client, pool: pool}

	out := os.Stdout
	if machineOutput {
		out = os.Stderr
	}
	creds, err := probe.Probe(ctx, out, cfg, client, pool)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.creds = creds
	logger.Debug("connected",
		zap.String("server", cfg.Immich.ServerAddress),
		zap.String("server_version", creds.ServerVersion),
		zap.String("database", logging.SanitizeDSN(cfg.Database.DSN())))

	return deps, nil
}
