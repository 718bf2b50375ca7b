package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tradehook-lab/tradehook/internal/calllog"
	"github.com/tradehook-lab/tradehook/internal/config"
	"github.com/tradehook-lab/tradehook/internal/engine"
	"github.com/tradehook-lab/tradehook/internal/executor"
	"github.com/tradehook-lab/tradehook/internal/logger"
	"github.com/tradehook-lab/tradehook/internal/server"
	"github.com/tradehook-lab/tradehook/internal/statestore"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// serveAction wires config, executor, engine and HTTP server together and
// blocks until shutdown.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	appLogger, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	exec, err := buildExecutor(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create trade executor: %w", err)
	}

	store, err := buildStateStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = store.Close() }()

	settings := cfg.EngineSettings()
	settings.StateStore = store

	service := engine.NewService(settings, exec, buildLogFactory(cfg), appLogger)
	if err := service.Restore(); err != nil {
		return fmt.Errorf("failed to restore strategy state: %w", err)
	}

	srv := server.New(service, appLogger)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.Start(address); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	appLogger.Info("tradehook running",
		zap.String("address", srv.Address()),
		zap.String("provider", cfg.Executor.Provider),
		zap.String("call_log_store", cfg.Engine.CallLogStore),
	)

	<-ctx.Done()
	appLogger.Info("shutting down")

	return srv.Stop()
}

func buildExecutor(cfg *config.Config, appLogger *logger.Logger) (executor.TradeExecutor, error) {
	providerType := executor.ProviderType(cfg.Executor.Provider)

	switch providerType {
	case executor.ProviderHook:
		return executor.NewTradeExecutor(providerType, &cfg.Executor.Hook, appLogger)
	default:
		return executor.NewTradeExecutor(providerType, &cfg.Executor.Binance, appLogger)
	}
}

// buildStateStore persists strategy state next to the DuckDB call logs.
// The in-memory call log store keeps state in memory too.
func buildStateStore(cfg *config.Config) (statestore.Store, error) {
	if cfg.Engine.CallLogStore == config.StoreDuckDB {
		return statestore.NewDuckDBStore(filepath.Join(cfg.Engine.CallLogDir, "strategies.db"))
	}

	return statestore.NopStore{}, nil
}

func buildLogFactory(cfg *config.Config) calllog.Factory {
	if cfg.Engine.CallLogStore == config.StoreDuckDB {
		return func(user, strategy string) (calllog.Log, error) {
			path := filepath.Join(cfg.Engine.CallLogDir, fmt.Sprintf("%s_%s.db", user, strategy))

			return calllog.NewDuckDBLog(path)
		}
	}

	return calllog.MemoryFactory
}

func main() {
	// Secrets are read from the environment; a local .env is a
	// development convenience.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "tradehook",
		Usage: "Per-strategy trading webhook execution engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Sources: cli.EnvVars("TRADEHOOK_CONFIG"),
			},
		},
		Action: serveAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
