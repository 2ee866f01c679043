package setup

import (
	"context"

	"github.com/robalyx/gatekeeper/internal/setup/config"
	"github.com/robalyx/gatekeeper/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles the configuration and logging every command needs.
type App struct {
	Config     *config.Config     // Application configuration
	Logger     *zap.Logger        // Main application logger
	LogManager *telemetry.Manager // Log management system
}

// Overrides are command-line settings that take precedence over the config.
type Overrides struct {
	DryRun bool
}

// InitializeApp loads the configuration and starts logging.
func InitializeApp(ctx context.Context, logDir string, overrides Overrides) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if overrides.DryRun {
		cfg.Reconcile.DryRun = true
	}

	logManager := telemetry.NewManager(ctx, "gatekeeper", logDir, &cfg.Debug, &cfg.Loki)

	logger, err := logManager.GetLogger()
	if err != nil {
		logManager.Stop()
		return nil, err
	}

	if configDir != "" {
		logger.Info("Loaded config file", zap.String("dir", configDir))
	} else {
		logger.Info("No config file found, using defaults and environment")
	}

	if cfg.Reconcile.DryRun {
		logger.Warn("Dry run enabled, role changes will only be logged")
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		LogManager: logManager,
	}, nil
}

// Cleanup flushes logs and stops log shipping.
func (s *App) Cleanup() {
	_ = s.Logger.Sync()
	s.LogManager.Stop()
}
