// Package telemetry sets up the process's loggers: per-session log files,
// stdout, and optional shipping to Grafana Loki.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/robalyx/gatekeeper/internal/setup/config"
	"github.com/robalyx/gatekeeper/internal/setup/telemetry/logger"
	"github.com/robalyx/gatekeeper/internal/setup/telemetry/loki"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sessionLayout names session directories so they sort by start time.
const sessionLayout = "2006-01-02_15-04-05"

// Manager handles the creation and management of log files and directories.
// Each run writes into its own timestamped session directory.
type Manager struct {
	lokiPusher        *loki.Pusher
	instanceID        string
	componentName     string
	currentSessionDir string
	logDir            string
	level             string
	maxLogsToKeep     int
	maxLogLines       int
	stdout            io.Writer
	files             []*logger.LogRotator
}

// NewManager creates a new Manager. The Loki pusher starts immediately when enabled.
func NewManager(
	ctx context.Context, componentName, logDir string, debugCfg *config.Debug, lokiCfg *config.Loki,
) *Manager {
	manager := &Manager{
		instanceID:    uuid.New().String(),
		componentName: componentName,
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
		maxLogLines:   debugCfg.MaxLogLines,
		stdout:        os.Stdout,
	}

	if lokiCfg.Enabled && lokiCfg.URL != "" {
		labels := make(map[string]string, len(lokiCfg.Labels)+2)
		maps.Copy(labels, lokiCfg.Labels)

		labels["component"] = componentName
		labels["instance_id"] = manager.instanceID

		manager.lokiPusher = loki.NewPusher(ctx, *lokiCfg, labels, func(err error) {
			fmt.Fprintf(os.Stderr, "loki: %v\n", err)
		})
	}

	return manager
}

// SetStdout replaces the console output. A nil writer disables it.
func (lm *Manager) SetStdout(w io.Writer) {
	lm.stdout = w
}

// GetLogger creates the session directory and returns the main logger.
func (lm *Manager) GetLogger() (*zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, err
	}

	mainLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "main.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	return mainLogger.With(zap.String("instance_id", lm.instanceID)), nil
}

// GetCurrentSessionDir returns the directory of this run's log files.
func (lm *Manager) GetCurrentSessionDir() string {
	return lm.currentSessionDir
}

// GetInstanceID returns the unique identifier of this run.
func (lm *Manager) GetInstanceID() string {
	return lm.instanceID
}

// Stop flushes Loki and closes the log files.
func (lm *Manager) Stop() {
	if lm.lokiPusher != nil {
		lm.lokiPusher.Stop()
	}

	for _, file := range lm.files {
		_ = file.Sync()
		_ = file.Close()
	}

	lm.files = nil
}

// setupLogDirectories ensures the base directory exists, rotates old sessions
// and creates a new session directory.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.rotateLogSessions(); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	lm.currentSessionDir = filepath.Join(lm.logDir, time.Now().Format(sessionLayout))
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// initLogger creates a zap logger writing to the file, stdout and Loki.
func (lm *Manager) initLogger(logPath string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	rotator, err := logger.OpenLogRotator(logPath, lm.maxLogLines)
	if err != nil {
		return nil, err
	}

	lm.files = append(lm.files, rotator)

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(rotator), zapLevel),
	}

	if lm.stdout != nil {
		consoleConfig := encoderConfig
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores,
			zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(lm.stdout), zapLevel))
	}

	if lm.lokiPusher != nil {
		cores = append(cores, loki.NewCore(zapLevel, lm.lokiPusher))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// rotateLogSessions removes the oldest session directories so that, together
// with the session about to be created, at most maxLogsToKeep remain.
func (lm *Manager) rotateLogSessions() error {
	entries, err := os.ReadDir(lm.logDir)
	if err != nil {
		return err
	}

	var sessions []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		if _, err := time.Parse(sessionLayout, entry.Name()); err == nil {
			sessions = append(sessions, entry.Name())
		}
	}

	keep := max(lm.maxLogsToKeep-1, 0)
	if len(sessions) <= keep {
		return nil
	}

	slices.Sort(sessions)

	for _, session := range sessions[:len(sessions)-keep] {
		if err := os.RemoveAll(filepath.Join(lm.logDir, session)); err != nil {
			return err
		}
	}

	return nil
}
