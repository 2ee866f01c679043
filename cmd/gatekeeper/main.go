package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robalyx/gatekeeper/internal/bot"
	"github.com/robalyx/gatekeeper/internal/setup"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// DefaultLogDir specifies where log files are stored.
	DefaultLogDir = "logs/gatekeeper_logs"

	// RunCommand reconciles on startup and then reacts to role changes.
	RunCommand = "run"

	// ReconcileCommand performs a single sweep and exits.
	ReconcileCommand = "reconcile"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "gatekeeper",
		Usage: "Grant an access role only to members holding both the integration and gatekeep roles",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log role changes without applying them",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Value: DefaultLogDir,
				Usage: "Directory for session log files",
			},
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   RunCommand,
				Usage:  "Reconcile all guilds, then react to role changes until interrupted",
				Action: runBot,
			},
			{
				Name:   ReconcileCommand,
				Usage:  "Reconcile all guilds once and exit",
				Action: runReconcile,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, os.Args)
}

func initialize(ctx context.Context, c *cli.Command) (*setup.App, error) {
	app, err := setup.InitializeApp(ctx, c.String("log-dir"), setup.Overrides{
		DryRun: c.Bool("dry-run"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return app, nil
}

// runBot starts the bot and blocks until the context is cancelled.
func runBot(ctx context.Context, c *cli.Command) error {
	app, err := initialize(ctx, c)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	discordBot := bot.New(app)
	defer discordBot.Close()

	if err := discordBot.Start(ctx); err != nil {
		app.Logger.Error("Failed to start bot", zap.Error(err))
		return err
	}

	app.Logger.Info("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")
	<-ctx.Done()

	return nil
}

// runReconcile performs a single sweep.
func runReconcile(ctx context.Context, c *cli.Command) error {
	app, err := initialize(ctx, c)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	summary, err := bot.New(app).Reconcile(ctx)
	if err != nil {
		app.Logger.Error("Failed to reconcile", zap.Error(err))
		return err
	}

	if summary.Failed > 0 {
		app.Logger.Warn("Reconciliation finished with failures", zap.Int("failed", summary.Failed))
	}

	return nil
}
