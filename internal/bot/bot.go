// Package bot wires the role gatekeeping components to a Discord gateway session.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/robalyx/gatekeeper/internal/discord"
	"github.com/robalyx/gatekeeper/internal/discord/memberstate"
	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/robalyx/gatekeeper/internal/setup"
	"github.com/robalyx/gatekeeper/internal/setup/config"
	"go.uber.org/zap"
)

// Intents needed to see guilds, their roles and member role changes.
// GUILD_MEMBERS is privileged and must be enabled for the application.
const Intents = gateway.IntentGuilds | gateway.IntentGuildMembers

// Bot owns the Discord session and the components acting on it.
type Bot struct {
	config    *config.Config
	state     *state.State
	directory *discord.Directory
	watcher   *discord.Watcher
	mutator   *gatekeep.Mutator
	logger    *zap.Logger
}

// New creates a Bot from the application config. Nothing connects until Start
// or Reconcile is called.
func New(app *setup.App) *Bot {
	cfg := app.Config
	logger := app.Logger

	token := cfg.Discord.Token
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}

	s := state.NewWithIntents(token, Intents)
	store := memberstate.NewStore()

	directory := discord.NewDirectory(s, store, discord.DirectoryOptions{
		ListInterval:   time.Duration(cfg.Reconcile.ListInterval) * time.Millisecond,
		ListJitter:     time.Duration(cfg.Reconcile.ListJitter) * time.Millisecond,
		BreakerTimeout: time.Duration(cfg.CircuitBreaker.Timeout) * time.Millisecond,
	}, logger)

	b := &Bot{
		config:    cfg,
		state:     s,
		directory: directory,
		watcher:   discord.NewWatcher(s, store, directory, logger),
		mutator:   gatekeep.NewMutator(directory, cfg.RetryOptions(), cfg.Reconcile.DryRun, logger),
		logger:    logger.Named("bot"),
	}

	s.AddHandler(func(e *gateway.ReadyEvent) {
		b.logger.Info("Connected to Discord",
			zap.String("user", e.User.Tag()),
			zap.Int("guilds", len(e.Guilds)))
	})

	return b
}

// Start connects to the gateway, resolves the role bindings, sweeps every
// configured guild and then reacts to role changes until Close is called.
// A resolution failure is returned and the bot should not keep running.
func (b *Bot) Start(ctx context.Context) error {
	b.watcher.Bind()

	if err := b.state.Open(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	service, err := b.service()
	if err != nil {
		return err
	}

	return service.Start(ctx, b.watcher)
}

// Reconcile resolves the role bindings and sweeps every configured guild once
// over the REST API without opening the gateway.
func (b *Bot) Reconcile(ctx context.Context) (gatekeep.Summary, error) {
	service, err := b.service()
	if err != nil {
		return gatekeep.Summary{}, err
	}

	return service.Reconcile(ctx)
}

// Close stops reacting to events and closes the gateway.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.watcher.Close()

	if err := b.state.Close(); err != nil {
		b.logger.Warn("Failed to close gateway", zap.Error(err))
	}
}

func (b *Bot) service() (*gatekeep.Service, error) {
	policy, err := b.config.AmbiguityPolicy()
	if err != nil {
		return nil, err
	}

	return gatekeep.NewService(b.directory, b.mutator, gatekeep.ServiceOptions{
		Names:              b.config.RoleNames(),
		Ambiguity:          policy,
		Concurrency:        b.config.Reconcile.Concurrency,
		ReconcileOnStartup: b.config.Reconcile.OnStartup,
	}, b.logger), nil
}
