package gatekeep

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Names              RoleNames
	Ambiguity          AmbiguityPolicy
	Concurrency        int  // guilds swept at once
	ReconcileOnStartup bool // sweep before reacting to events
}

// Service runs the gatekeeping lifecycle against a directory: resolve the
// bindings, optionally sweep every guild, then react to role events.
type Service struct {
	dir     Directory
	mutator *Mutator
	opts    ServiceOptions
	logger  *zap.Logger
}

// NewService creates a Service.
func NewService(dir Directory, mutator *Mutator, opts ServiceOptions, logger *zap.Logger) *Service {
	return &Service{
		dir:     dir,
		mutator: mutator,
		opts:    opts,
		logger:  logger,
	}
}

// Resolve builds the binding table from the directory's current roles.
func (s *Service) Resolve(ctx context.Context) (*BindingTable, error) {
	table, err := NewResolver(s.dir, s.opts.Names, s.opts.Ambiguity, s.logger).Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roles: %w", err)
	}

	s.logger.Debug("Managing guilds", zap.Uint64s("guild_ids", table.GuildIDs()))

	return table, nil
}

// Reconcile resolves the bindings and sweeps every configured guild once.
func (s *Service) Reconcile(ctx context.Context) (Summary, error) {
	table, err := s.Resolve(ctx)
	if err != nil {
		return Summary{}, err
	}

	return s.reconciler(table).Run(ctx)
}

// Start resolves the bindings, sweeps when enabled and subscribes a reactor to
// source. The reactor is subscribed only after the sweep has finished.
func (s *Service) Start(ctx context.Context, source EventSource) error {
	table, err := s.Resolve(ctx)
	if err != nil {
		return err
	}

	if s.opts.ReconcileOnStartup {
		if _, err := s.reconciler(table).Run(ctx); err != nil {
			return err
		}
	} else {
		s.logger.Info("Startup reconciliation disabled")
	}

	NewReactor(s.dir, table, s.mutator, s.logger).Subscribe(source)

	return nil
}

func (s *Service) reconciler(table *BindingTable) *Reconciler {
	return NewReconciler(s.dir, table, s.mutator, s.opts.Concurrency, s.logger)
}
