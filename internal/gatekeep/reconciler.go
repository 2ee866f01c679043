package gatekeep

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	reasonSweepGrant  = "Reconcile: member holds both integration and gatekeep roles"
	reasonSweepRevoke = "Reconcile: member no longer holds both gatekeep and integration roles"
)

// Summary reports the outcome of a reconciliation sweep.
type Summary struct {
	Guilds  int // guilds swept
	Skipped int // guilds without a binding
	Members int // members checked
	Granted int
	Revoked int
	Failed  int // failed member listings and failed mutations
}

func (s *Summary) add(o Summary) {
	s.Guilds += o.Guilds
	s.Skipped += o.Skipped
	s.Members += o.Members
	s.Granted += o.Granted
	s.Revoked += o.Revoked
	s.Failed += o.Failed
}

// Reconciler corrects access role drift for every member of every configured guild.
type Reconciler struct {
	dir         Directory
	table       *BindingTable
	mutator     *Mutator
	concurrency int
	logger      *zap.Logger
}

// NewReconciler creates a Reconciler. Guilds are swept concurrently, up to
// concurrency at a time; members of one guild are handled in order.
func NewReconciler(
	dir Directory, table *BindingTable, mutator *Mutator, concurrency int, logger *zap.Logger,
) *Reconciler {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Reconciler{
		dir:         dir,
		table:       table,
		mutator:     mutator,
		concurrency: concurrency,
		logger:      logger.Named("reconciler"),
	}
}

// Run performs one sweep. Failures for single guilds or members are logged and
// counted; only failing to list guilds at all returns an error.
func (r *Reconciler) Run(ctx context.Context) (Summary, error) {
	r.logger.Info("Reconciling roles")

	guilds, err := r.dir.Guilds(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list guilds: %w", err)
	}

	p := pool.NewWithResults[Summary]().WithMaxGoroutines(r.concurrency)

	for _, guild := range guilds {
		p.Go(func() Summary {
			return r.reconcileGuild(ctx, guild)
		})
	}

	var total Summary
	for _, s := range p.Wait() {
		total.add(s)
	}

	r.logger.Info("Finished reconciling roles",
		zap.Int("guilds", total.Guilds),
		zap.Int("skipped_guilds", total.Skipped),
		zap.Int("members", total.Members),
		zap.Int("granted", total.Granted),
		zap.Int("revoked", total.Revoked),
		zap.Int("failed", total.Failed))

	return total, nil
}

// reconcileGuild sweeps the members of a single guild.
func (r *Reconciler) reconcileGuild(ctx context.Context, guild Guild) Summary {
	binding, ok := r.table.Lookup(guild.ID)
	if !ok {
		r.logger.Info("Not currently configured to handle guild, restart to pick up role changes",
			zap.Uint64("guild_id", guild.ID),
			zap.String("guild_name", guild.Name))

		return Summary{Skipped: 1}
	}

	members, err := r.dir.Members(ctx, guild.ID)
	if err != nil {
		r.logger.Error("Failed to list guild members",
			zap.Uint64("guild_id", guild.ID),
			zap.String("guild_name", guild.Name),
			zap.Error(err))

		return Summary{Guilds: 1, Failed: 1}
	}

	summary := Summary{Guilds: 1}

	for _, member := range members {
		if ctx.Err() != nil {
			break
		}

		summary.Members++

		action, err := r.ReconcileMember(ctx, binding, member)
		if err != nil {
			r.logger.Warn("Failed to reconcile member",
				zap.Uint64("guild_id", guild.ID),
				zap.Uint64("user_id", member.UserID),
				zap.Error(err))

			summary.Failed++

			continue
		}

		switch action {
		case ActionGrant:
			summary.Granted++
		case ActionRevoke:
			summary.Revoked++
		case ActionNone:
		}
	}

	r.logger.Debug("Reconciled guild",
		zap.Uint64("guild_id", guild.ID),
		zap.String("guild_name", guild.Name),
		zap.Int("members", summary.Members))

	return summary
}

// ReconcileMember applies the access role policy to one member and returns the
// action taken.
func (r *Reconciler) ReconcileMember(ctx context.Context, binding Binding, member Member) (Action, error) {
	state := binding.StateOf(member.RoleIDs)
	action := Decide(state)

	r.logger.Debug("Reconciling member",
		zap.Uint64("guild_id", binding.GuildID),
		zap.Uint64("user_id", member.UserID),
		zap.String("username", member.Username),
		zap.Bool("has_integration", state.HasIntegration),
		zap.Bool("has_gatekeep", state.HasGatekeep),
		zap.Bool("has_access", state.HasAccess),
		zap.String("action", action.String()))

	var reason string

	switch action {
	case ActionGrant:
		reason = reasonSweepGrant
	case ActionRevoke:
		reason = reasonSweepRevoke
	case ActionNone:
		return ActionNone, nil
	}

	if err := r.mutator.Apply(ctx, action, binding, member, reason); err != nil {
		return ActionNone, err
	}

	return action, nil
}
