package gatekeep

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/gatekeeper/pkg/utils"
	"go.uber.org/zap"
)

// Mutator applies access role changes to the directory. Transient failures are
// retried; in dry-run mode changes are only logged.
type Mutator struct {
	dir    Directory
	retry  utils.RetryOptions
	dryRun bool
	logger *zap.Logger
}

// NewMutator creates a Mutator.
func NewMutator(dir Directory, retry utils.RetryOptions, dryRun bool, logger *zap.Logger) *Mutator {
	return &Mutator{
		dir:    dir,
		retry:  retry,
		dryRun: dryRun,
		logger: logger.Named("mutator"),
	}
}

// Apply performs the action on the member's access role. ActionNone is a no-op.
func (m *Mutator) Apply(ctx context.Context, action Action, binding Binding, member Member, reason string) error {
	var call func(ctx context.Context, guildID, userID, roleID uint64, reason string) error

	switch action {
	case ActionGrant:
		call = m.dir.GrantRole
	case ActionRevoke:
		call = m.dir.RevokeRole
	case ActionNone:
		return nil
	default:
		return fmt.Errorf("unknown action %s", action)
	}

	logger := m.logger.With(
		zap.String("action", action.String()),
		zap.Uint64("guild_id", binding.GuildID),
		zap.Uint64("user_id", member.UserID),
		zap.String("username", member.Username),
		zap.String("display_name", member.DisplayName),
		zap.Uint64("role_id", binding.Access.ID),
		zap.String("reason", reason))

	if m.dryRun {
		logger.Info("Dry run, skipping access role change")
		return nil
	}

	err := utils.WithRetry(ctx, func() error {
		return call(ctx, binding.GuildID, member.UserID, binding.Access.ID, reason)
	}, m.retry, func(err error, next time.Duration) {
		logger.Warn("Access role change failed, retrying", zap.Error(err), zap.Duration("next", next))
	})
	if err != nil {
		return fmt.Errorf("failed to apply %s to access role of user %d in guild %d: %w",
			action, member.UserID, binding.GuildID, err)
	}

	logger.Info("Changed access role")

	return nil
}
