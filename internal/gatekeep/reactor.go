package gatekeep

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

const (
	reasonGrantAfterIntegration = "Integration role added while gatekeep role is held"
	reasonGrantAfterGatekeep    = "Gatekeep role added while integration role is held"
	reasonRevokeIntegration     = "Removing access role in response to integration role removal"
	reasonRevokeGatekeep        = "Removing access role in response to gatekeep role removal"
)

// Outcome describes how the reactor handled a role event.
//
//go:generate go tool enumer -type=Outcome -trimprefix=Outcome
type Outcome int

const (
	// OutcomeIgnored means the role is not a prerequisite role by name.
	OutcomeIgnored Outcome = iota
	// OutcomeUnconfigured means the guild has no binding.
	OutcomeUnconfigured
	// OutcomeAlreadyCorrect means the member already holds the access role.
	OutcomeAlreadyCorrect
	// OutcomeMissingPrerequisite means the member lacks the other prerequisite.
	OutcomeMissingPrerequisite
	// OutcomeUnexpectedRole means the role matches a configured name but is not the bound role.
	OutcomeUnexpectedRole
	// OutcomeGranted means the access role was granted.
	OutcomeGranted
	// OutcomeRevoked means the access role was revoked.
	OutcomeRevoked
	// OutcomeFailed means reading member roles or the mutation failed.
	OutcomeFailed
)

// Reactor keeps the access role in step with prerequisite role changes as they happen.
// It holds no per-member state; each event is evaluated against the member's current roles.
type Reactor struct {
	dir     Directory
	table   *BindingTable
	mutator *Mutator
	logger  *zap.Logger
}

// NewReactor creates a Reactor.
func NewReactor(dir Directory, table *BindingTable, mutator *Mutator, logger *zap.Logger) *Reactor {
	return &Reactor{
		dir:     dir,
		table:   table,
		mutator: mutator,
		logger:  logger.Named("reactor"),
	}
}

// Subscribe registers the reactor's handlers with an event source.
func (r *Reactor) Subscribe(source EventSource) {
	source.OnRoleGranted(func(ctx context.Context, event RoleEvent) {
		r.HandleRoleGranted(ctx, event)
	})
	source.OnRoleRevoked(func(ctx context.Context, event RoleEvent) {
		r.HandleRoleRevoked(ctx, event)
	})

	r.logger.Info("Listening to role events")
}

// HandleRoleGranted grants the access role when the granted prerequisite completes the pair.
func (r *Reactor) HandleRoleGranted(ctx context.Context, event RoleEvent) Outcome {
	logger := r.eventLogger(event)

	binding, outcome, ok := r.prerequisiteBinding(event, logger)
	if !ok {
		return outcome
	}

	roleIDs, err := r.dir.MemberRoles(ctx, binding.GuildID, event.Member.UserID)
	if err != nil {
		logger.Warn("Failed to get member roles", zap.Error(err))
		return OutcomeFailed
	}

	if slices.Contains(roleIDs, binding.Access.ID) {
		logger.Debug("Member already has access role")
		return OutcomeAlreadyCorrect
	}

	var (
		complement Role
		reason     string
	)

	switch binding.Prerequisite(event.Role.ID) {
	case RoleKindIntegration:
		complement, reason = binding.Gatekeep, reasonGrantAfterIntegration
	case RoleKindGatekeep:
		complement, reason = binding.Integration, reasonGrantAfterGatekeep
	case RoleKindNone, RoleKindAccess:
		logger.Warn("Unknown role addition detected, not the expected role ID. " +
			"Guild may have configuration issues that conflict with this bot")

		return OutcomeUnexpectedRole
	}

	if !slices.Contains(roleIDs, complement.ID) {
		logger.Warn("Unable to give access, member does not have the other prerequisite role",
			zap.String("missing_role", complement.Name))

		return OutcomeMissingPrerequisite
	}

	member := event.Member
	member.RoleIDs = roleIDs

	if err := r.mutator.Apply(ctx, ActionGrant, binding, member, reason); err != nil {
		logger.Warn("Failed to grant access role", zap.Error(err))
		return OutcomeFailed
	}

	return OutcomeGranted
}

// HandleRoleRevoked revokes the access role when either prerequisite is removed.
// The revoke is issued without checking whether the member still holds access.
func (r *Reactor) HandleRoleRevoked(ctx context.Context, event RoleEvent) Outcome {
	logger := r.eventLogger(event)

	binding, outcome, ok := r.prerequisiteBinding(event, logger)
	if !ok {
		return outcome
	}

	var reason string

	switch binding.Prerequisite(event.Role.ID) {
	case RoleKindIntegration:
		reason = reasonRevokeIntegration
	case RoleKindGatekeep:
		reason = reasonRevokeGatekeep
	case RoleKindNone, RoleKindAccess:
		logger.Warn("Unknown role removal detected, not the expected role ID. " +
			"Guild may have configuration issues that conflict with this bot")

		return OutcomeUnexpectedRole
	}

	if err := r.mutator.Apply(ctx, ActionRevoke, binding, event.Member, reason); err != nil {
		logger.Warn("Failed to revoke access role", zap.Error(err))
		return OutcomeFailed
	}

	return OutcomeRevoked
}

// prerequisiteBinding filters out events for roles that are not prerequisites by
// name and events from unconfigured guilds.
func (r *Reactor) prerequisiteBinding(event RoleEvent, logger *zap.Logger) (Binding, Outcome, bool) {
	switch r.table.Names().KindOf(event.Role.Name) {
	case RoleKindIntegration, RoleKindGatekeep:
	case RoleKindNone, RoleKindAccess:
		logger.Debug("Event for a role we are not interested in")
		return Binding{}, OutcomeIgnored, false
	}

	binding, ok := r.table.Lookup(event.Role.GuildID)
	if !ok {
		logger.Info("Not currently configured to handle guild, restart to pick up role changes")
		return Binding{}, OutcomeUnconfigured, false
	}

	return binding, 0, true
}

func (r *Reactor) eventLogger(event RoleEvent) *zap.Logger {
	return r.logger.With(
		zap.Uint64("guild_id", event.Role.GuildID),
		zap.Uint64("user_id", event.Member.UserID),
		zap.String("username", event.Member.Username),
		zap.Uint64("role_id", event.Role.ID),
		zap.String("role_name", event.Role.Name))
}
