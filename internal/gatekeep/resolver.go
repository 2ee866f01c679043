package gatekeep

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
)

var (
	// ErrRoleNotFound is returned when a configured role name matches no role in any guild.
	ErrRoleNotFound = errors.New("role not found in any guild")
	// ErrAmbiguousRole is returned under AmbiguityPolicyFail when a guild has several
	// roles with the same configured name.
	ErrAmbiguousRole = errors.New("role name is ambiguous")
)

// AmbiguityPolicy decides what happens when a guild has more than one role
// matching a configured name.
//
//go:generate go tool enumer -type=AmbiguityPolicy -trimprefix=AmbiguityPolicy
type AmbiguityPolicy int

const (
	// AmbiguityPolicyExclude leaves the guild out of the binding table.
	AmbiguityPolicyExclude AmbiguityPolicy = iota
	// AmbiguityPolicyFirst binds the oldest matching role.
	AmbiguityPolicyFirst
	// AmbiguityPolicyFail aborts resolution.
	AmbiguityPolicyFail
)

// boundKinds are the kinds every binding holds one role of.
var boundKinds = []RoleKind{RoleKindIntegration, RoleKindAccess, RoleKindGatekeep}

// Resolver builds the binding table from the roles currently visible in the directory.
type Resolver struct {
	dir       Directory
	names     RoleNames
	ambiguity AmbiguityPolicy
	logger    *zap.Logger
}

// NewResolver creates a Resolver for the given role names.
func NewResolver(dir Directory, names RoleNames, ambiguity AmbiguityPolicy, logger *zap.Logger) *Resolver {
	return &Resolver{
		dir:       dir,
		names:     names,
		ambiguity: ambiguity,
		logger:    logger.Named("resolver"),
	}
}

// Resolve looks up every configured role across all guilds and returns the
// resulting table. Any name without a single match anywhere is an error.
func (r *Resolver) Resolve(ctx context.Context) (*BindingTable, error) {
	perGuild := make(map[uint64]map[RoleKind][]Role)

	for _, kind := range boundKinds {
		name := r.names.Name(kind)

		roles, err := r.dir.RolesByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s role %q: %w", kind, name, err)
		}

		if len(roles) == 0 {
			return nil, fmt.Errorf("%w: %s role %q", ErrRoleNotFound, kind, name)
		}

		r.logger.Debug("Found roles by name",
			zap.String("kind", kind.String()),
			zap.String("name", name),
			zap.Int("count", len(roles)))

		for _, role := range roles {
			if perGuild[role.GuildID] == nil {
				perGuild[role.GuildID] = make(map[RoleKind][]Role)
			}

			perGuild[role.GuildID][kind] = append(perGuild[role.GuildID][kind], role)
		}
	}

	bindings := make([]Binding, 0, len(perGuild))

	for _, guildID := range slices.Sorted(maps.Keys(perGuild)) {
		binding, ok, err := r.bindGuild(guildID, perGuild[guildID])
		if err != nil {
			return nil, err
		}

		if ok {
			bindings = append(bindings, binding)
		}
	}

	table := NewBindingTable(r.names, bindings...)
	r.logger.Info("Resolved role bindings",
		zap.Int("configured_guilds", table.Len()),
		zap.Int("seen_guilds", len(perGuild)))

	return table, nil
}

// bindGuild picks one role of each kind for a guild.
func (r *Resolver) bindGuild(guildID uint64, found map[RoleKind][]Role) (Binding, bool, error) {
	binding := Binding{GuildID: guildID}

	for _, kind := range boundKinds {
		roles := found[kind]
		if len(roles) == 0 {
			r.logger.Info("Guild is missing a configured role, it will not be managed",
				zap.Uint64("guild_id", guildID),
				zap.String("kind", kind.String()),
				zap.String("name", r.names.Name(kind)))

			return Binding{}, false, nil
		}

		role := roles[0]

		if len(roles) > 1 {
			ids := make([]uint64, len(roles))
			for i, match := range roles {
				ids[i] = match.ID
			}

			switch r.ambiguity {
			case AmbiguityPolicyFail:
				return Binding{}, false, fmt.Errorf("%w: guild %d has %d %s roles named %q",
					ErrAmbiguousRole, guildID, len(roles), kind, r.names.Name(kind))
			case AmbiguityPolicyFirst:
				role = slices.MinFunc(roles, func(a, b Role) int {
					return cmp.Compare(a.ID, b.ID)
				})

				r.logger.Warn("Guild has several roles with the same name, using the oldest",
					zap.Uint64("guild_id", guildID),
					zap.String("kind", kind.String()),
					zap.Uint64s("role_ids", ids),
					zap.Uint64("chosen_role_id", role.ID))
			case AmbiguityPolicyExclude:
				r.logger.Error("Guild has several roles with the same name, it will not be managed",
					zap.Uint64("guild_id", guildID),
					zap.String("kind", kind.String()),
					zap.Uint64s("role_ids", ids))

				return Binding{}, false, nil
			}
		}

		switch kind {
		case RoleKindIntegration:
			binding.Integration = role
		case RoleKindAccess:
			binding.Access = role
		case RoleKindGatekeep:
			binding.Gatekeep = role
		case RoleKindNone:
		}
	}

	return binding, true, nil
}
