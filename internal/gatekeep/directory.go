package gatekeep

import (
	"context"
	"slices"
)

// Role is a guild role as seen by the directory.
type Role struct {
	ID      uint64
	GuildID uint64
	Name    string
}

// Guild is a server the bot is a member of.
type Guild struct {
	ID   uint64
	Name string
}

// Member is a user's membership record within one guild.
type Member struct {
	GuildID     uint64
	UserID      uint64
	Username    string
	DisplayName string
	RoleIDs     []uint64
}

// HasRole reports whether the member currently holds the given role.
func (m Member) HasRole(roleID uint64) bool {
	return slices.Contains(m.RoleIDs, roleID)
}

// RoleEvent describes a single role being granted to or revoked from a member.
type RoleEvent struct {
	Role   Role
	Member Member
}

// Directory is the view of the chat platform the reconciliation logic needs.
// Implementations must be safe for concurrent use.
type Directory interface {
	// RolesByName returns every role across all joined guilds whose name matches
	// name case-insensitively.
	RolesByName(ctx context.Context, name string) ([]Role, error)
	// Guilds lists the guilds the bot currently belongs to.
	Guilds(ctx context.Context) ([]Guild, error)
	// Members lists the current members of a guild.
	Members(ctx context.Context, guildID uint64) ([]Member, error)
	// MemberRoles returns the role IDs a member currently holds in a guild.
	MemberRoles(ctx context.Context, guildID, userID uint64) ([]uint64, error)
	// GrantRole adds a role to a member. The reason is recorded in the guild audit log.
	GrantRole(ctx context.Context, guildID, userID, roleID uint64, reason string) error
	// RevokeRole removes a role from a member. The reason is recorded in the guild audit log.
	RevokeRole(ctx context.Context, guildID, userID, roleID uint64, reason string) error
}

// RoleEventHandler handles a single role event.
type RoleEventHandler func(ctx context.Context, event RoleEvent)

// EventSource delivers role change notifications. Handlers may be invoked
// concurrently, including for the same member.
type EventSource interface {
	OnRoleGranted(handler RoleEventHandler)
	OnRoleRevoked(handler RoleEventHandler)
}
