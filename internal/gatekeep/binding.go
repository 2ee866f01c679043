package gatekeep

import (
	"maps"
	"slices"
)

// Binding holds the three roles resolved for one guild.
type Binding struct {
	GuildID     uint64
	Integration Role
	Access      Role
	Gatekeep    Role
}

// StateOf computes which of the bound roles a role set contains.
func (b Binding) StateOf(roleIDs []uint64) RoleState {
	return RoleState{
		HasIntegration: slices.Contains(roleIDs, b.Integration.ID),
		HasGatekeep:    slices.Contains(roleIDs, b.Gatekeep.ID),
		HasAccess:      slices.Contains(roleIDs, b.Access.ID),
	}
}

// Prerequisite returns the kind of a bound prerequisite role ID, or RoleKindNone
// when the ID is neither the integration nor the gatekeep role of this guild.
func (b Binding) Prerequisite(roleID uint64) RoleKind {
	switch roleID {
	case b.Integration.ID:
		return RoleKindIntegration
	case b.Gatekeep.ID:
		return RoleKindGatekeep
	default:
		return RoleKindNone
	}
}

// BindingTable maps guild IDs to their resolved roles. It is built once by the
// Resolver and never modified afterwards, so it is safe for concurrent reads.
// A guild missing from the table is unconfigured.
type BindingTable struct {
	names    RoleNames
	bindings map[uint64]Binding
}

// NewBindingTable creates a table from a set of bindings.
func NewBindingTable(names RoleNames, bindings ...Binding) *BindingTable {
	t := &BindingTable{
		names:    names,
		bindings: make(map[uint64]Binding, len(bindings)),
	}
	for _, b := range bindings {
		t.bindings[b.GuildID] = b
	}

	return t
}

// Names returns the role names the table was resolved from.
func (t *BindingTable) Names() RoleNames {
	return t.names
}

// Lookup returns the binding for a guild.
func (t *BindingTable) Lookup(guildID uint64) (Binding, bool) {
	b, ok := t.bindings[guildID]
	return b, ok
}

// GuildIDs returns the configured guild IDs in ascending order.
func (t *BindingTable) GuildIDs() []uint64 {
	return slices.Sorted(maps.Keys(t.bindings))
}

// Len returns the number of configured guilds.
func (t *BindingTable) Len() int {
	return len(t.bindings)
}
