package gatekeep

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRoleNames indicates the configured role names cannot be used.
var ErrInvalidRoleNames = errors.New("invalid role names")

// RoleKind identifies which of the configured roles a role plays.
//
//go:generate go tool enumer -type=RoleKind -trimprefix=RoleKind
type RoleKind int

const (
	// RoleKindNone is any role that is not one of the configured roles.
	RoleKindNone RoleKind = iota
	// RoleKindIntegration is the role assigned by the external integration.
	RoleKindIntegration
	// RoleKindAccess is the derived role this bot manages.
	RoleKindAccess
	// RoleKindGatekeep is the manually curated prerequisite role.
	RoleKindGatekeep
)

// RoleNames holds the three configured role names.
type RoleNames struct {
	Integration string
	Access      string
	Gatekeep    string
}

// Validate checks that every name is set and that no two kinds share a name.
func (n RoleNames) Validate() error {
	for _, kind := range boundKinds {
		if strings.TrimSpace(n.Name(kind)) == "" {
			return fmt.Errorf("%w: %s role name is empty", ErrInvalidRoleNames, kind)
		}
	}

	switch {
	case SameRoleName(n.Integration, n.Access):
		return fmt.Errorf("%w: integration and access roles are both %q", ErrInvalidRoleNames, n.Access)
	case SameRoleName(n.Integration, n.Gatekeep):
		return fmt.Errorf("%w: integration and gatekeep roles are both %q", ErrInvalidRoleNames, n.Gatekeep)
	case SameRoleName(n.Access, n.Gatekeep):
		return fmt.Errorf("%w: access and gatekeep roles are both %q", ErrInvalidRoleNames, n.Gatekeep)
	}

	return nil
}

// Name returns the configured name for a kind.
func (n RoleNames) Name(kind RoleKind) string {
	switch kind {
	case RoleKindIntegration:
		return n.Integration
	case RoleKindAccess:
		return n.Access
	case RoleKindGatekeep:
		return n.Gatekeep
	case RoleKindNone:
	}

	return ""
}

// KindOf matches a role name against the configured names. Matching is
// case-insensitive and exact.
func (n RoleNames) KindOf(name string) RoleKind {
	switch {
	case SameRoleName(name, n.Integration):
		return RoleKindIntegration
	case SameRoleName(name, n.Access):
		return RoleKindAccess
	case SameRoleName(name, n.Gatekeep):
		return RoleKindGatekeep
	default:
		return RoleKindNone
	}
}

// SameRoleName reports whether two role names match, ignoring case.
func SameRoleName(a, b string) bool {
	return strings.EqualFold(a, b)
}
