package gatekeep

// Action is a correction to apply to a member's access role.
//
//go:generate go tool enumer -type=Action -trimprefix=Action
type Action int

const (
	// ActionNone leaves the member unchanged.
	ActionNone Action = iota
	// ActionGrant adds the access role.
	ActionGrant
	// ActionRevoke removes the access role.
	ActionRevoke
)

// RoleState is the possession triple of the three configured roles for one member.
type RoleState struct {
	HasIntegration bool
	HasGatekeep    bool
	HasAccess      bool
}

// ShouldHaveAccess reports whether the member is eligible for the access role.
func (s RoleState) ShouldHaveAccess() bool {
	return s.HasIntegration && s.HasGatekeep
}

// Decide returns the action that brings the access role in line with the
// prerequisites. A member already in the right state gets ActionNone.
func Decide(s RoleState) Action {
	switch want := s.ShouldHaveAccess(); {
	case want && !s.HasAccess:
		return ActionGrant
	case !want && s.HasAccess:
		return ActionRevoke
	default:
		return ActionNone
	}
}

// Apply returns the state after performing the action.
func (s RoleState) Apply(action Action) RoleState {
	switch action {
	case ActionGrant:
		s.HasAccess = true
	case ActionRevoke:
		s.HasAccess = false
	case ActionNone:
	}

	return s
}
