package gatekeep_test

import (
	"testing"

	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleNamesKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     string
		expected gatekeep.RoleKind
	}{
		{name: "exact integration", role: "twitch subscriber", expected: gatekeep.RoleKindIntegration},
		{name: "mixed case gatekeep", role: "FoLLoWeR", expected: gatekeep.RoleKindGatekeep},
		{name: "access", role: "Subscriber Access", expected: gatekeep.RoleKindAccess},
		{name: "substring is not a match", role: "follower+", expected: gatekeep.RoleKindNone},
		{name: "prefix is not a match", role: "twitch", expected: gatekeep.RoleKindNone},
		{name: "empty", role: "", expected: gatekeep.RoleKindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, testNames.KindOf(tt.role))
		})
	}
}

func TestRoleNamesValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		names   gatekeep.RoleNames
		wantErr bool
	}{
		{name: "defaults", names: testNames},
		{
			name:    "empty access",
			names:   gatekeep.RoleNames{Integration: "a", Access: " ", Gatekeep: "c"},
			wantErr: true,
		},
		{
			name:    "integration equals gatekeep",
			names:   gatekeep.RoleNames{Integration: "Member", Access: "b", Gatekeep: "member"},
			wantErr: true,
		},
		{
			name:    "access equals gatekeep",
			names:   gatekeep.RoleNames{Integration: "a", Access: "vip", Gatekeep: "VIP"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.names.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, gatekeep.ErrInvalidRoleNames)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Gatekeep", gatekeep.RoleKindGatekeep.String())
	assert.Equal(t, "MissingPrerequisite", gatekeep.OutcomeMissingPrerequisite.String())

	policy, err := gatekeep.AmbiguityPolicyString("first")
	require.NoError(t, err)
	assert.Equal(t, gatekeep.AmbiguityPolicyFirst, policy)

	_, err = gatekeep.AmbiguityPolicyString("random")
	require.Error(t, err)
}
