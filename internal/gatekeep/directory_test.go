package gatekeep_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/robalyx/gatekeeper/pkg/utils"
	"go.uber.org/zap/zaptest"
)

var (
	errUnavailable = errors.New("discord unavailable")
	errForbidden   = errors.New("missing permissions")
)

const (
	guildA = uint64(1000)
	guildB = uint64(2000)

	integrationA = uint64(1001)
	accessA      = uint64(1002)
	gatekeepA    = uint64(1003)
	otherA       = uint64(1004)
)

var testNames = gatekeep.RoleNames{
	Integration: "twitch subscriber",
	Access:      "subscriber access",
	Gatekeep:    "follower",
}

// mutation records a grant or revoke issued against the fake directory.
type mutation struct {
	action  gatekeep.Action
	guildID uint64
	userID  uint64
	roleID  uint64
	reason  string
}

// fakeDirectory is an in-memory Directory. Mutations update member role sets.
type fakeDirectory struct {
	mu         sync.Mutex
	guilds     []gatekeep.Guild
	roles      []gatekeep.Role
	members    map[uint64][]gatekeep.Member
	mutations  []mutation
	memberErrs map[uint64]error
	// failures lists errors returned by successive mutation calls before succeeding.
	failures []error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		members:    make(map[uint64][]gatekeep.Member),
		memberErrs: make(map[uint64]error),
	}
}

func (f *fakeDirectory) addGuild(id uint64, name string, roles ...gatekeep.Role) {
	f.guilds = append(f.guilds, gatekeep.Guild{ID: id, Name: name})
	for _, role := range roles {
		role.GuildID = id
		f.roles = append(f.roles, role)
	}
}

func (f *fakeDirectory) addMember(guildID, userID uint64, roleIDs ...uint64) {
	f.members[guildID] = append(f.members[guildID], gatekeep.Member{
		GuildID:  guildID,
		UserID:   userID,
		Username: "user",
		RoleIDs:  slices.Clone(roleIDs),
	})
}

func (f *fakeDirectory) member(guildID, userID uint64) gatekeep.Member {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.members[guildID] {
		if m.UserID == userID {
			m.RoleIDs = slices.Clone(m.RoleIDs)
			return m
		}
	}

	return gatekeep.Member{GuildID: guildID, UserID: userID}
}

func (f *fakeDirectory) recorded() []mutation {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.mutations)
}

func (f *fakeDirectory) RolesByName(_ context.Context, name string) ([]gatekeep.Role, error) {
	var roles []gatekeep.Role
	for _, role := range f.roles {
		if strings.EqualFold(role.Name, name) {
			roles = append(roles, role)
		}
	}

	return roles, nil
}

func (f *fakeDirectory) Guilds(_ context.Context) ([]gatekeep.Guild, error) {
	return slices.Clone(f.guilds), nil
}

func (f *fakeDirectory) Members(_ context.Context, guildID uint64) ([]gatekeep.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memberErrs[guildID]; err != nil {
		return nil, err
	}

	members := make([]gatekeep.Member, len(f.members[guildID]))
	for i, m := range f.members[guildID] {
		m.RoleIDs = slices.Clone(m.RoleIDs)
		members[i] = m
	}

	return members, nil
}

func (f *fakeDirectory) MemberRoles(_ context.Context, guildID, userID uint64) ([]uint64, error) {
	return f.member(guildID, userID).RoleIDs, nil
}

func (f *fakeDirectory) GrantRole(_ context.Context, guildID, userID, roleID uint64, reason string) error {
	return f.mutate(gatekeep.ActionGrant, guildID, userID, roleID, reason)
}

func (f *fakeDirectory) RevokeRole(_ context.Context, guildID, userID, roleID uint64, reason string) error {
	return f.mutate(gatekeep.ActionRevoke, guildID, userID, roleID, reason)
}

func (f *fakeDirectory) mutate(action gatekeep.Action, guildID, userID, roleID uint64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]

		return err
	}

	f.mutations = append(f.mutations, mutation{
		action:  action,
		guildID: guildID,
		userID:  userID,
		roleID:  roleID,
		reason:  reason,
	})

	members := f.members[guildID]
	for i := range members {
		if members[i].UserID != userID {
			continue
		}

		switch action {
		case gatekeep.ActionGrant:
			if !slices.Contains(members[i].RoleIDs, roleID) {
				members[i].RoleIDs = append(members[i].RoleIDs, roleID)
			}
		case gatekeep.ActionRevoke:
			members[i].RoleIDs = slices.DeleteFunc(members[i].RoleIDs, func(id uint64) bool {
				return id == roleID
			})
		case gatekeep.ActionNone:
		}
	}

	return nil
}

// newGuildADirectory returns a directory with one fully configured guild.
func newGuildADirectory() *fakeDirectory {
	dir := newFakeDirectory()
	dir.addGuild(guildA, "guild a",
		gatekeep.Role{ID: integrationA, Name: "Twitch Subscriber"},
		gatekeep.Role{ID: accessA, Name: "subscriber access"},
		gatekeep.Role{ID: gatekeepA, Name: "FOLLOWER"},
		gatekeep.Role{ID: otherA, Name: "moderator"},
	)

	return dir
}

func bindingA() gatekeep.Binding {
	return gatekeep.Binding{
		GuildID:     guildA,
		Integration: gatekeep.Role{ID: integrationA, GuildID: guildA, Name: "Twitch Subscriber"},
		Access:      gatekeep.Role{ID: accessA, GuildID: guildA, Name: "subscriber access"},
		Gatekeep:    gatekeep.Role{ID: gatekeepA, GuildID: guildA, Name: "FOLLOWER"},
	}
}

func fastRetry() utils.RetryOptions {
	return utils.RetryOptions{
		MaxElapsedTime:  200 * time.Millisecond,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxRetries:      2,
	}
}

func newTestMutator(t *testing.T, dir gatekeep.Directory, dryRun bool) *gatekeep.Mutator {
	t.Helper()
	return gatekeep.NewMutator(dir, fastRetry(), dryRun, zaptest.NewLogger(t))
}
