package gatekeep_test

import (
	"testing"

	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// sweepObservingSource records how many mutations had been made when the
// reactor subscribed.
type sweepObservingSource struct {
	fakeEventSource

	dir                  *fakeDirectory
	subscribed           bool
	mutationsAtSubscribe int
}

func (s *sweepObservingSource) OnRoleGranted(h gatekeep.RoleEventHandler) {
	s.subscribed = true
	s.mutationsAtSubscribe = len(s.dir.recorded())
	s.fakeEventSource.OnRoleGranted(h)
}

func newTestService(t *testing.T, dir *fakeDirectory, onStartup bool) *gatekeep.Service {
	t.Helper()

	return gatekeep.NewService(dir, newTestMutator(t, dir, false), gatekeep.ServiceOptions{
		Names:              testNames,
		Ambiguity:          gatekeep.AmbiguityPolicyExclude,
		Concurrency:        2,
		ReconcileOnStartup: onStartup,
	}, zaptest.NewLogger(t))
}

func TestServiceStartSweepsBeforeSubscribing(t *testing.T) {
	t.Parallel()

	dir := newGuildADirectory()
	dir.addMember(guildA, 1, integrationA, gatekeepA)
	dir.addMember(guildA, 2, gatekeepA, accessA)

	source := &sweepObservingSource{dir: dir}
	require.NoError(t, newTestService(t, dir, true).Start(t.Context(), source))

	require.True(t, source.subscribed)
	assert.Equal(t, 2, source.mutationsAtSubscribe, "sweep must finish before events are handled")
	assert.True(t, dir.member(guildA, 1).HasRole(accessA))
	assert.False(t, dir.member(guildA, 2).HasRole(accessA))

	require.Len(t, source.revoked, 1)
	source.emit(t.Context(), source.revoked, roleEvent(dir, bindingA().Gatekeep, 1))
	assert.False(t, dir.member(guildA, 1).HasRole(accessA))
}

func TestServiceStartWithoutSweep(t *testing.T) {
	t.Parallel()

	dir := newGuildADirectory()
	dir.addMember(guildA, 1, integrationA, gatekeepA)

	source := &sweepObservingSource{dir: dir}
	require.NoError(t, newTestService(t, dir, false).Start(t.Context(), source))

	require.True(t, source.subscribed)
	assert.Empty(t, dir.recorded())
	assert.False(t, dir.member(guildA, 1).HasRole(accessA), "drift is left until an event or sweep")

	source.emit(t.Context(), source.granted, roleEvent(dir, bindingA().Gatekeep, 1))
	assert.True(t, dir.member(guildA, 1).HasRole(accessA))
}

func TestServiceStartResolveFailure(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory()
	dir.addGuild(guildA, "guild a", gatekeep.Role{ID: integrationA, Name: "twitch subscriber"})
	dir.addMember(guildA, 1, integrationA)

	source := &sweepObservingSource{dir: dir}
	err := newTestService(t, dir, true).Start(t.Context(), source)

	require.ErrorIs(t, err, gatekeep.ErrRoleNotFound)
	assert.False(t, source.subscribed)
	assert.Empty(t, dir.recorded())
}

func TestServiceReconcile(t *testing.T) {
	t.Parallel()

	dir := newGuildADirectory()
	dir.addMember(guildA, 1, integrationA, gatekeepA)
	dir.addMember(guildA, 2, accessA)
	dir.addMember(guildA, 3, integrationA, accessA, gatekeepA)

	summary, err := newTestService(t, dir, false).Reconcile(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Guilds)
	assert.Equal(t, 3, summary.Members)
	assert.Equal(t, 1, summary.Granted)
	assert.Equal(t, 1, summary.Revoked)
	assert.Len(t, dir.recorded(), 2)
}
