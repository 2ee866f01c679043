package memberstate_test

import (
	"sync"
	"testing"

	"github.com/robalyx/gatekeeper/internal/discord/memberstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSnapshots(t *testing.T) {
	t.Parallel()

	store := memberstate.NewStore()

	_, ok := store.Roles(1, 10)
	assert.False(t, ok)

	roles := []uint64{3, 4}
	store.Seed(1, 10, roles)
	roles[0] = 99

	got, ok := store.Roles(1, 10)
	require.True(t, ok)
	assert.Equal(t, []uint64{3, 4}, got, "seed must copy its input")

	prev, known := store.Swap(1, 10, []uint64{4, 5})
	assert.True(t, known)
	assert.Equal(t, []uint64{3, 4}, prev)

	prev, known = store.Swap(1, 11, []uint64{7})
	assert.False(t, known)
	assert.Nil(t, prev)

	store.Seed(2, 10, nil)
	assert.Equal(t, 3, store.Len())

	store.Forget(1, 10)
	_, ok = store.Roles(1, 10)
	assert.False(t, ok)

	store.ForgetGuild(2)
	assert.Equal(t, 1, store.Len())
}

func TestStoreConcurrentSwap(t *testing.T) {
	t.Parallel()

	store := memberstate.NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			store.Swap(1, uint64(i%5), []uint64{uint64(i)})
		}()
	}

	wg.Wait()
	assert.Equal(t, 5, store.Len())
}

func TestDiffRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		prev        []uint64
		next        []uint64
		wantAdded   []uint64
		wantRemoved []uint64
	}{
		{name: "unchanged", prev: []uint64{1, 2}, next: []uint64{2, 1}},
		{name: "added", prev: []uint64{1}, next: []uint64{3, 1, 2}, wantAdded: []uint64{2, 3}},
		{name: "removed", prev: []uint64{1, 2, 3}, next: []uint64{2}, wantRemoved: []uint64{1, 3}},
		{
			name:        "both",
			prev:        []uint64{1, 2},
			next:        []uint64{2, 5},
			wantAdded:   []uint64{5},
			wantRemoved: []uint64{1},
		},
		{name: "from nothing", next: []uint64{4, 4}, wantAdded: []uint64{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			added, removed := memberstate.DiffRoles(tt.prev, tt.next)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestStoreAddRemoveRole(t *testing.T) {
	t.Parallel()

	store := memberstate.NewStore()
	store.Seed(1, 10, []uint64{3})

	store.AddRole(1, 10, 4)
	store.AddRole(1, 10, 4)

	roles, ok := store.Roles(1, 10)
	require.True(t, ok)
	assert.Equal(t, []uint64{3, 4}, roles)

	store.RemoveRole(1, 10, 3)
	roles, _ = store.Roles(1, 10)
	assert.Equal(t, []uint64{4}, roles)

	// Unknown members stay unknown.
	store.AddRole(1, 11, 4)
	store.RemoveRole(1, 12, 4)

	_, ok = store.Roles(1, 11)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}
