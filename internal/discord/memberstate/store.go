// Package memberstate tracks the last known role set of every guild member the
// bot has seen, so gateway member updates can be turned into role changes.
package memberstate

import (
	"slices"
	"sync"
)

type memberKey struct {
	guildID uint64
	userID  uint64
}

// Store holds role snapshots keyed by guild and user. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	roles map[memberKey][]uint64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		roles: make(map[memberKey][]uint64),
	}
}

// Seed records the member's roles, replacing any earlier snapshot.
func (s *Store) Seed(guildID, userID uint64, roleIDs []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[memberKey{guildID, userID}] = slices.Clone(roleIDs)
}

// Swap records the member's roles and returns the previous snapshot.
// known is false when the member had no snapshot.
func (s *Store) Swap(guildID, userID uint64, roleIDs []uint64) (prev []uint64, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{guildID, userID}
	prev, known = s.roles[key]
	s.roles[key] = slices.Clone(roleIDs)

	return prev, known
}

// Roles returns a copy of the member's snapshot.
func (s *Store) Roles(guildID, userID uint64) ([]uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles, ok := s.roles[memberKey{guildID, userID}]
	if !ok {
		return nil, false
	}

	return slices.Clone(roles), true
}

// AddRole adds roleID to the member's snapshot. Members without a snapshot are
// left unknown so the next listing or update seeds them in full.
func (s *Store) AddRole(guildID, userID, roleID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{guildID, userID}

	roles, ok := s.roles[key]
	if !ok || slices.Contains(roles, roleID) {
		return
	}

	s.roles[key] = append(slices.Clone(roles), roleID)
}

// RemoveRole removes roleID from the member's snapshot.
func (s *Store) RemoveRole(guildID, userID, roleID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{guildID, userID}

	roles, ok := s.roles[key]
	if !ok {
		return
	}

	s.roles[key] = slices.DeleteFunc(slices.Clone(roles), func(id uint64) bool {
		return id == roleID
	})
}

// Forget drops the member's snapshot.
func (s *Store) Forget(guildID, userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.roles, memberKey{guildID, userID})
}

// ForgetGuild drops every snapshot of the guild.
func (s *Store) ForgetGuild(guildID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.roles {
		if key.guildID == guildID {
			delete(s.roles, key)
		}
	}
}

// Len returns the number of snapshots held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.roles)
}

// DiffRoles returns the roles present in next but not prev, and those present
// in prev but not next. Both results are sorted and free of duplicates.
func DiffRoles(prev, next []uint64) (added, removed []uint64) {
	for _, id := range next {
		if !slices.Contains(prev, id) && !slices.Contains(added, id) {
			added = append(added, id)
		}
	}

	for _, id := range prev {
		if !slices.Contains(next, id) && !slices.Contains(removed, id) {
			removed = append(removed, id)
		}
	}

	slices.Sort(added)
	slices.Sort(removed)

	return added, removed
}
