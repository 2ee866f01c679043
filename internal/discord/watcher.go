package discord

import (
	"context"
	"sync"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/robalyx/gatekeeper/internal/discord/memberstate"
	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

var _ gatekeep.EventSource = (*Watcher)(nil)

// RoleNamer resolves a role ID to its current name.
type RoleNamer interface {
	RoleName(ctx context.Context, guildID, roleID uint64) (string, error)
}

// Watcher turns gateway member updates into role granted and revoked events.
// Updates are diffed synchronously in gateway order. The events of one update
// are handled in order; separate updates are handled concurrently.
type Watcher struct {
	repo   *memberstate.Repository
	store  *memberstate.Store
	roles  RoleNamer
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu      sync.RWMutex
	granted []gatekeep.RoleEventHandler
	revoked []gatekeep.RoleEventHandler
}

// NewWatcher creates a Watcher. Call Bind to start receiving gateway events.
func NewWatcher(
	adder memberstate.SyncAdder, store *memberstate.Store, roles RoleNamer, logger *zap.Logger,
) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		repo:   memberstate.NewRepository(adder),
		store:  store,
		roles:  roles,
		logger: logger.Named("watcher"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Bind registers the gateway handlers.
func (w *Watcher) Bind() {
	w.repo.AddSyncHandler(w.HandleGuildCreate)
	w.repo.AddSyncHandler(w.HandleGuildDelete)
	w.repo.AddSyncHandler(w.HandleMemberAdd)
	w.repo.AddSyncHandler(w.HandleMemberRemove)
	w.repo.AddSyncHandler(w.HandleMemberUpdate)
}

// OnRoleGranted registers a handler for roles added to a member.
func (w *Watcher) OnRoleGranted(h gatekeep.RoleEventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.granted = append(w.granted, h)
}

// OnRoleRevoked registers a handler for roles removed from a member.
func (w *Watcher) OnRoleRevoked(h gatekeep.RoleEventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.revoked = append(w.revoked, h)
}

// HandleGuildCreate seeds snapshots from the members sent with the guild.
func (w *Watcher) HandleGuildCreate(e *gateway.GuildCreateEvent) {
	guildID := uint64(e.ID)
	for i := range e.Members {
		w.store.Seed(guildID, uint64(e.Members[i].User.ID), convertRoleIDs(e.Members[i].RoleIDs))
	}

	w.logger.Debug("Seeded member snapshots from guild create",
		zap.Uint64("guild_id", guildID),
		zap.Int("members", len(e.Members)))
}

// HandleGuildDelete drops the snapshots of a guild the bot left. Outages keep them.
func (w *Watcher) HandleGuildDelete(e *gateway.GuildDeleteEvent) {
	if e.Unavailable {
		return
	}

	w.store.ForgetGuild(uint64(e.ID))
}

// HandleMemberAdd seeds the snapshot of a member who joined.
func (w *Watcher) HandleMemberAdd(e *gateway.GuildMemberAddEvent) {
	w.store.Seed(uint64(e.GuildID), uint64(e.User.ID), convertRoleIDs(e.RoleIDs))
}

// HandleMemberRemove forgets a member who left.
func (w *Watcher) HandleMemberRemove(e *gateway.GuildMemberRemoveEvent) {
	w.store.Forget(uint64(e.GuildID), uint64(e.User.ID))
}

// HandleMemberUpdate diffs the member's roles against the previous snapshot and
// emits one event per added or removed role. A member seen for the first time
// is treated as having had no roles, so only granted events are emitted.
func (w *Watcher) HandleMemberUpdate(e *gateway.GuildMemberUpdateEvent) {
	member := convertMember(uint64(e.GuildID), &discord.Member{
		User:    e.User,
		Nick:    e.Nick,
		RoleIDs: e.RoleIDs,
	})

	prev, known := w.store.Swap(member.GuildID, member.UserID, member.RoleIDs)

	added, removed := memberstate.DiffRoles(prev, member.RoleIDs)
	if !known {
		w.logger.Debug("No previous roles for member, treating held roles as granted",
			zap.Uint64("guild_id", member.GuildID),
			zap.Uint64("user_id", member.UserID),
			zap.Int("roles", len(added)))
	}

	w.mu.RLock()
	granted, revoked := w.granted, w.revoked
	w.mu.RUnlock()

	var changes []roleChange

	if len(granted) > 0 {
		for _, roleID := range added {
			changes = append(changes, roleChange{roleID: roleID, handlers: granted})
		}
	}

	if len(revoked) > 0 {
		for _, roleID := range removed {
			changes = append(changes, roleChange{roleID: roleID, handlers: revoked})
		}
	}

	w.dispatch(member, changes)
}

// roleChange is a single added or removed role and the handlers to notify.
type roleChange struct {
	roleID   uint64
	handlers []gatekeep.RoleEventHandler
}

// dispatch runs the changes of one update in order on a single goroutine. Later
// handlers see the snapshot left by earlier ones, so granting both prerequisites
// at once leads to a single grant of the access role.
func (w *Watcher) dispatch(member gatekeep.Member, changes []roleChange) {
	if len(changes) == 0 || w.ctx.Err() != nil {
		return
	}

	w.wg.Go(func() {
		for _, change := range changes {
			if w.ctx.Err() != nil {
				return
			}

			w.emit(change.handlers, member, change.roleID)
		}
	})
}

// emit resolves the role name and calls each handler, recovering panics.
func (w *Watcher) emit(handlers []gatekeep.RoleEventHandler, member gatekeep.Member, roleID uint64) {
	name, err := w.roles.RoleName(w.ctx, member.GuildID, roleID)
	if err != nil {
		// A deleted role has no name and can only be ignored.
		w.logger.Debug("Failed to resolve role name",
			zap.Uint64("guild_id", member.GuildID),
			zap.Uint64("role_id", roleID),
			zap.Error(err))
	}

	event := gatekeep.RoleEvent{
		Role:   gatekeep.Role{ID: roleID, GuildID: member.GuildID, Name: name},
		Member: member,
	}

	for _, h := range handlers {
		var pc panics.Catcher
		pc.Try(func() { h(w.ctx, event) })

		if r := pc.Recovered(); r != nil {
			w.logger.Error("Role event handler panicked",
				zap.Uint64("guild_id", member.GuildID),
				zap.Uint64("user_id", member.UserID),
				zap.Uint64("role_id", roleID),
				zap.Error(r.AsError()))
		}
	}
}

// Close unbinds the gateway handlers, cancels in-flight handlers and waits for them.
func (w *Watcher) Close() {
	w.repo.Unbind()
	w.cancel()
	w.wg.Wait()
}
