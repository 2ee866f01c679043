// Package discord adapts an arikawa gateway session to the gatekeep directory
// and event source contracts.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"github.com/robalyx/gatekeeper/internal/discord/memberstate"
	"github.com/robalyx/gatekeeper/internal/discord/rate"
	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/robalyx/gatekeeper/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var _ gatekeep.Directory = (*Directory)(nil)

// DirectoryOptions tunes request pacing and the mutation circuit breaker.
type DirectoryOptions struct {
	ListInterval   time.Duration // spacing between member listings
	ListJitter     time.Duration
	BreakerTimeout time.Duration // how long an open breaker rejects mutations
}

// Directory implements gatekeep.Directory over an arikawa state.
// Member listings and role reads seed the shared snapshot store.
type Directory struct {
	state   *state.State
	store   *memberstate.Store
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewDirectory creates a Directory.
func NewDirectory(s *state.State, store *memberstate.Store, opts DirectoryOptions, logger *zap.Logger) *Directory {
	logger = logger.Named("directory")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "discord_role_mutations",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		Interval:    0,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// Rejections for a single member say nothing about Discord's health.
			return err == nil || IsPermanent(err)
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Role mutation circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Directory{
		state:   s,
		store:   store,
		limiter: rate.New(opts.ListInterval, opts.ListJitter),
		breaker: breaker,
		logger:  logger,
	}
}

// RolesByName returns every role named name, ignoring case, across all guilds.
func (d *Directory) RolesByName(ctx context.Context, name string) ([]gatekeep.Role, error) {
	s := d.state.WithContext(ctx)

	guilds, err := s.Client.Guilds(0)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}

	var matches []gatekeep.Role

	for _, guild := range guilds {
		roles, err := s.Roles(guild.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list roles of guild %d: %w", guild.ID, err)
		}

		for _, role := range roles {
			if gatekeep.SameRoleName(role.Name, name) {
				matches = append(matches, gatekeep.Role{
					ID:      uint64(role.ID),
					GuildID: uint64(guild.ID),
					Name:    role.Name,
				})
			}
		}
	}

	return matches, nil
}

// Guilds returns every guild the bot is a member of.
func (d *Directory) Guilds(ctx context.Context) ([]gatekeep.Guild, error) {
	guilds, err := d.state.WithContext(ctx).Client.Guilds(0)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}

	result := make([]gatekeep.Guild, 0, len(guilds))
	for _, guild := range guilds {
		result = append(result, gatekeep.Guild{ID: uint64(guild.ID), Name: guild.Name})
	}

	return result, nil
}

// Members lists every member of the guild. This requires the GUILD_MEMBERS intent.
func (d *Directory) Members(ctx context.Context, guildID uint64) ([]gatekeep.Member, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	members, err := d.state.WithContext(ctx).Client.Members(discord.GuildID(guildID), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of guild %d: %w", guildID, err)
	}

	result := make([]gatekeep.Member, 0, len(members))
	for i := range members {
		member := convertMember(guildID, &members[i])
		d.store.Seed(guildID, member.UserID, member.RoleIDs)
		result = append(result, member)
	}

	d.logger.Debug("Listed guild members",
		zap.Uint64("guild_id", guildID),
		zap.Int("count", len(result)))

	return result, nil
}

// MemberRoles returns the member's current roles, preferring the gateway snapshot.
func (d *Directory) MemberRoles(ctx context.Context, guildID, userID uint64) ([]uint64, error) {
	if roles, ok := d.store.Roles(guildID, userID); ok {
		return roles, nil
	}

	member, err := d.state.WithContext(ctx).Member(discord.GuildID(guildID), discord.UserID(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get member %d of guild %d: %w", userID, guildID, err)
	}

	roles := convertRoleIDs(member.RoleIDs)
	d.store.Seed(guildID, userID, roles)

	return roles, nil
}

// GrantRole adds the role to the member with an audit log reason. On success the
// member's snapshot holds the role before the gateway echoes the change.
func (d *Directory) GrantRole(ctx context.Context, guildID, userID, roleID uint64, reason string) error {
	err := d.mutate(func() error {
		return d.state.WithContext(ctx).AddRole(
			discord.GuildID(guildID), discord.UserID(userID), discord.RoleID(roleID),
			api.AddRoleData{AuditLogReason: api.AuditLogReason(reason)})
	})
	if err != nil {
		return err
	}

	d.store.AddRole(guildID, userID, roleID)

	return nil
}

// RevokeRole removes the role from the member with an audit log reason.
func (d *Directory) RevokeRole(ctx context.Context, guildID, userID, roleID uint64, reason string) error {
	err := d.mutate(func() error {
		return d.state.WithContext(ctx).RemoveRole(
			discord.GuildID(guildID), discord.UserID(userID), discord.RoleID(roleID),
			api.AuditLogReason(reason))
	})
	if err != nil {
		return err
	}

	d.store.RemoveRole(guildID, userID, roleID)

	return nil
}

// RoleName looks the role up in the state cabinet, falling back to the API.
func (d *Directory) RoleName(ctx context.Context, guildID, roleID uint64) (string, error) {
	role, err := d.state.WithContext(ctx).Role(discord.GuildID(guildID), discord.RoleID(roleID))
	if err != nil {
		return "", fmt.Errorf("failed to get role %d of guild %d: %w", roleID, guildID, err)
	}

	return role.Name, nil
}

// mutate runs a role mutation through the circuit breaker and marks errors
// that should not be retried.
func (d *Directory) mutate(call func() error) error {
	_, err := d.breaker.Execute(func() (any, error) {
		return nil, call()
	})

	return classify(err)
}

func classify(err error) error {
	if err == nil {
		return nil
	}

	if IsPermanent(err) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return utils.Permanent(err)
	}

	return err
}

// IsPermanent reports whether Discord rejected the request for a reason that
// retrying cannot fix, such as missing permissions or an unknown member.
func IsPermanent(err error) bool {
	var httpErr *httputil.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}

	return httpErr.Status >= http.StatusBadRequest &&
		httpErr.Status < http.StatusInternalServerError &&
		httpErr.Status != http.StatusTooManyRequests
}

func convertMember(guildID uint64, m *discord.Member) gatekeep.Member {
	displayName := m.Nick
	if displayName == "" {
		displayName = m.User.Username
	}

	return gatekeep.Member{
		GuildID:     guildID,
		UserID:      uint64(m.User.ID),
		Username:    m.User.Username,
		DisplayName: displayName,
		RoleIDs:     convertRoleIDs(m.RoleIDs),
	}
}

func convertRoleIDs(ids []discord.RoleID) []uint64 {
	result := make([]uint64, len(ids))
	for i, id := range ids {
		result[i] = uint64(id)
	}

	return result
}
