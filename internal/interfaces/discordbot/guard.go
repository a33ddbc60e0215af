package discordbot

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
)

// elevatedRoleNames grant moderator commands regardless of permissions.
var elevatedRoleNames = map[string]struct{}{
	"admin":     {},
	"moderator": {},
}

// Guard answers permission and moderator lookups from guild state. It
// implements chat.Authorizer and chat.Directory.
type Guard struct {
	moderatorRoleID string
	logger          *logging.Logger

	guild  func(guildID string) (*discordgo.Guild, error)
	member func(guildID, userID string) (*discordgo.Member, error)
}

// NewGuard reads guild state from the session cache and falls back to REST.
func NewGuard(session *discordgo.Session, moderatorRoleID string, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.Default()
	}

	return &Guard{
		moderatorRoleID: strings.TrimSpace(moderatorRoleID),
		logger:          logger.Named("discord.guard"),
		guild: func(guildID string) (*discordgo.Guild, error) {
			if g, err := session.State.Guild(guildID); err == nil {
				return g, nil
			}
			return session.Guild(guildID)
		},
		member: func(guildID, userID string) (*discordgo.Member, error) {
			if m, err := session.State.Member(guildID, userID); err == nil {
				return m, nil
			}
			return session.GuildMember(guildID, userID)
		},
	}
}

func (g *Guard) HasElevatedPermission(ctx context.Context, guildID, userID string) bool {
	if guildID == "" {
		return false
	}

	guild, err := g.guild(guildID)
	if err != nil {
		g.logger.WarnContext(ctx, "guild lookup failed", "guild_id", guildID, "error", err)
		return false
	}
	member, err := g.member(guildID, userID)
	if err != nil {
		g.logger.WarnContext(ctx, "member lookup failed", "guild_id", guildID, "user_id", userID, "error", err)
		return false
	}
	return isElevated(guild, member, g.moderatorRoleID)
}

// Moderators returns up to limit ids of members who may approve join
// requests, in guild member order.
func (g *Guard) Moderators(ctx context.Context, guildID string, limit int) []string {
	if guildID == "" || limit <= 0 {
		return nil
	}

	guild, err := g.guild(guildID)
	if err != nil {
		g.logger.WarnContext(ctx, "guild lookup failed", "guild_id", guildID, "error", err)
		return nil
	}

	out := make([]string, 0, limit)
	for _, m := range guild.Members {
		if m == nil || m.User == nil || m.User.Bot {
			continue
		}
		if !isApprover(guild, m, g.moderatorRoleID) {
			continue
		}
		out = append(out, m.User.ID)
		if len(out) == limit {
			break
		}
	}
	return out
}

// isElevated reports whether member may run moderator commands: guild owner,
// Administrator permission, a role named admin or moderator, or the
// configured moderator role.
func isElevated(guild *discordgo.Guild, member *discordgo.Member, moderatorRoleID string) bool {
	if guild == nil || member == nil || member.User == nil {
		return false
	}
	if member.User.ID == guild.OwnerID {
		return true
	}

	roles := guildRoles(guild)
	for _, roleID := range member.Roles {
		if moderatorRoleID != "" && roleID == moderatorRoleID {
			return true
		}
		role, ok := roles[roleID]
		if !ok {
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
		if _, named := elevatedRoleNames[strings.ToLower(role.Name)]; named {
			return true
		}
	}
	return false
}

// isApprover is the narrower check used for join request pings: owner,
// Administrator permission, or the configured moderator role.
func isApprover(guild *discordgo.Guild, member *discordgo.Member, moderatorRoleID string) bool {
	if member.User.ID == guild.OwnerID {
		return true
	}

	roles := guildRoles(guild)
	for _, roleID := range member.Roles {
		if moderatorRoleID != "" && roleID == moderatorRoleID {
			return true
		}
		if role, ok := roles[roleID]; ok && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func guildRoles(guild *discordgo.Guild) map[string]*discordgo.Role {
	out := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		if role != nil {
			out[role.ID] = role
		}
	}
	return out
}
