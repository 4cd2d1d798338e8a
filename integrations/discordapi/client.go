// Package discordapi implements the guild ports on top of the Discord REST API.
package discordapi

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/fuad-daoud/disma/guild"
	"github.com/fuad-daoud/disma/logger/dlog"
)

// restAPI is the part of rest.Rest the adapter needs.
type restAPI interface {
	GetRoles(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.Role, error)
	CreateRole(guildID snowflake.ID, roleCreate discord.RoleCreate, opts ...rest.RequestOpt) (*discord.Role, error)
	UpdateRole(guildID snowflake.ID, roleID snowflake.ID, roleUpdate discord.RoleUpdate, opts ...rest.RequestOpt) (*discord.Role, error)
	DeleteRole(guildID snowflake.ID, roleID snowflake.ID, opts ...rest.RequestOpt) error

	GetGuildChannels(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.GuildChannel, error)
	CreateGuildChannel(guildID snowflake.ID, guildChannelCreate discord.GuildChannelCreate, opts ...rest.RequestOpt) (discord.GuildChannel, error)
	UpdateChannel(channelID snowflake.ID, channelUpdate discord.ChannelUpdate, opts ...rest.RequestOpt) (discord.Channel, error)
	DeleteChannel(channelID snowflake.ID, opts ...rest.RequestOpt) error

	GetCurrentUserGuilds(before snowflake.ID, after snowflake.ID, limit int, withCounts bool, opts ...rest.RequestOpt) ([]discord.OAuth2Guild, error)
}

type Client struct {
	api restAPI
}

func NewClient(token string) *Client {
	return &Client{api: rest.New(rest.NewClient(token))}
}

func newClient(api restAPI) *Client {
	return &Client{api: api}
}

type GuildInfo struct {
	ID   string
	Name string
}

func (c *Client) ListGuilds(ctx context.Context) ([]GuildInfo, error) {
	guilds, err := c.api.GetCurrentUserGuilds(0, 0, 200, false, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("could not list guilds: %w", err)
	}
	infos := make([]GuildInfo, len(guilds))
	for i, g := range guilds {
		infos[i] = GuildInfo{ID: g.ID.String(), Name: g.Name}
	}
	return infos, nil
}

// GetGuild fetches roles and channels and resolves them into one snapshot.
// Channels of other kinds than category, text and voice are ignored.
func (c *Client) GetGuild(ctx context.Context, guildID string) (guild.LiveGuild, error) {
	id, err := snowflake.Parse(guildID)
	if err != nil {
		return guild.LiveGuild{}, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}

	roles, err := c.fetchRoles(ctx, id)
	if err != nil {
		return guild.LiveGuild{}, err
	}
	channels, err := c.api.GetGuildChannels(id, rest.WithCtx(ctx))
	if err != nil {
		return guild.LiveGuild{}, fmt.Errorf("could not fetch channels: %w", err)
	}

	var liveCategories []guild.LiveCategory
	for _, channel := range channels {
		if channel.Type() != discord.ChannelTypeGuildCategory {
			continue
		}
		category, err := guild.NewLiveCategory(channel.ID().String(), channel.Name(), roleRefs(channel.PermissionOverwrites()), roles)
		if err != nil {
			return guild.LiveGuild{}, err
		}
		liveCategories = append(liveCategories, category)
	}
	categories := guild.NewList(liveCategories...)

	var liveChannels []guild.LiveChannel
	for _, channel := range channels {
		var kind guild.ChannelKind
		var topic string
		switch ch := channel.(type) {
		case discord.GuildTextChannel:
			kind = guild.TextChannel
			if ch.Topic() != nil {
				topic = *ch.Topic()
			}
		case discord.GuildVoiceChannel:
			kind = guild.VoiceChannel
		default:
			continue
		}
		var parentID string
		if parent := channel.ParentID(); parent != nil && *parent != 0 {
			parentID = parent.String()
		}
		live, err := guild.NewLiveChannel(channel.ID().String(), channel.Name(), topic, kind, parentID, roleRefs(channel.PermissionOverwrites()), roles, categories)
		if err != nil {
			return guild.LiveGuild{}, err
		}
		liveChannels = append(liveChannels, live)
	}

	dlog.Debug("Fetched guild", "guild", guildID, "roles", roles.Len(), "categories", categories.Len(), "channels", len(liveChannels))
	return guild.LiveGuild{
		Roles:      roles,
		Categories: categories,
		Channels:   guild.NewList(liveChannels...),
	}, nil
}

func (c *Client) fetchRoles(ctx context.Context, guildID snowflake.ID) (guild.List[guild.LiveRole], error) {
	roles, err := c.api.GetRoles(guildID, rest.WithCtx(ctx))
	if err != nil {
		return guild.List[guild.LiveRole]{}, fmt.Errorf("could not fetch roles: %w", err)
	}
	live := make([]guild.LiveRole, 0, len(roles))
	for _, role := range roles {
		live = append(live, guild.LiveRole{
			ID:            role.ID.String(),
			Name:          role.Name,
			Permissions:   fromDiscordPermissions(role.Permissions),
			Color:         guild.ColorFromInt(role.Color),
			Mentionable:   role.Mentionable,
			ShowInSidebar: role.Hoist,
		})
	}
	return guild.NewList(live...), nil
}

// roleRefs keeps role overwrites only, member overwrites are not modeled.
func roleRefs(overwrites discord.PermissionOverwrites) []guild.OverwriteRef {
	var refs []guild.OverwriteRef
	for _, overwrite := range overwrites {
		switch o := overwrite.(type) {
		case discord.RolePermissionOverwrite:
			refs = append(refs, guild.OverwriteRef{Role: o.RoleID.String(), Allow: fromDiscordPermissions(o.Allow), Deny: fromDiscordPermissions(o.Deny)})
		case *discord.RolePermissionOverwrite:
			refs = append(refs, guild.OverwriteRef{Role: o.RoleID.String(), Allow: fromDiscordPermissions(o.Allow), Deny: fromDiscordPermissions(o.Deny)})
		}
	}
	return refs
}

func fromDiscordPermissions(p discord.Permissions) guild.Permissions {
	return guild.Permissions(p) & guild.AllPermissions
}

func toDiscordPermissions(p guild.Permissions) discord.Permissions {
	return discord.Permissions(p & guild.AllPermissions)
}
