package discordapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/fuad-daoud/disma/guild"
	"github.com/fuad-daoud/disma/logger/dlog"
)

// Commander applies mutations to one guild. Desired payloads reference roles and
// categories by name: names are mapped to identifiers through a cache seeded
// from a snapshot and extended by every creation.
type Commander struct {
	api     restAPI
	guildID snowflake.ID

	mu         sync.Mutex
	roles      map[string]snowflake.ID
	categories map[string]snowflake.ID
	refreshed  bool
}

func (c *Client) Commander(guildID string, live guild.LiveGuild) (*Commander, error) {
	id, err := snowflake.Parse(guildID)
	if err != nil {
		return nil, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}
	commander := &Commander{api: c.api, guildID: id}
	if err := commander.Seed(live); err != nil {
		return nil, err
	}
	return commander, nil
}

// Seed replaces the name caches with the roles and categories of live. A
// repeated name keeps its first id, as lookups in the snapshot do.
func (c *Commander) Seed(live guild.LiveGuild) error {
	roles := make(map[string]snowflake.ID, live.Roles.Len())
	for _, role := range live.Roles.Items() {
		id, err := snowflake.Parse(role.ID)
		if err != nil {
			return fmt.Errorf("role %q: invalid id %q: %w", role.Name, role.ID, err)
		}
		if _, seen := roles[role.Name]; !seen {
			roles[role.Name] = id
		}
	}
	categories := make(map[string]snowflake.ID, live.Categories.Len())
	for _, category := range live.Categories.Items() {
		id, err := snowflake.Parse(category.ID)
		if err != nil {
			return fmt.Errorf("category %q: invalid id %q: %w", category.Name, category.ID, err)
		}
		if _, seen := categories[category.Name]; !seen {
			categories[category.Name] = id
		}
	}
	c.mu.Lock()
	c.roles = roles
	c.categories = categories
	c.mu.Unlock()
	return nil
}

// refresh reloads the caches from the API, at most once per commander.
func (c *Commander) refresh(ctx context.Context) error {
	c.mu.Lock()
	done := c.refreshed
	c.refreshed = true
	c.mu.Unlock()
	if done {
		return nil
	}
	dlog.Debug("Refreshing name cache", "guild", c.guildID.String())
	live, err := (&Client{api: c.api}).GetGuild(ctx, c.guildID.String())
	if err != nil {
		return err
	}
	return c.Seed(live)
}

func (c *Commander) lookup(ctx context.Context, cache func() map[string]snowflake.ID, name string) (snowflake.ID, bool, error) {
	c.mu.Lock()
	id, ok := cache()[name]
	c.mu.Unlock()
	if ok {
		return id, true, nil
	}
	if err := c.refresh(ctx); err != nil {
		return 0, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok = cache()[name]
	return id, ok, nil
}

func (c *Commander) roleID(ctx context.Context, name string) (snowflake.ID, error) {
	id, ok, err := c.lookup(ctx, func() map[string]snowflake.ID { return c.roles }, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w %q", guild.ErrUnknownRole, name)
	}
	return id, nil
}

func (c *Commander) categoryID(ctx context.Context, name string) (snowflake.ID, error) {
	id, ok, err := c.lookup(ctx, func() map[string]snowflake.ID { return c.categories }, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w %q", guild.ErrUnknownCategory, name)
	}
	return id, nil
}

func (c *Commander) overwrites(ctx context.Context, overwrites guild.Overwrites) ([]discord.PermissionOverwrite, error) {
	out := make([]discord.PermissionOverwrite, 0, len(overwrites))
	for _, overwrite := range overwrites {
		id, err := c.roleID(ctx, overwrite.Role)
		if err != nil {
			return nil, err
		}
		out = append(out, discord.RolePermissionOverwrite{
			RoleID: id,
			Allow:  toDiscordPermissions(overwrite.Allow),
			Deny:   toDiscordPermissions(overwrite.Deny),
		})
	}
	return out, nil
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.Parse(id)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return parsed, nil
}

func ptr[T any](v T) *T {
	return &v
}

func (c *Commander) AddRole(ctx context.Context, role guild.DesiredRole) (string, error) {
	created, err := c.api.CreateRole(c.guildID, discord.RoleCreate{
		Name:        role.Name,
		Permissions: ptr(toDiscordPermissions(role.Permissions)),
		Color:       guild.ColorToInt(role.Color),
		Hoist:       role.ShowInSidebar,
		Mentionable: role.Mentionable,
	}, rest.WithCtx(ctx))
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.roles[role.Name] = created.ID
	c.mu.Unlock()
	return created.ID.String(), nil
}

func (c *Commander) UpdateRole(ctx context.Context, id string, role guild.DesiredRole) error {
	roleID, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = c.api.UpdateRole(c.guildID, roleID, discord.RoleUpdate{
		Name:        ptr(role.Name),
		Permissions: ptr(toDiscordPermissions(role.Permissions)),
		Color:       ptr(guild.ColorToInt(role.Color)),
		Hoist:       ptr(role.ShowInSidebar),
		Mentionable: ptr(role.Mentionable),
	}, rest.WithCtx(ctx))
	return err
}

func (c *Commander) DeleteRole(ctx context.Context, id string) error {
	roleID, err := parseID(id)
	if err != nil {
		return err
	}
	return c.api.DeleteRole(c.guildID, roleID, rest.WithCtx(ctx))
}

func (c *Commander) AddCategory(ctx context.Context, category guild.DesiredCategory) (string, error) {
	overwrites, err := c.overwrites(ctx, category.Overwrites)
	if err != nil {
		return "", err
	}
	created, err := c.api.CreateGuildChannel(c.guildID, discord.GuildCategoryChannelCreate{
		Name:                 category.Name,
		PermissionOverwrites: overwrites,
	}, rest.WithCtx(ctx))
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.categories[category.Name] = created.ID()
	c.mu.Unlock()
	return created.ID().String(), nil
}

func (c *Commander) UpdateCategory(ctx context.Context, id string, category guild.DesiredCategory) error {
	channelID, err := parseID(id)
	if err != nil {
		return err
	}
	overwrites, err := c.overwrites(ctx, category.Overwrites)
	if err != nil {
		return err
	}
	_, err = c.api.UpdateChannel(channelID, discord.GuildCategoryChannelUpdate{
		Name:                 ptr(category.Name),
		PermissionOverwrites: &overwrites,
	}, rest.WithCtx(ctx))
	return err
}

func (c *Commander) DeleteCategory(ctx context.Context, id string) error {
	channelID, err := parseID(id)
	if err != nil {
		return err
	}
	return c.api.DeleteChannel(channelID, rest.WithCtx(ctx))
}

func (c *Commander) parent(ctx context.Context, channel guild.DesiredChannel) (snowflake.ID, error) {
	if channel.Category == nil {
		return 0, nil
	}
	return c.categoryID(ctx, channel.Category.Name)
}

func (c *Commander) AddChannel(ctx context.Context, channel guild.DesiredChannel) (string, error) {
	parentID, err := c.parent(ctx, channel)
	if err != nil {
		return "", err
	}
	overwrites, err := c.overwrites(ctx, channel.Overwrites)
	if err != nil {
		return "", err
	}

	var create discord.GuildChannelCreate
	switch channel.Kind {
	case guild.VoiceChannel:
		create = discord.GuildVoiceChannelCreate{
			Name:                 channel.Name,
			ParentID:             parentID,
			PermissionOverwrites: overwrites,
		}
	default:
		create = discord.GuildTextChannelCreate{
			Name:                 channel.Name,
			Topic:                channel.Topic,
			ParentID:             parentID,
			PermissionOverwrites: overwrites,
		}
	}
	created, err := c.api.CreateGuildChannel(c.guildID, create, rest.WithCtx(ctx))
	if err != nil {
		return "", err
	}
	return created.ID().String(), nil
}

func (c *Commander) UpdateChannel(ctx context.Context, id string, channel guild.DesiredChannel) error {
	channelID, err := parseID(id)
	if err != nil {
		return err
	}
	parentID, err := c.parent(ctx, channel)
	if err != nil {
		return err
	}
	overwrites, err := c.overwrites(ctx, channel.Overwrites)
	if err != nil {
		return err
	}

	var parent *snowflake.ID
	if parentID != 0 {
		parent = &parentID
	}
	var update discord.ChannelUpdate
	switch channel.Kind {
	case guild.VoiceChannel:
		update = discord.GuildVoiceChannelUpdate{
			Name:                 ptr(channel.Name),
			ParentID:             parent,
			PermissionOverwrites: &overwrites,
		}
	default:
		update = discord.GuildTextChannelUpdate{
			Name:                 ptr(channel.Name),
			Topic:                ptr(channel.Topic),
			ParentID:             parent,
			PermissionOverwrites: &overwrites,
		}
	}
	_, err = c.api.UpdateChannel(channelID, update, rest.WithCtx(ctx))
	return err
}

func (c *Commander) DeleteChannel(ctx context.Context, id string) error {
	channelID, err := parseID(id)
	if err != nil {
		return err
	}
	return c.api.DeleteChannel(channelID, rest.WithCtx(ctx))
}
