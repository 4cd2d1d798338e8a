// Package guild holds the entity model of a Discord guild layout: roles,
// categories and channels, each in a desired form built from the
// layout document and a live form fetched from Discord.
package guild

import "context"

type DesiredRoles struct {
	List[DesiredRole]
	ExtraItems ExtraItemsPolicy
}

type DesiredCategories struct {
	List[DesiredCategory]
	ExtraItems ExtraItemsPolicy
}

// DesiredChannels carries the policy used for extra channels that no desired
// category claims.
type DesiredChannels struct {
	List[DesiredChannel]
	ExtraItems ExtraItemsPolicy
}

type DesiredGuild struct {
	Roles      DesiredRoles
	Categories DesiredCategories
	Channels   DesiredChannels
}

type LiveGuild struct {
	Roles      List[LiveRole]
	Categories List[LiveCategory]
	Channels   List[LiveChannel]
}

// Desired maps every live entity to its desired equivalent, keeping the
// default policies.
func (g LiveGuild) Desired() DesiredGuild {
	roles := make([]DesiredRole, 0, g.Roles.Len())
	for _, role := range g.Roles.Items() {
		roles = append(roles, role.Desired())
	}
	categories := make([]DesiredCategory, 0, g.Categories.Len())
	for _, category := range g.Categories.Items() {
		categories = append(categories, category.Desired())
	}
	channels := make([]DesiredChannel, 0, g.Channels.Len())
	for _, channel := range g.Channels.Items() {
		channels = append(channels, channel.Desired())
	}
	return DesiredGuild{
		Roles:      DesiredRoles{List: NewList(roles...)},
		Categories: DesiredCategories{List: NewList(categories...)},
		Channels:   DesiredChannels{List: NewList(channels...)},
	}
}

// GuildQuerier fetches the full live layout of a guild as one snapshot.
type GuildQuerier interface {
	GetGuild(ctx context.Context, guildID string) (LiveGuild, error)
}

// GuildCommander applies mutations to a single guild. Add operations return
// the identifier assigned by Discord.
type GuildCommander interface {
	AddRole(ctx context.Context, role DesiredRole) (string, error)
	UpdateRole(ctx context.Context, id string, role DesiredRole) error
	DeleteRole(ctx context.Context, id string) error

	AddCategory(ctx context.Context, category DesiredCategory) (string, error)
	UpdateCategory(ctx context.Context, id string, category DesiredCategory) error
	DeleteCategory(ctx context.Context, id string) error

	AddChannel(ctx context.Context, channel DesiredChannel) (string, error)
	UpdateChannel(ctx context.Context, id string, channel DesiredChannel) error
	DeleteChannel(ctx context.Context, id string) error
}
