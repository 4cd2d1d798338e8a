package params

import (
	"github.com/fuad-daoud/disma/guild"
)

// ToDesired builds the desired guild from a validated document. Roles are
// built first so categories and channels can reference them, then categories
// for channels.
func ToDesired(p GuildParams) (guild.DesiredGuild, error) {
	p = p.WithDefaults()

	roles := make([]guild.DesiredRole, 0, len(p.Roles.Items))
	for _, item := range p.Roles.Items {
		role, err := toRole(item)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		roles = append(roles, role)
	}
	roleList := guild.NewList(roles...)

	categories := make([]guild.DesiredCategory, 0, len(p.Categories.Items))
	for _, item := range p.Categories.Items {
		refs, err := toRefs("category", item.Name, item.Overwrites)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		extra, err := toPolicy("category", item.Name, item.ExtraChannels)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		category, err := guild.NewDesiredCategory(item.Name, refs, item.SyncPermissions, extra, roleList)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		categories = append(categories, category)
	}
	categoryList := guild.NewList(categories...)

	channels := make([]guild.DesiredChannel, 0, len(p.Channels.Items))
	for _, item := range p.Channels.Items {
		kind, err := guild.ParseChannelKind(item.Type)
		if err != nil {
			return guild.DesiredGuild{}, &guild.SpecError{Entity: "channel", Name: item.Name, Reference: item.Type, Err: err}
		}
		refs, err := toRefs("channel", item.Name, item.Overwrites)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		channel, err := guild.NewDesiredChannel(item.Name, item.Topic, kind, item.Category, refs, roleList, categoryList)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		channels = append(channels, channel)
	}

	desired := guild.DesiredGuild{
		Roles:      guild.DesiredRoles{List: roleList},
		Categories: guild.DesiredCategories{List: categoryList},
		Channels:   guild.DesiredChannels{List: guild.NewList(channels...)},
	}
	var err error
	if desired.Roles.ExtraItems, err = toPolicy("roles", "extra_items", p.Roles.ExtraItems); err != nil {
		return guild.DesiredGuild{}, err
	}
	if desired.Categories.ExtraItems, err = toPolicy("categories", "extra_items", p.Categories.ExtraItems); err != nil {
		return guild.DesiredGuild{}, err
	}
	if desired.Channels.ExtraItems, err = toPolicy("channels", "extra_items", p.Channels.ExtraItems); err != nil {
		return guild.DesiredGuild{}, err
	}
	return desired, nil
}

func toRole(item RoleParams) (guild.DesiredRole, error) {
	permissions, err := guild.ParsePermissions(item.Permissions)
	if err != nil {
		return guild.DesiredRole{}, &guild.SpecError{Entity: "role", Name: item.Name, Err: err}
	}
	color, err := guild.NormalizeColor(item.Color)
	if err != nil {
		return guild.DesiredRole{}, &guild.SpecError{Entity: "role", Name: item.Name, Err: err}
	}
	return guild.DesiredRole{
		Name:          item.Name,
		Permissions:   permissions,
		Color:         color,
		Mentionable:   item.Mentionable,
		ShowInSidebar: item.ShowInSidebar,
	}, nil
}

func toRefs(entity, name string, overwrites []OverwriteParams) ([]guild.OverwriteRef, error) {
	refs := make([]guild.OverwriteRef, 0, len(overwrites))
	for _, overwrite := range overwrites {
		allow, err := guild.ParsePermissions(overwrite.Allow)
		if err != nil {
			return nil, &guild.SpecError{Entity: entity, Name: name, Reference: overwrite.Role, Err: err}
		}
		deny, err := guild.ParsePermissions(overwrite.Deny)
		if err != nil {
			return nil, &guild.SpecError{Entity: entity, Name: name, Reference: overwrite.Role, Err: err}
		}
		refs = append(refs, guild.OverwriteRef{Role: overwrite.Role, Allow: allow, Deny: deny})
	}
	return refs, nil
}

func toPolicy(entity, name string, extra ExtraItemsParams) (guild.ExtraItemsPolicy, error) {
	policy, err := guild.ParseExtraItemsPolicy(extra.Strategy)
	if err != nil {
		return guild.RemoveExtraItems, &guild.SpecError{Entity: entity, Name: name, Err: err}
	}
	return policy, nil
}

// FromLive exports a live guild as a document that would produce no changes
// against it.
func FromLive(live guild.LiveGuild) GuildParams {
	p := GuildParams{
		Roles:      RolesParams{Items: []RoleParams{}},
		Categories: CategoriesParams{Items: []CategoryParams{}},
		Channels:   ChannelsParams{Items: []ChannelParams{}},
	}
	for _, role := range live.Roles.Items() {
		p.Roles.Items = append(p.Roles.Items, RoleParams{
			Name:          role.Name,
			Permissions:   role.Permissions.Names(),
			Color:         role.Color,
			Mentionable:   role.Mentionable,
			ShowInSidebar: role.ShowInSidebar,
		})
	}
	for _, category := range live.Categories.Items() {
		p.Categories.Items = append(p.Categories.Items, CategoryParams{
			Name:       category.Name,
			Overwrites: fromOverwrites(category.Overwrites),
		})
	}
	for _, channel := range live.Channels.Items() {
		p.Channels.Items = append(p.Channels.Items, ChannelParams{
			Name:       channel.Name,
			Topic:      channel.Topic,
			Type:       channel.Kind.String(),
			Category:   channel.CategoryName(),
			Overwrites: fromOverwrites(channel.Overwrites),
		})
	}
	return p.WithDefaults()
}

func fromOverwrites(overwrites guild.Overwrites) []OverwriteParams {
	if len(overwrites) == 0 {
		return nil
	}
	out := make([]OverwriteParams, len(overwrites))
	for i, overwrite := range overwrites {
		out[i] = OverwriteParams{
			Role:  overwrite.Role,
			Allow: overwrite.Allow.Names(),
			Deny:  overwrite.Deny.Names(),
		}
	}
	return out
}
