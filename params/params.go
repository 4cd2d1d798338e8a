// Package params is the document form of a guild layout, read from and written
// to YAML or JSON files.
package params

import "strings"

const (
	StrategyRemove          = "REMOVE"
	StrategyKeep            = "KEEP"
	StrategySyncPermissions = "SYNC_PERMISSIONS"

	TypeText  = "TEXT"
	TypeVoice = "VOICE"
)

type GuildParams struct {
	Roles      RolesParams      `mapstructure:"roles" yaml:"roles" json:"roles"`
	Categories CategoriesParams `mapstructure:"categories" yaml:"categories" json:"categories"`
	Channels   ChannelsParams   `mapstructure:"channels" yaml:"channels" json:"channels"`
}

type ExtraItemsParams struct {
	Strategy string `mapstructure:"strategy" yaml:"strategy" json:"strategy"`
}

type RolesParams struct {
	Items      []RoleParams     `mapstructure:"items" yaml:"items" json:"items" validate:"unique=Name,dive"`
	ExtraItems ExtraItemsParams `mapstructure:"extra_items" yaml:"extra_items" json:"extra_items"`
}

type RoleParams struct {
	Name          string   `mapstructure:"name" yaml:"name" json:"name" validate:"required"`
	Permissions   []string `mapstructure:"permissions" yaml:"permissions" json:"permissions" validate:"dive,permission"`
	Color         string   `mapstructure:"color" yaml:"color,omitempty" json:"color,omitempty" validate:"omitempty,rolecolor"`
	Mentionable   bool     `mapstructure:"is_mentionable" yaml:"is_mentionable" json:"is_mentionable"`
	ShowInSidebar bool     `mapstructure:"show_in_sidebar" yaml:"show_in_sidebar" json:"show_in_sidebar"`
}

type OverwriteParams struct {
	Role  string   `mapstructure:"role" yaml:"role" json:"role" validate:"required"`
	Allow []string `mapstructure:"allow" yaml:"allow,omitempty" json:"allow,omitempty" validate:"dive,permission"`
	Deny  []string `mapstructure:"deny" yaml:"deny,omitempty" json:"deny,omitempty" validate:"dive,permission"`
}

type CategoriesParams struct {
	Items      []CategoryParams `mapstructure:"items" yaml:"items" json:"items" validate:"unique=Name,dive"`
	ExtraItems ExtraItemsParams `mapstructure:"extra_items" yaml:"extra_items" json:"extra_items"`
}

type CategoryParams struct {
	Name            string            `mapstructure:"name" yaml:"name" json:"name" validate:"required"`
	Overwrites      []OverwriteParams `mapstructure:"permissions_overwrites" yaml:"permissions_overwrites,omitempty" json:"permissions_overwrites,omitempty" validate:"unique=Role,dive"`
	SyncPermissions bool              `mapstructure:"sync_permissions" yaml:"sync_permissions" json:"sync_permissions"`
	ExtraChannels   ExtraItemsParams  `mapstructure:"extra_channels" yaml:"extra_channels" json:"extra_channels"`
}

type ChannelsParams struct {
	Items      []ChannelParams  `mapstructure:"items" yaml:"items" json:"items" validate:"dive"`
	ExtraItems ExtraItemsParams `mapstructure:"extra_items" yaml:"extra_items" json:"extra_items"`
}

type ChannelParams struct {
	Name       string            `mapstructure:"name" yaml:"name" json:"name" validate:"required"`
	Topic      string            `mapstructure:"topic" yaml:"topic,omitempty" json:"topic,omitempty" validate:"excluded_if=Type VOICE"`
	Type       string            `mapstructure:"type" yaml:"type" json:"type" validate:"oneof=TEXT VOICE"`
	Category   string            `mapstructure:"category" yaml:"category,omitempty" json:"category,omitempty"`
	Overwrites []OverwriteParams `mapstructure:"permissions_overwrites" yaml:"permissions_overwrites,omitempty" json:"permissions_overwrites,omitempty" validate:"unique=Role,dive"`
}

func normalize(value, fallback string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

// WithDefaults fills every omitted strategy and channel type.
func (p GuildParams) WithDefaults() GuildParams {
	p.Roles.ExtraItems.Strategy = normalize(p.Roles.ExtraItems.Strategy, StrategyRemove)
	p.Categories.ExtraItems.Strategy = normalize(p.Categories.ExtraItems.Strategy, StrategyRemove)
	p.Channels.ExtraItems.Strategy = normalize(p.Channels.ExtraItems.Strategy, StrategyRemove)

	categories := make([]CategoryParams, len(p.Categories.Items))
	for i, category := range p.Categories.Items {
		category.ExtraChannels.Strategy = normalize(category.ExtraChannels.Strategy, StrategyRemove)
		categories[i] = category
	}
	p.Categories.Items = categories

	channels := make([]ChannelParams, len(p.Channels.Items))
	for i, channel := range p.Channels.Items {
		channel.Type = normalize(channel.Type, TypeText)
		channels[i] = channel
	}
	p.Channels.Items = channels
	return p
}
