package commands

import (
	"context"

	"github.com/fuad-daoud/disma/diff"
	"github.com/fuad-daoud/disma/guild"
)

// Channel descriptions use the channel key, names alone are ambiguous.

type CreateChannel struct {
	Channel guild.DesiredChannel
}

func (c CreateChannel) Execute(ctx context.Context, commander guild.GuildCommander) error {
	_, err := commander.AddChannel(ctx, c.Channel)
	return err
}

func (c CreateChannel) Describe() Description {
	return Description{Action: Create, Entity: Channel, Name: c.Channel.Label()}
}

type UpdateChannel struct {
	Live    guild.LiveChannel
	Desired guild.DesiredChannel
	Diffs   []diff.Diff
}

func NewUpdateChannel(live guild.LiveChannel, desired guild.DesiredChannel) UpdateChannel {
	return UpdateChannel{Live: live, Desired: desired, Diffs: live.DiffsWith(desired)}
}

func (c UpdateChannel) Execute(ctx context.Context, commander guild.GuildCommander) error {
	return commander.UpdateChannel(ctx, c.Live.ID, c.Desired)
}

func (c UpdateChannel) Describe() Description {
	return Description{Action: Update, Entity: Channel, Name: c.Live.Label(), Diffs: c.Diffs}
}

type DeleteChannel struct {
	Channel guild.LiveChannel
}

func (c DeleteChannel) Execute(ctx context.Context, commander guild.GuildCommander) error {
	return commander.DeleteChannel(ctx, c.Channel.ID)
}

func (c DeleteChannel) Describe() Description {
	return Description{Action: Delete, Entity: Channel, Name: c.Channel.Label()}
}
