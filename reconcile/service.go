// Package reconcile drives a full run against one guild: detect the changes
// between the live and desired layouts, then apply them in a fixed order.
package reconcile

import (
	"context"
	"fmt"

	"github.com/fuad-daoud/disma/changes"
	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/guild"
	"github.com/fuad-daoud/disma/logger/dlog"
)

// ListChanges returns role commands, then category commands, then channel
// commands.
func ListChanges(live guild.LiveGuild, desired guild.DesiredGuild) ([]commands.Command, error) {
	roles, err := changes.RoleChanges(live, desired)
	if err != nil {
		return nil, fmt.Errorf("roles: %w", err)
	}
	categories, err := changes.CategoryChanges(live, desired)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	channels, err := changes.ChannelChanges(live, desired)
	if err != nil {
		return nil, fmt.Errorf("channels: %w", err)
	}

	cmds := make([]commands.Command, 0, len(roles)+len(categories)+len(channels))
	cmds = append(cmds, roles...)
	cmds = append(cmds, categories...)
	return append(cmds, channels...), nil
}

func Describe(cmds []commands.Command) []commands.Description {
	descriptions := make([]commands.Description, len(cmds))
	for i, cmd := range cmds {
		descriptions[i] = cmd.Describe()
	}
	return descriptions
}

// ApplyChanges derives the batch again from live and desired and executes it,
// stopping at the first command the guild refuses. onApply, when set, is
// called after every successful command.
func ApplyChanges(ctx context.Context, live guild.LiveGuild, desired guild.DesiredGuild, commander guild.GuildCommander, onApply func(commands.Description)) error {
	cmds, err := ListChanges(live, desired)
	if err != nil {
		return err
	}
	return execute(ctx, cmds, commander, onApply)
}

func execute(ctx context.Context, cmds []commands.Command, commander guild.GuildCommander, onApply func(commands.Description)) error {
	for _, cmd := range cmds {
		description := cmd.Describe()
		if err := ctx.Err(); err != nil {
			return &commands.MutationError{Description: description, Err: err}
		}
		dlog.Debug("Executing command", "command", description.String())
		if err := cmd.Execute(ctx, commander); err != nil {
			return &commands.MutationError{Description: description, Err: err}
		}
		if onApply != nil {
			onApply(description)
		}
	}
	return nil
}
