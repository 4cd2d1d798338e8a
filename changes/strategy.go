package changes

import (
	"errors"
	"fmt"

	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/guild"
)

var (
	// ErrSyncWithoutCategory is returned when an extra channel must take the
	// permissions of a desired category that does not exist.
	ErrSyncWithoutCategory = errors.New("cannot sync permissions of a channel without a desired category")
	ErrPolicyNotApplicable = errors.New("extra items policy does not apply to this kind")
)

// ExtraItemsStrategy decides what to do with a live entity that has no desired
// counterpart. A nil command means leave it alone.
type ExtraItemsStrategy interface {
	Policy() guild.ExtraItemsPolicy
	HandleExtraRole(role guild.LiveRole) (commands.Command, error)
	HandleExtraCategory(category guild.LiveCategory) (commands.Command, error)
	HandleExtraChannel(channel guild.LiveChannel, category *guild.DesiredCategory) (commands.Command, error)
}

func StrategyFor(policy guild.ExtraItemsPolicy) (ExtraItemsStrategy, error) {
	switch policy {
	case guild.RemoveExtraItems:
		return removeStrategy{}, nil
	case guild.KeepExtraItems:
		return keepStrategy{}, nil
	case guild.SyncPermissionsWithCategory:
		return syncStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", guild.ErrUnknownPolicy, policy)
	}
}

type removeStrategy struct{}

func (removeStrategy) Policy() guild.ExtraItemsPolicy { return guild.RemoveExtraItems }

func (removeStrategy) HandleExtraRole(role guild.LiveRole) (commands.Command, error) {
	return commands.DeleteRole{Role: role}, nil
}

func (removeStrategy) HandleExtraCategory(category guild.LiveCategory) (commands.Command, error) {
	return commands.DeleteCategory{Category: category}, nil
}

func (removeStrategy) HandleExtraChannel(channel guild.LiveChannel, _ *guild.DesiredCategory) (commands.Command, error) {
	return commands.DeleteChannel{Channel: channel}, nil
}

type keepStrategy struct{}

func (keepStrategy) Policy() guild.ExtraItemsPolicy { return guild.KeepExtraItems }

func (keepStrategy) HandleExtraRole(guild.LiveRole) (commands.Command, error) {
	return nil, nil
}

func (keepStrategy) HandleExtraCategory(guild.LiveCategory) (commands.Command, error) {
	return nil, nil
}

func (keepStrategy) HandleExtraChannel(guild.LiveChannel, *guild.DesiredCategory) (commands.Command, error) {
	return nil, nil
}

type syncStrategy struct{}

func (syncStrategy) Policy() guild.ExtraItemsPolicy { return guild.SyncPermissionsWithCategory }

func (syncStrategy) HandleExtraRole(role guild.LiveRole) (commands.Command, error) {
	return nil, fmt.Errorf("%w: %v on role %q", ErrPolicyNotApplicable, guild.SyncPermissionsWithCategory, role.Name)
}

func (syncStrategy) HandleExtraCategory(category guild.LiveCategory) (commands.Command, error) {
	return nil, fmt.Errorf("%w: %v on category %q", ErrPolicyNotApplicable, guild.SyncPermissionsWithCategory, category.Name)
}

// HandleExtraChannel keeps the channel but aligns its overwrites with the
// desired category. No command when they already match.
func (syncStrategy) HandleExtraChannel(channel guild.LiveChannel, category *guild.DesiredCategory) (commands.Command, error) {
	if category == nil {
		return nil, fmt.Errorf("%w: channel %q", ErrSyncWithoutCategory, channel.Label())
	}
	owner := *category
	target := guild.DesiredChannel{
		Name:       channel.Name,
		Topic:      channel.Topic,
		Kind:       channel.Kind,
		Category:   &owner,
		Overwrites: guild.NewOverwrites(category.Overwrites...),
	}
	update := commands.NewUpdateChannel(channel, target)
	if len(update.Diffs) == 0 {
		return nil, nil
	}
	return update, nil
}
