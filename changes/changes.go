// Package changes matches desired entities against live ones and produces the
// commands that would bring the guild to the desired state.
package changes

import (
	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/diff"
	"github.com/fuad-daoud/disma/guild"
)

// Partition splits the identity keys of one entity kind by outcome.
type Partition struct {
	Create    []string
	Update    []string
	Extra     []string
	Unchanged []string
}

type match[L guild.Keyed, D guild.Keyed] struct {
	live    L
	desired D
	diffs   []diff.Diff
}

type comparison[L guild.Keyed, D guild.Keyed] struct {
	create    []D
	update    []match[L, D]
	extra     []L
	unchanged []string
}

func (c comparison[L, D]) partition() Partition {
	var p Partition
	for _, d := range c.create {
		p.Create = append(p.Create, d.Key())
	}
	for _, m := range c.update {
		p.Update = append(p.Update, m.live.Key())
	}
	for _, l := range c.extra {
		p.Extra = append(p.Extra, l.Key())
	}
	p.Unchanged = c.unchanged
	return p
}

// compare walks desired entities in order, then live ones, so the result
// follows list order on both sides.
func compare[L guild.Keyed, D guild.Keyed](live guild.List[L], desired guild.List[D], diffsWith func(L, D) []diff.Diff) comparison[L, D] {
	var c comparison[L, D]
	seen := make(map[string]struct{}, desired.Len())
	for _, d := range desired.Items() {
		if _, dup := seen[d.Key()]; dup {
			continue
		}
		seen[d.Key()] = struct{}{}

		l, ok := live.Find(d.Key())
		if !ok {
			c.create = append(c.create, d)
			continue
		}
		if diffs := diffsWith(l, d); len(diffs) > 0 {
			c.update = append(c.update, match[L, D]{live: l, desired: d, diffs: diffs})
		} else {
			c.unchanged = append(c.unchanged, d.Key())
		}
	}

	handled := make(map[string]struct{}, live.Len())
	for _, l := range live.Items() {
		if _, ok := seen[l.Key()]; ok {
			continue
		}
		if _, dup := handled[l.Key()]; dup {
			continue
		}
		handled[l.Key()] = struct{}{}
		c.extra = append(c.extra, l)
	}
	return c
}

func roleComparison(live guild.List[guild.LiveRole], desired guild.List[guild.DesiredRole]) comparison[guild.LiveRole, guild.DesiredRole] {
	return compare(live, desired, guild.LiveRole.DiffsWith)
}

func categoryComparison(live guild.List[guild.LiveCategory], desired guild.List[guild.DesiredCategory]) comparison[guild.LiveCategory, guild.DesiredCategory] {
	return compare(live, desired, guild.LiveCategory.DiffsWith)
}

func channelComparison(live guild.List[guild.LiveChannel], desired guild.List[guild.DesiredChannel]) comparison[guild.LiveChannel, guild.DesiredChannel] {
	return compare(live, desired, guild.LiveChannel.DiffsWith)
}

func RolePartition(live guild.LiveGuild, desired guild.DesiredGuild) Partition {
	return roleComparison(live.Roles, desired.Roles.List).partition()
}

func CategoryPartition(live guild.LiveGuild, desired guild.DesiredGuild) Partition {
	return categoryComparison(live.Categories, desired.Categories.List).partition()
}

func ChannelPartition(live guild.LiveGuild, desired guild.DesiredGuild) Partition {
	return channelComparison(live.Channels, desired.Channels.List).partition()
}

// RoleChanges lists role commands: creations, updates, then extra roles.
func RoleChanges(live guild.LiveGuild, desired guild.DesiredGuild) ([]commands.Command, error) {
	strategy, err := StrategyFor(desired.Roles.ExtraItems)
	if err != nil {
		return nil, err
	}
	c := roleComparison(live.Roles, desired.Roles.List)

	var cmds []commands.Command
	for _, role := range c.create {
		cmds = append(cmds, commands.CreateRole{Role: role})
	}
	for _, m := range c.update {
		cmds = append(cmds, commands.UpdateRole{Live: m.live, Desired: m.desired, Diffs: m.diffs})
	}
	for _, role := range c.extra {
		cmd, err := strategy.HandleExtraRole(role)
		if err != nil {
			return nil, err
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

func CategoryChanges(live guild.LiveGuild, desired guild.DesiredGuild) ([]commands.Command, error) {
	strategy, err := StrategyFor(desired.Categories.ExtraItems)
	if err != nil {
		return nil, err
	}
	c := categoryComparison(live.Categories, desired.Categories.List)

	var cmds []commands.Command
	for _, category := range c.create {
		cmds = append(cmds, commands.CreateCategory{Category: category})
	}
	for _, m := range c.update {
		cmds = append(cmds, commands.UpdateCategory{Live: m.live, Desired: m.desired, Diffs: m.diffs})
	}
	for _, category := range c.extra {
		cmd, err := strategy.HandleExtraCategory(category)
		if err != nil {
			return nil, err
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

// ChannelChanges handles an extra channel with the policy of the desired
// category sharing its category name, falling back to the channel list policy
// when there is none.
func ChannelChanges(live guild.LiveGuild, desired guild.DesiredGuild) ([]commands.Command, error) {
	c := channelComparison(live.Channels, desired.Channels.List)

	var cmds []commands.Command
	for _, channel := range c.create {
		cmds = append(cmds, commands.CreateChannel{Channel: channel})
	}
	for _, m := range c.update {
		cmds = append(cmds, commands.UpdateChannel{Live: m.live, Desired: m.desired, Diffs: m.diffs})
	}
	for _, channel := range c.extra {
		policy := desired.Channels.ExtraItems
		var owner *guild.DesiredCategory
		if channel.Category != nil {
			if category, ok := desired.Categories.Find(channel.Category.Name); ok {
				policy = category.ExtraChannels
				owner = &category
			}
		}
		strategy, err := StrategyFor(policy)
		if err != nil {
			return nil, err
		}
		cmd, err := strategy.HandleExtraChannel(channel, owner)
		if err != nil {
			return nil, err
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}
