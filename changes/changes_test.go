package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/guild"
)

func liveFixture(t *testing.T) guild.LiveGuild {
	t.Helper()
	roles := guild.NewList(
		guild.LiveRole{ID: "1", Name: "Admin", Permissions: guild.NewPermissions(guild.Administrator), Color: "ff0000"},
		guild.LiveRole{ID: "2", Name: "Member", Permissions: guild.NewPermissions(guild.SendMessages, guild.ViewChannel), Mentionable: true},
	)
	team, err := guild.NewLiveCategory("10", "Team", []guild.OverwriteRef{
		{Role: "2", Allow: guild.NewPermissions(guild.ViewChannel)},
		{Role: "1", Deny: guild.NewPermissions(guild.SendMessages)},
	}, roles)
	require.NoError(t, err)
	lobby, err := guild.NewLiveCategory("11", "Lobby", nil, roles)
	require.NoError(t, err)
	categories := guild.NewList(team, lobby)

	general, err := guild.NewLiveChannel("20", "general", "talk here", guild.TextChannel, "10", []guild.OverwriteRef{
		{Role: "2", Allow: guild.NewPermissions(guild.SendMessages)},
	}, roles, categories)
	require.NoError(t, err)
	voice, err := guild.NewLiveChannel("21", "general", "", guild.VoiceChannel, "10", nil, roles, categories)
	require.NoError(t, err)
	rules, err := guild.NewLiveChannel("22", "rules", "", guild.TextChannel, "", nil, roles, categories)
	require.NoError(t, err)

	return guild.LiveGuild{
		Roles:      roles,
		Categories: categories,
		Channels:   guild.NewList(general, voice, rules),
	}
}

func listChanges(t *testing.T, live guild.LiveGuild, desired guild.DesiredGuild) []commands.Command {
	t.Helper()
	var all []commands.Command
	for _, matcher := range []func(guild.LiveGuild, guild.DesiredGuild) ([]commands.Command, error){RoleChanges, CategoryChanges, ChannelChanges} {
		cmds, err := matcher(live, desired)
		require.NoError(t, err)
		all = append(all, cmds...)
	}
	return all
}

func descriptions(cmds []commands.Command) []string {
	out := make([]string, len(cmds))
	for i, cmd := range cmds {
		d := cmd.Describe()
		out[i] = d.Action.String() + " " + d.Entity.String() + " " + d.Name
	}
	return out
}

func TestLiveGuildDesiredProducesNoChanges(t *testing.T) {
	live := liveFixture(t)
	assert.Empty(t, listChanges(t, live, live.Desired()))
}

func TestAdminScenarios(t *testing.T) {
	admin := guild.DesiredRole{Name: "Admin", Permissions: guild.NewPermissions(guild.Administrator)}
	liveAdmin := guild.LiveRole{ID: "1", Name: "Admin", Permissions: guild.NewPermissions(guild.Administrator)}

	t.Run("create", func(t *testing.T) {
		desired := guild.DesiredGuild{Roles: guild.DesiredRoles{List: guild.NewList(admin)}}
		cmds := listChanges(t, guild.LiveGuild{}, desired)
		require.Len(t, cmds, 1)
		assert.Equal(t, commands.CreateRole{Role: admin}, cmds[0])
		assert.Equal(t, commands.Description{Action: commands.Create, Entity: commands.Role, Name: "Admin"}, cmds[0].Describe())
	})

	tests := []struct {
		name   string
		policy guild.ExtraItemsPolicy
		want   []string
	}{
		{name: "remove", policy: guild.RemoveExtraItems, want: []string{"DELETE role Admin"}},
		{name: "keep", policy: guild.KeepExtraItems, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := guild.LiveGuild{Roles: guild.NewList(liveAdmin)}
			desired := guild.DesiredGuild{Roles: guild.DesiredRoles{ExtraItems: tt.policy}}
			assert.Equal(t, tt.want, descriptions(listChanges(t, live, desired)))
		})
	}
}

func TestExtraItemsPolicy(t *testing.T) {
	live := liveFixture(t)

	t.Run("keep never deletes", func(t *testing.T) {
		desired := guild.DesiredGuild{
			Roles:      guild.DesiredRoles{ExtraItems: guild.KeepExtraItems},
			Categories: guild.DesiredCategories{ExtraItems: guild.KeepExtraItems},
			Channels:   guild.DesiredChannels{ExtraItems: guild.KeepExtraItems},
		}
		assert.Empty(t, listChanges(t, live, desired))
	})

	t.Run("remove deletes each extra once", func(t *testing.T) {
		cmds := listChanges(t, live, guild.DesiredGuild{})
		assert.Equal(t, []string{
			"DELETE role Admin",
			"DELETE role Member",
			"DELETE category Team",
			"DELETE category Lobby",
			"DELETE channel Team:general (TEXT)",
			"DELETE channel Team:general (VOICE)",
			"DELETE channel :rules (TEXT)",
		}, descriptions(cmds))
	})

	t.Run("category policy wins over channel default", func(t *testing.T) {
		desired := live.Desired()
		team, _ := desired.Categories.Find("Team")
		team.ExtraChannels = guild.KeepExtraItems
		desired.Categories = guild.DesiredCategories{List: guild.NewList(team)}
		desired.Categories.ExtraItems = guild.KeepExtraItems
		desired.Channels = guild.DesiredChannels{}

		cmds, err := ChannelChanges(live, desired)
		require.NoError(t, err)
		assert.Equal(t, []string{"DELETE channel :rules (TEXT)"}, descriptions(cmds))
	})
}

func TestChannelsWithColonsInNamesDoNotMatch(t *testing.T) {
	liveCategory, err := guild.NewLiveCategory("10", "a:b", nil, guild.List[guild.LiveRole]{})
	require.NoError(t, err)
	liveCategories := guild.NewList(liveCategory)
	liveChannel, err := guild.NewLiveChannel("20", "c", "", guild.VoiceChannel, "10", nil, guild.List[guild.LiveRole]{}, liveCategories)
	require.NoError(t, err)
	live := guild.LiveGuild{Categories: liveCategories, Channels: guild.NewList(liveChannel)}

	category, err := guild.NewDesiredCategory("a", nil, false, guild.RemoveExtraItems, guild.List[guild.DesiredRole]{})
	require.NoError(t, err)
	categories := guild.NewList(category)
	channel, err := guild.NewDesiredChannel("b:c", "", guild.VoiceChannel, "a", nil, guild.List[guild.DesiredRole]{}, categories)
	require.NoError(t, err)
	desired := guild.DesiredGuild{
		Categories: guild.DesiredCategories{List: categories},
		Channels:   guild.DesiredChannels{List: guild.NewList(channel), ExtraItems: guild.RemoveExtraItems},
	}

	cmds, err := ChannelChanges(live, desired)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, commands.CreateChannel{Channel: channel}, cmds[0])
	assert.Equal(t, commands.DeleteChannel{Channel: liveChannel}, cmds[1])

	partition := ChannelPartition(live, desired)
	assert.Empty(t, partition.Update)
	assert.Equal(t, []string{channel.Key()}, partition.Create)
	assert.Equal(t, []string{liveChannel.Key()}, partition.Extra)
}

func TestSyncPermissionsWithCategory(t *testing.T) {
	liveRoles := guild.NewList(guild.LiveRole{ID: "1", Name: "X"})
	liveTeam, err := guild.NewLiveCategory("10", "Team", nil, liveRoles)
	require.NoError(t, err)
	liveCategories := guild.NewList(liveTeam)
	general, err := guild.NewLiveChannel("20", "general", "hello", guild.TextChannel, "10", nil, liveRoles, liveCategories)
	require.NoError(t, err)
	live := guild.LiveGuild{Roles: liveRoles, Categories: liveCategories, Channels: guild.NewList(general)}

	desiredRoles := guild.NewList(guild.DesiredRole{Name: "X"})
	team, err := guild.NewDesiredCategory("Team", []guild.OverwriteRef{
		{Role: "X", Allow: guild.NewPermissions(guild.SendMessages)},
	}, false, guild.SyncPermissionsWithCategory, desiredRoles)
	require.NoError(t, err)
	desired := guild.DesiredGuild{
		Roles:      guild.DesiredRoles{List: desiredRoles},
		Categories: guild.DesiredCategories{List: guild.NewList(team)},
	}

	cmds, err := ChannelChanges(live, desired)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	update, ok := cmds[0].(commands.UpdateChannel)
	require.True(t, ok)
	assert.Equal(t, "general", update.Desired.Name)
	assert.Equal(t, "hello", update.Desired.Topic)
	assert.Equal(t, team.Overwrites, update.Desired.Overwrites)
	assert.Equal(t, "Team", update.Desired.CategoryName())
	assert.Equal(t, "Team:general (TEXT)", update.Describe().Name)
	assert.NotEmpty(t, update.Diffs)

	t.Run("already in sync", func(t *testing.T) {
		synced, err := guild.NewLiveChannel("20", "general", "hello", guild.TextChannel, "10", []guild.OverwriteRef{
			{Role: "1", Allow: guild.NewPermissions(guild.SendMessages)},
		}, liveRoles, liveCategories)
		require.NoError(t, err)
		live := live
		live.Channels = guild.NewList(synced)

		cmds, err := ChannelChanges(live, desired)
		require.NoError(t, err)
		assert.Empty(t, cmds)
	})

	t.Run("no desired category", func(t *testing.T) {
		desired := guild.DesiredGuild{Channels: guild.DesiredChannels{ExtraItems: guild.SyncPermissionsWithCategory}}
		_, err := ChannelChanges(live, desired)
		assert.ErrorIs(t, err, ErrSyncWithoutCategory)
	})
}

func TestSyncPolicyRejectedForRolesAndCategories(t *testing.T) {
	live := liveFixture(t)

	_, err := RoleChanges(live, guild.DesiredGuild{Roles: guild.DesiredRoles{ExtraItems: guild.SyncPermissionsWithCategory}})
	assert.ErrorIs(t, err, ErrPolicyNotApplicable)

	_, err = CategoryChanges(live, guild.DesiredGuild{Categories: guild.DesiredCategories{ExtraItems: guild.SyncPermissionsWithCategory}})
	assert.ErrorIs(t, err, ErrPolicyNotApplicable)
}

func TestUnknownPolicy(t *testing.T) {
	_, err := StrategyFor(guild.ExtraItemsPolicy(42))
	assert.ErrorIs(t, err, guild.ErrUnknownPolicy)
}

func TestOverwriteOrderDoesNotProduceUpdate(t *testing.T) {
	a := guild.Overwrite{Role: "A", Allow: guild.NewPermissions(guild.ViewChannel)}
	b := guild.Overwrite{Role: "B", Deny: guild.NewPermissions(guild.SendMessages)}

	live := guild.LiveGuild{Categories: guild.NewList(guild.LiveCategory{ID: "1", Name: "Team", Overwrites: guild.Overwrites{b, a}})}
	desired := guild.DesiredGuild{Categories: guild.DesiredCategories{List: guild.NewList(guild.DesiredCategory{Name: "Team", Overwrites: guild.Overwrites{a, b}})}}

	cmds, err := CategoryChanges(live, desired)
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestMatcherOrder(t *testing.T) {
	live := guild.LiveGuild{Roles: guild.NewList(
		guild.LiveRole{ID: "1", Name: "Old"},
		guild.LiveRole{ID: "2", Name: "Member"},
	)}
	desired := guild.DesiredGuild{Roles: guild.DesiredRoles{List: guild.NewList(
		guild.DesiredRole{Name: "Member", Mentionable: true},
		guild.DesiredRole{Name: "New"},
	)}}

	cmds, err := RoleChanges(live, desired)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE role New", "UPDATE role Member", "DELETE role Old"}, descriptions(cmds))

	update := cmds[1].(commands.UpdateRole)
	assert.Equal(t, "2", update.Live.ID)
	require.Len(t, update.Diffs, 1)
	assert.Equal(t, "is_mentionable", update.Diffs[0].Field)
}

func TestPartitionCoversAllKeys(t *testing.T) {
	live := liveFixture(t)
	desired := live.Desired()

	// one update, one create, one extra per kind
	roles := desired.Roles.Items()
	roles[0].Color = "00ff00"
	roles = append(roles[:1], guild.DesiredRole{Name: "Guest"})
	desired.Roles = guild.DesiredRoles{List: guild.NewList(roles...)}

	channels := desired.Channels.Items()
	channels[0].Topic = "changed"
	channels = append(channels[:2], guild.DesiredChannel{Name: "news"})
	desired.Channels = guild.DesiredChannels{List: guild.NewList(channels...)}

	tests := []struct {
		name      string
		partition Partition
		liveKeys  []string
		wantKeys  []string
	}{
		{
			name:      "roles",
			partition: RolePartition(live, desired),
			liveKeys:  live.Roles.Keys(),
			wantKeys:  desired.Roles.Keys(),
		},
		{
			name:      "categories",
			partition: CategoryPartition(live, desired),
			liveKeys:  live.Categories.Keys(),
			wantKeys:  desired.Categories.Keys(),
		},
		{
			name:      "channels",
			partition: ChannelPartition(live, desired),
			liveKeys:  live.Channels.Keys(),
			wantKeys:  desired.Channels.Keys(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			union := map[string]struct{}{}
			for _, key := range append(append([]string{}, tt.liveKeys...), tt.wantKeys...) {
				union[key] = struct{}{}
			}

			seen := map[string]int{}
			p := tt.partition
			for _, group := range [][]string{p.Create, p.Update, p.Extra, p.Unchanged} {
				for _, key := range group {
					seen[key]++
				}
			}
			assert.Len(t, seen, len(union))
			for key := range union {
				assert.Equal(t, 1, seen[key], key)
			}
		})
	}

	assert.Equal(t, []string{"Guest"}, RolePartition(live, desired).Create)
	assert.Equal(t, []string{"Admin"}, RolePartition(live, desired).Update)
	assert.Equal(t, []string{"Member"}, RolePartition(live, desired).Extra)
	assert.Equal(t, []string{":news (TEXT)"}, ChannelPartition(live, desired).Create)
	assert.Equal(t, []string{"Team:general (TEXT)"}, ChannelPartition(live, desired).Update)
	assert.Equal(t, []string{":rules (TEXT)"}, ChannelPartition(live, desired).Extra)
}
