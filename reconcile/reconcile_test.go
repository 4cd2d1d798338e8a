package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/guild"
)

type fakeQuerier struct {
	live  guild.LiveGuild
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (f *fakeQuerier) GetGuild(ctx context.Context, _ string) (guild.LiveGuild, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return guild.LiveGuild{}, ctx.Err()
		}
	}
	return f.live, f.err
}

type fakeCommander struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (f *fakeCommander) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New("missing permissions")
	}
	return nil
}

func (f *fakeCommander) AddRole(_ context.Context, role guild.DesiredRole) (string, error) {
	return "100", f.record("add role " + role.Name)
}

func (f *fakeCommander) UpdateRole(_ context.Context, id string, role guild.DesiredRole) error {
	return f.record("update role " + role.Name)
}

func (f *fakeCommander) DeleteRole(_ context.Context, id string) error {
	return f.record("delete role " + id)
}

func (f *fakeCommander) AddCategory(_ context.Context, category guild.DesiredCategory) (string, error) {
	return "200", f.record("add category " + category.Name)
}

func (f *fakeCommander) UpdateCategory(_ context.Context, id string, category guild.DesiredCategory) error {
	return f.record("update category " + category.Name)
}

func (f *fakeCommander) DeleteCategory(_ context.Context, id string) error {
	return f.record("delete category " + id)
}

func (f *fakeCommander) AddChannel(_ context.Context, channel guild.DesiredChannel) (string, error) {
	return "300", f.record("add channel " + channel.Name)
}

func (f *fakeCommander) UpdateChannel(_ context.Context, id string, channel guild.DesiredChannel) error {
	return f.record("update channel " + channel.Name)
}

func (f *fakeCommander) DeleteChannel(_ context.Context, id string) error {
	return f.record("delete channel " + id)
}

type fakePrompter struct {
	answer    bool
	err       error
	questions []string
}

func (f *fakePrompter) Confirm(_ context.Context, question string) (bool, error) {
	f.questions = append(f.questions, question)
	return f.answer, f.err
}

type fakePresenter struct {
	shown   []commands.Description
	applied []commands.Description
}

func (f *fakePresenter) ShowChanges(changes []commands.Description) {
	f.shown = changes
}

func (f *fakePresenter) ShowApplied(change commands.Description) {
	f.applied = append(f.applied, change)
}

// mixedGuild needs one role creation, one category update and one channel
// deletion.
func mixedGuild() (guild.LiveGuild, guild.DesiredGuild) {
	team := guild.LiveCategory{ID: "10", Name: "Team"}
	live := guild.LiveGuild{
		Categories: guild.NewList(team),
		Channels:   guild.NewList(guild.LiveChannel{ID: "20", Name: "old", Category: &team}),
	}
	desired := guild.DesiredGuild{
		Roles: guild.DesiredRoles{List: guild.NewList(guild.DesiredRole{Name: "Admin", Permissions: guild.NewPermissions(guild.Administrator)})},
		Categories: guild.DesiredCategories{List: guild.NewList(guild.DesiredCategory{
			Name:       "Team",
			Overwrites: guild.NewOverwrites(guild.Overwrite{Role: "Admin", Allow: guild.NewPermissions(guild.ViewChannel)}),
		})},
	}
	return live, desired
}

func TestApplyChangesOrder(t *testing.T) {
	live, desired := mixedGuild()
	commander := &fakeCommander{}

	var applied []string
	err := ApplyChanges(context.Background(), live, desired, commander, func(d commands.Description) {
		applied = append(applied, d.String())
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"add role Admin", "update category Team", "delete channel 20"}, commander.calls)
	assert.Equal(t, []string{"create role Admin", "update category Team (1 changes)", "delete channel Team:old (TEXT)"}, applied)
}

func TestApplyChangesStopsAtFirstFailure(t *testing.T) {
	live, desired := mixedGuild()
	commander := &fakeCommander{failOn: "update category Team"}

	err := ApplyChanges(context.Background(), live, desired, commander, nil)

	var mutationErr *commands.MutationError
	require.True(t, errors.As(err, &mutationErr))
	assert.Equal(t, commands.Update, mutationErr.Description.Action)
	assert.Equal(t, commands.Category, mutationErr.Description.Entity)
	assert.Equal(t, []string{"add role Admin", "update category Team"}, commander.calls)
}

func TestApplyChangesCancelled(t *testing.T) {
	live, desired := mixedGuild()
	commander := &fakeCommander{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ApplyChanges(ctx, live, desired, commander, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, commander.calls)
}

func TestListChangesWrapsDetectionErrors(t *testing.T) {
	_, err := ListChanges(guild.LiveGuild{Roles: guild.NewList(guild.LiveRole{ID: "1", Name: "Old"})}, guild.DesiredGuild{
		Roles: guild.DesiredRoles{ExtraItems: guild.SyncPermissionsWithCategory},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roles:")
}

func TestRunner(t *testing.T) {
	live, desired := mixedGuild()

	tests := []struct {
		name        string
		live        guild.LiveGuild
		desired     guild.DesiredGuild
		fetchErr    error
		opts        Options
		answer      bool
		failOn      string
		wantState   State
		wantHistory []State
		wantCalls   int
		wantAsked   bool
		wantErr     bool
	}{
		{
			name:        "confirmed",
			live:        live,
			desired:     desired,
			answer:      true,
			wantState:   Done,
			wantHistory: []State{Idle, Diffing, AwaitingConfirmation, Applying, Done},
			wantCalls:   3,
			wantAsked:   true,
		},
		{
			name:        "refused",
			live:        live,
			desired:     desired,
			answer:      false,
			wantState:   Aborted,
			wantHistory: []State{Idle, Diffing, AwaitingConfirmation, Aborted},
			wantAsked:   true,
		},
		{
			name:        "dry run",
			live:        live,
			desired:     desired,
			opts:        Options{DryRun: true},
			wantState:   Done,
			wantHistory: []State{Idle, Diffing, Done},
		},
		{
			name:        "forced",
			live:        live,
			desired:     desired,
			opts:        Options{Force: true},
			wantState:   Done,
			wantHistory: []State{Idle, Diffing, Applying, Done},
			wantCalls:   3,
		},
		{
			name:        "nothing to do",
			live:        live,
			desired:     live.Desired(),
			wantState:   Done,
			wantHistory: []State{Idle, Diffing, Done},
		},
		{
			name:        "fetch failure",
			fetchErr:    errors.New("unauthorized"),
			wantState:   Failed,
			wantHistory: []State{Idle, Diffing, Failed},
			wantErr:     true,
		},
		{
			name:        "mutation failure",
			live:        live,
			desired:     desired,
			opts:        Options{Force: true},
			failOn:      "delete channel 20",
			wantState:   Failed,
			wantHistory: []State{Idle, Diffing, Applying, Failed},
			wantCalls:   3,
			wantErr:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier := &fakeQuerier{live: tt.live, err: tt.fetchErr}
			commander := &fakeCommander{failOn: tt.failOn}
			prompter := &fakePrompter{answer: tt.answer}
			presenter := &fakePresenter{}

			report, err := NewRunner(querier, commander, prompter, presenter).Run(context.Background(), "1", tt.desired, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantState, report.State)
			assert.Equal(t, tt.wantHistory, report.History)
			assert.Len(t, commander.calls, tt.wantCalls)
			assert.Equal(t, tt.wantAsked, len(prompter.questions) > 0)
			assert.NotEmpty(t, report.RunID)
			assert.Equal(t, report.Changes, presenter.shown)
			assert.Equal(t, report.Applied, presenter.applied)
		})
	}
}

func TestRunnerQuestion(t *testing.T) {
	live, desired := mixedGuild()
	prompter := &fakePrompter{}

	_, err := NewRunner(&fakeQuerier{live: live}, &fakeCommander{}, prompter, nil).Run(context.Background(), "1", desired, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apply 3 changes?"}, prompter.questions)
}

func TestRunnerWithoutPrompterRefuses(t *testing.T) {
	live, desired := mixedGuild()
	commander := &fakeCommander{}

	report, err := NewRunner(&fakeQuerier{live: live}, commander, nil, nil).Run(context.Background(), "1", desired, Options{})
	require.NoError(t, err)
	assert.Equal(t, Aborted, report.State)
	assert.Equal(t, []State{Idle, Diffing, AwaitingConfirmation, Aborted}, report.History)
	assert.Empty(t, report.Applied)
	assert.Empty(t, commander.calls)
}

func TestDriftCheck(t *testing.T) {
	live, desired := mixedGuild()

	report, err := NewDriftWatcher(&fakeQuerier{live: live}, "1", desired, nil).Check(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Drifted())
	assert.Len(t, report.Changes, 3)
	assert.Equal(t, "1", report.GuildID)

	report, err = NewDriftWatcher(&fakeQuerier{live: live}, "1", live.Desired(), nil).Check(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Drifted())
}

func TestDriftWatcherInvalidSchedule(t *testing.T) {
	w := NewDriftWatcher(&fakeQuerier{}, "1", guild.DesiredGuild{}, nil)
	assert.Error(t, w.Start(context.Background(), "every now and then"))
}

func TestDriftWatcherSkipsOverlappingChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on the cron scheduler")
	}
	querier := &fakeQuerier{block: make(chan struct{})}
	w := NewDriftWatcher(querier, "1", guild.DesiredGuild{}, nil)
	require.NoError(t, w.Start(context.Background(), "@every 1s"))
	assert.Error(t, w.Start(context.Background(), "@every 1s"))

	time.Sleep(2500 * time.Millisecond)
	assert.Equal(t, int32(1), querier.calls.Load())

	close(querier.block)
	w.Stop()
}
