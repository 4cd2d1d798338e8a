package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/guild"
	"github.com/fuad-daoud/disma/logger/dlog"
)

type State int

const (
	Idle State = iota
	Diffing
	AwaitingConfirmation
	Applying
	Done
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Diffing:
		return "diffing"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Applying:
		return "applying"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Prompter asks the operator a yes/no question and blocks until answered.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

type Presenter interface {
	ShowChanges(changes []commands.Description)
	ShowApplied(change commands.Description)
}

type Options struct {
	// DryRun stops after listing the changes.
	DryRun bool
	// Force applies without asking.
	Force bool
}

type Report struct {
	RunID   string
	State   State
	History []State
	Changes []commands.Description
	Applied []commands.Description
}

type Runner struct {
	querier   guild.GuildQuerier
	commander guild.GuildCommander
	prompter  Prompter
	presenter Presenter
}

// NewRunner builds a runner. A nil prompter refuses every confirmation.
func NewRunner(querier guild.GuildQuerier, commander guild.GuildCommander, prompter Prompter, presenter Presenter) *Runner {
	return &Runner{querier: querier, commander: commander, prompter: prompter, presenter: presenter}
}

// confirm refuses when no prompter was given.
func (r *Runner) confirm(ctx context.Context, question string) (bool, error) {
	if r.prompter == nil {
		return false, nil
	}
	return r.prompter.Confirm(ctx, question)
}

type run struct {
	report *Report
}

func (r run) moveTo(state State) {
	r.report.State = state
	r.report.History = append(r.report.History, state)
}

// Run performs one reconciliation of guildID. The report is filled in even when
// an error is returned, its State being Failed.
func (r *Runner) Run(ctx context.Context, guildID string, desired guild.DesiredGuild, opts Options) (Report, error) {
	report := Report{RunID: uuid.NewString(), State: Idle, History: []State{Idle}}
	current := run{report: &report}
	log := dlog.With("run", report.RunID, "guild", guildID)

	current.moveTo(Diffing)
	live, err := r.querier.GetGuild(ctx, guildID)
	if err != nil {
		current.moveTo(Failed)
		log.Error("Could not fetch guild", "error", err)
		return report, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}
	cmds, err := ListChanges(live, desired)
	if err != nil {
		current.moveTo(Failed)
		log.Error("Could not list changes", "error", err)
		return report, err
	}
	report.Changes = Describe(cmds)
	if r.presenter != nil {
		r.presenter.ShowChanges(report.Changes)
	}
	log.Info("Listed changes", "count", len(cmds))

	if len(cmds) == 0 || opts.DryRun {
		current.moveTo(Done)
		return report, nil
	}

	if !opts.Force {
		current.moveTo(AwaitingConfirmation)
		ok, err := r.confirm(ctx, fmt.Sprintf("Apply %d changes?", len(cmds)))
		if err != nil {
			current.moveTo(Failed)
			return report, fmt.Errorf("confirmation: %w", err)
		}
		if !ok {
			current.moveTo(Aborted)
			log.Warn("Changes not applied")
			return report, nil
		}
	}

	current.moveTo(Applying)
	err = execute(ctx, cmds, r.commander, func(d commands.Description) {
		report.Applied = append(report.Applied, d)
		if r.presenter != nil {
			r.presenter.ShowApplied(d)
		}
	})
	if err != nil {
		current.moveTo(Failed)
		log.Error("Could not apply changes", "applied", len(report.Applied), "error", err)
		return report, err
	}
	current.moveTo(Done)
	log.Info("Applied changes", "count", len(report.Applied))
	return report, nil
}
