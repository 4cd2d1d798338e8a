package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/fuad-daoud/disma/commands"
	"github.com/fuad-daoud/disma/guild"
	"github.com/fuad-daoud/disma/logger/dlog"
)

type DriftReport struct {
	RunID     string
	GuildID   string
	CheckedAt time.Time
	Changes   []commands.Description
}

func (r DriftReport) Drifted() bool {
	return len(r.Changes) > 0
}

// DriftWatcher lists the pending changes of a guild on a cron schedule. It never
// applies anything.
type DriftWatcher struct {
	querier guild.GuildQuerier
	guildID string
	desired guild.DesiredGuild
	onCheck func(DriftReport, error)

	mu   sync.Mutex
	cron *cron.Cron
}

func NewDriftWatcher(querier guild.GuildQuerier, guildID string, desired guild.DesiredGuild, onCheck func(DriftReport, error)) *DriftWatcher {
	return &DriftWatcher{querier: querier, guildID: guildID, desired: desired, onCheck: onCheck}
}

func (w *DriftWatcher) Check(ctx context.Context) (DriftReport, error) {
	report := DriftReport{RunID: uuid.NewString(), GuildID: w.guildID, CheckedAt: time.Now()}
	log := dlog.With("run", report.RunID, "guild", w.guildID)

	live, err := w.querier.GetGuild(ctx, w.guildID)
	if err != nil {
		return report, fmt.Errorf("fetch guild %s: %w", w.guildID, err)
	}
	cmds, err := ListChanges(live, w.desired)
	if err != nil {
		return report, err
	}
	report.Changes = Describe(cmds)

	if report.Drifted() {
		log.Warn("Guild drifted from its document", "changes", len(cmds))
		for _, change := range report.Changes {
			log.Info("Pending change", "change", change.String())
		}
	} else {
		log.Info("Guild matches its document")
	}
	return report, nil
}

// Start schedules Check. A tick is skipped while the previous check is still
// running.
func (w *DriftWatcher) Start(ctx context.Context, schedule string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return fmt.Errorf("drift watcher for guild %s already started", w.guildID)
	}

	logger := cronLogger{log: dlog.Logger()}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	entryID, err := c.AddFunc(schedule, func() {
		report, err := w.Check(ctx)
		if err != nil {
			dlog.Error("Drift check failed", "guild", w.guildID, "error", err)
		}
		if w.onCheck != nil {
			w.onCheck(report, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	c.Start()
	w.cron = c
	dlog.Info("Created cron", "entryID", entryID, "schedule", schedule)
	return nil
}

// Stop waits for a running check to finish.
func (w *DriftWatcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
