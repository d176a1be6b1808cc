package proc

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/chromie/sys"
)

// sweepNotifier is set once the gateway is ready; the daemon refuses to start
// without it.
var sweepNotifier sys.Notifier

func init() {
	sys.OnClientReady(func(ctx context.Context, client *bot.Client) {
		n := sys.NewRestNotifier(client)
		sweepNotifier = n
		sys.SetGlobalNotifier(n)
	})
	sys.RegisterDaemon(sys.LogSweep, func(ctx context.Context) (bool, func()) {
		if sweepNotifier == nil {
			return false, nil
		}
		return true, func() { runSweepLoop(ctx) }
	})
}

func runSweepLoop(ctx context.Context) {
	interval := 60 * time.Second
	if sys.GlobalConfig != nil {
		interval = sys.GlobalConfig.UpdateInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	RunSweep(ctx, sys.GlobalStore, sweepNotifier, time.Now())
	for {
		select {
		case <-ctx.Done():
			sys.LogSweep(sys.MsgSweepStopped)
			return
		case now := <-ticker.C:
			RunSweep(ctx, sys.GlobalStore, sweepNotifier, now)
		}
	}
}

// RunSweep reconciles every known guild against the clock.
func RunSweep(ctx context.Context, store *sys.Store, notifier sys.Notifier, now time.Time) {
	for _, guildID := range store.GuildIDs() {
		SweepGuild(ctx, store, notifier, guildID, now)
	}
}

// SweepGuild refreshes one guild's pinned summary, then fires due milestone
// alerts and repeat reminders. Dedup records are written whether or not
// delivery succeeded, so a flaky channel never causes a duplicate alert.
func SweepGuild(ctx context.Context, store *sys.Store, notifier sys.Notifier, guildID snowflake.ID, now time.Time) {
	view, ok := store.View(guildID)
	if !ok || view.EventChannelID == 0 {
		return
	}

	loc := store.Location(view.Timezone)
	today := sys.LocalDate(now, loc)

	_ = EnsureSummary(ctx, store, notifier, guildID, now)

	for i := range view.Events {
		e := &view.Events[i]
		if e.Silenced {
			continue
		}

		desc, daysLeft, passed := sys.ComputeTimeLeft(e.Instant(), now)
		if passed {
			continue
		}

		// At most one notification per event per day; a due milestone wins
		// over a repeat reminder landing on the same day, and consumes the
		// repeat's dedup slot so a later tick cannot fire it anyway.
		if fireMilestone(ctx, store, notifier, guildID, view, e, daysLeft) {
			if repeatDueToday(e, today) {
				if err := store.MarkRepeatAnnounced(guildID, e.ID, today); err != nil {
					sys.LogSweep(sys.MsgSweepRecordFail, guildID, e.Name, err)
				}
			}
			continue
		}
		fireRepeat(ctx, store, notifier, guildID, view, e, today, desc)
	}
}

func fireMilestone(ctx context.Context, store *sys.Store, notifier sys.Notifier, guildID snowflake.ID, view sys.GuildView, e *sys.Event, daysLeft int) bool {
	if !slices.Contains(e.Milestones, daysLeft) || slices.Contains(e.AnnouncedMilestones, daysLeft) {
		return false
	}

	content := sys.BuildMilestoneText(e.Name, daysLeft)
	if view.MentionRoleID != 0 {
		content = fmt.Sprintf("<@&%s>\n%s", view.MentionRoleID, content)
	}

	if _, err := notifier.SendMessage(ctx, view.EventChannelID, content); err != nil {
		sys.LogSweep(sys.MsgSweepSendFail, guildID, e.Name, err)
	} else {
		sys.LogSweep(sys.MsgSweepMilestoneSent, guildID, daysLeft, e.Name)
	}

	if err := store.MarkMilestoneAnnounced(guildID, e.ID, daysLeft); err != nil {
		sys.LogSweep(sys.MsgSweepRecordFail, guildID, e.Name, err)
	}
	return true
}

// repeatDueToday reports whether the repeat cadence lands on today and has not
// been recorded yet.
func repeatDueToday(e *sys.Event, today string) bool {
	if e.RepeatEveryDays <= 0 || e.RepeatAnchorDate == "" {
		return false
	}
	daysSince := sys.DaysBetweenDates(e.RepeatAnchorDate, today)
	if daysSince <= 0 || daysSince%e.RepeatEveryDays != 0 {
		return false
	}
	return !slices.Contains(e.AnnouncedRepeatDates, today)
}

func fireRepeat(ctx context.Context, store *sys.Store, notifier sys.Notifier, guildID snowflake.ID, view sys.GuildView, e *sys.Event, today, remaining string) {
	if !repeatDueToday(e, today) {
		return
	}

	content := sys.BuildRepeatText(e.Name, remaining)
	if _, err := notifier.SendMessage(ctx, view.EventChannelID, content); err != nil {
		sys.LogSweep(sys.MsgSweepSendFail, guildID, e.Name, err)
	} else {
		sys.LogSweep(sys.MsgSweepRepeatSent, guildID, e.Name, today)
	}

	if err := store.MarkRepeatAnnounced(guildID, e.ID, today); err != nil {
		sys.LogSweep(sys.MsgSweepRecordFail, guildID, e.Name, err)
	}
}
