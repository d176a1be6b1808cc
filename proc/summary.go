package proc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/chromie/sys"
)

// BuildSummaryContent renders the pinned countdown board for one guild. Pure:
// it only reads the view, so the sweep and the tests share it.
func BuildSummaryContent(view sys.GuildView, now time.Time, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(sys.MsgSummaryTitle)
	b.WriteString("\n")
	b.WriteString(sys.MsgSummarySubtitle)
	b.WriteString("\n\n")

	if len(view.Events) == 0 {
		b.WriteString(sys.MsgSummaryNoEvents)
		return b.String()
	}

	upcoming := 0
	for i, e := range view.Events {
		desc, _, passed := sys.ComputeTimeLeft(e.Instant(), now)

		b.WriteString(fmt.Sprintf("**%d. %s**", i+1, e.Name))
		if e.Silenced {
			b.WriteString(" 🔕")
		}
		if e.RepeatEveryDays > 0 {
			b.WriteString(" 🔁")
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("🗓 %s\n", sys.FormatEventTime(e.Instant(), loc)))
		if passed {
			b.WriteString(sys.MsgSummaryEventPassed)
		} else {
			b.WriteString(fmt.Sprintf("⏳ %s", desc))
			upcoming++
		}
		b.WriteString("\n\n")
	}

	if upcoming == 0 {
		b.WriteString(sys.MsgSummaryAllPassed)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("-# Updated %s", sys.FormatEventTime(now, loc)))
	return b.String()
}

// EnsureSummary keeps the pinned summary current from the sweep: edit the
// known message in place, and fall back to creating a fresh one when the
// message is gone. Returns an error only for failures worth retrying next
// tick.
func EnsureSummary(ctx context.Context, store *sys.Store, notifier sys.Notifier, guildID snowflake.ID, now time.Time) error {
	view, ok := store.View(guildID)
	if !ok || view.EventChannelID == 0 {
		return nil
	}

	content := BuildSummaryContent(view, now, store.Location(view.Timezone))

	if view.PinnedMessageID != 0 {
		err := notifier.EditMessage(ctx, view.EventChannelID, view.PinnedMessageID, content)
		if err == nil {
			return nil
		}
		if !sys.IsMissing(err) {
			sys.LogSummary(sys.MsgSummaryEditFail, guildID, err)
			return err
		}
		// Pinned message was deleted by hand; recreate below.
	}

	return publishSummary(ctx, store, notifier, guildID, view.EventChannelID, content)
}

// RebuildSummary fully replaces the pinned summary: unpin the old message,
// post a fresh one, pin it. Commands use this so the board jumps back to the
// bottom of the channel after a change.
func RebuildSummary(ctx context.Context, store *sys.Store, notifier sys.Notifier, guildID snowflake.ID, now time.Time) error {
	view, ok := store.View(guildID)
	if !ok || view.EventChannelID == 0 {
		return sys.Validationf(sys.ErrCmdNoChannel)
	}

	if view.PinnedMessageID != 0 {
		if err := notifier.UnpinMessage(ctx, view.EventChannelID, view.PinnedMessageID); err != nil && !sys.IsMissing(err) {
			sys.LogSummary(sys.MsgSummaryUnpinFail, guildID, view.PinnedMessageID, err)
		}
	}

	content := BuildSummaryContent(view, now, store.Location(view.Timezone))
	return publishSummary(ctx, store, notifier, guildID, view.EventChannelID, content)
}

func publishSummary(ctx context.Context, store *sys.Store, notifier sys.Notifier, guildID, channelID snowflake.ID, content string) error {
	msgID, err := notifier.SendMessage(ctx, channelID, content)
	if err != nil {
		sys.LogSummary(sys.MsgSummarySendFail, guildID, err)
		return err
	}

	// A failed pin is survivable: the message exists and stays tracked.
	if err := notifier.PinMessage(ctx, channelID, msgID); err != nil {
		sys.LogSummary(sys.MsgSummaryPinFail, guildID, err)
	}

	if err := store.SetPinnedMessage(guildID, msgID); err != nil {
		sys.LogSummary(sys.MsgSummaryRecordFail, guildID, err)
		return err
	}
	return nil
}
