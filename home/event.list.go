package home

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

// handleEventList handles the /event list subcommand
func handleEventList(event *events.ApplicationCommandInteractionCreate) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	all := sys.GlobalStore.ListEvents(guildID)
	if len(all) == 0 {
		respond(event, sys.MsgCmdNoEventsYet, true)
		return
	}

	loc := guildLocation(guildID)
	now := time.Now()

	var b strings.Builder
	b.WriteString("# 📅 Events\n")
	for i, e := range all {
		desc, _, passed := sys.ComputeTimeLeft(e.Instant(), now)

		b.WriteString(fmt.Sprintf("**%d. %s**", i+1, truncate(e.Name, 80)))
		if e.Silenced {
			b.WriteString(" 🔕")
		}
		if e.RepeatEveryDays > 0 {
			b.WriteString(" 🔁")
		}
		b.WriteString(fmt.Sprintf(" — %s\n", sys.FormatEventShort(e.Instant(), loc)))
		if passed {
			b.WriteString(sys.MsgSummaryEventPassed + "\n")
		} else {
			b.WriteString(fmt.Sprintf("⏳ %s\n", desc))
		}
	}

	respond(event, b.String(), false)
}

// handleEventInfo handles the /event info subcommand
func handleEventInfo(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	index := data.Int("index")
	all := sys.GlobalStore.ListEvents(guildID)
	if len(all) == 0 {
		respond(event, sys.ErrStoreNoEvents, true)
		return
	}
	if index < 1 || index > len(all) {
		respond(event, fmt.Sprintf(sys.ErrStoreIndexRange, len(all)), true)
		return
	}

	e := all[index-1]
	loc := guildLocation(guildID)
	desc, _, passed := sys.ComputeTimeLeft(e.Instant(), time.Now())

	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %d. %s\n", index, e.Name))
	b.WriteString(fmt.Sprintf("🗓 %s\n", sys.FormatEventTime(e.Instant(), loc)))
	if passed {
		b.WriteString(sys.MsgSummaryEventPassed + "\n")
	} else {
		b.WriteString(fmt.Sprintf("⏳ %s\n", desc))
	}

	b.WriteString(fmt.Sprintf("📍 Milestones: %s\n", formatMilestones(e.Milestones)))
	if len(e.AnnouncedMilestones) > 0 {
		b.WriteString(fmt.Sprintf("✅ Already announced: %s\n", formatMilestones(e.AnnouncedMilestones)))
	}
	if e.RepeatEveryDays > 0 {
		b.WriteString(fmt.Sprintf("🔁 Repeats every %d day(s) from %s\n", e.RepeatEveryDays, e.RepeatAnchorDate))
	}
	if e.Silenced {
		b.WriteString("🔕 Reminders silenced\n")
	}
	if e.OwnerID != 0 {
		b.WriteString(fmt.Sprintf("👤 Owner: <@%s>\n", e.OwnerID))
	}

	respond(event, b.String(), false)
}

// handleEventNext handles the /event next subcommand
func handleEventNext(event *events.ApplicationCommandInteractionCreate) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	all := sys.GlobalStore.ListEvents(guildID)
	if len(all) == 0 {
		respond(event, sys.MsgCmdNoEventsYet, true)
		return
	}

	loc := guildLocation(guildID)
	now := time.Now()
	for i, e := range all {
		desc, _, passed := sys.ComputeTimeLeft(e.Instant(), now)
		if passed {
			continue
		}
		respond(event, fmt.Sprintf("# ⏭ Next up: %s\n🗓 %s\n⏳ %s\n-# Event #%d of %d",
			e.Name, sys.FormatEventTime(e.Instant(), loc), desc, i+1, len(all)), false)
		return
	}

	respond(event, sys.MsgCmdNoUpcoming, true)
}

// handleEventSearch handles the /event search subcommand
func handleEventSearch(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	matches := sys.GlobalStore.SearchEvents(guildID, data.String("query"))
	if len(matches) == 0 {
		respond(event, sys.MsgCmdNoMatches, true)
		return
	}

	loc := guildLocation(guildID)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# 🔎 %d match(es)\n", len(matches)))
	for _, m := range matches {
		b.WriteString(fmt.Sprintf("**%d. %s** — %s\n", m.Index, truncate(m.Event.Name, 80), sys.FormatEventShort(m.Event.Instant(), loc)))
	}

	respond(event, b.String(), false)
}

func formatMilestones(ms []int) string {
	if len(ms) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(ms))
	for _, m := range ms {
		parts = append(parts, fmt.Sprintf("%d", m))
	}
	return strings.Join(parts, ", ")
}
