package home

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

// handleEventEdit handles the /event edit subcommand
func handleEventEdit(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	name, _ := data.OptString("name")
	date, hasDate := data.OptString("date")
	clock, hasTime := data.OptString("time")

	loc := guildLocation(guildID)

	// Rescheduling needs both halves.
	var instant *time.Time
	if hasDate != hasTime {
		respond(event, sys.ErrStoreBadDate, true)
		return
	}
	if hasDate {
		t, err := sys.ParseEventDateTime(date, clock, loc)
		if err != nil {
			respondErr(event, err)
			return
		}
		instant = &t
	}

	index := data.Int("index")
	edited, err := sys.GlobalStore.EditEvent(guildID, index, name, instant)
	if err != nil {
		respondErr(event, err)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgCmdEdited, index, edited.Name, sys.FormatEventTime(edited.Instant(), loc)), false)
	refreshSummary(guildID)
}

// handleEventMove handles the /event move subcommand
func handleEventMove(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	loc := guildLocation(guildID)
	instant, err := sys.ParseEventDateTime(data.String("date"), data.String("time"), loc)
	if err != nil {
		respondErr(event, err)
		return
	}

	moved, err := sys.GlobalStore.MoveEvent(guildID, data.Int("index"), instant)
	if err != nil {
		respondErr(event, err)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgCmdMoved, moved.Name, sys.FormatEventTime(moved.Instant(), loc)), false)
	refreshSummary(guildID)
}
