package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

// handleEventAdd handles the /event add subcommand
func handleEventAdd(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
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

	added, err := sys.GlobalStore.AddEvent(guildID, data.String("name"), instant)
	if err != nil {
		respondErr(event, err)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgCmdAdded, added.Name, sys.FormatEventTime(added.Instant(), loc)), false)
	refreshSummary(guildID)
}

// handleEventDuplicate handles the /event duplicate subcommand
func handleEventDuplicate(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
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

	index := data.Int("index")

	existing := sys.GlobalStore.ListEvents(guildID)
	srcName := ""
	if index >= 1 && index <= len(existing) {
		srcName = existing[index-1].Name
	}

	dup, err := sys.GlobalStore.DuplicateEvent(guildID, index, data.String("name"), instant)
	if err != nil {
		respondErr(event, err)
		return
	}
	if srcName == "" {
		srcName = dup.Name
	}

	respond(event, fmt.Sprintf(sys.MsgCmdDuplicated, srcName, dup.Name, sys.FormatEventTime(dup.Instant(), loc)), false)
	refreshSummary(guildID)
}
