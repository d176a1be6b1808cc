package home

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

// handleEventRemove handles the /event remove subcommand
func handleEventRemove(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	removed, err := sys.GlobalStore.RemoveEvent(guildID, data.Int("index"))
	if err != nil {
		respondErr(event, err)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgCmdRemoved, removed.Name), false)
	refreshSummary(guildID)
}

// handleEventArchive handles the /event archive subcommand
func handleEventArchive(event *events.ApplicationCommandInteractionCreate) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	removed, remaining, err := sys.GlobalStore.ArchivePast(guildID, time.Now())
	if err != nil {
		respondErr(event, err)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgCmdArchived, removed, remaining), false)
	refreshSummary(guildID)
}

// handleEventPurge handles the /event purge subcommand
func handleEventPurge(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	if strings.TrimSpace(data.String("confirm")) != "YES" {
		respond(event, sys.ErrCmdNotConfirmed, true)
		return
	}

	if err := sys.GlobalStore.PurgeEvents(guildID); err != nil {
		respondErr(event, err)
		return
	}

	respond(event, sys.MsgCmdPurged, false)
	refreshSummary(guildID)
}
