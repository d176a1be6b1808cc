package home

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

// handleEventSilence handles the /event silence subcommand
func handleEventSilence(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	silenced := data.Bool("silenced")
	e, err := sys.GlobalStore.SetSilenced(guildID, data.Int("index"), silenced)
	if err != nil {
		respondErr(event, err)
		return
	}

	if silenced {
		respond(event, fmt.Sprintf(sys.MsgCmdSilenced, e.Name), false)
	} else {
		respond(event, fmt.Sprintf(sys.MsgCmdUnsilenced, e.Name), false)
	}
	refreshSummary(guildID)
}

// handleEventOwner handles the /event owner subcommand
func handleEventOwner(event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData) {
	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	userID := data.Snowflake("user")
	e, err := sys.GlobalStore.SetOwner(guildID, data.Int("index"), userID)
	if err != nil {
		respondErr(event, err)
		return
	}

	respond(event, fmt.Sprintf(sys.MsgCmdOwnerSet, userID, e.Name), false)
}
