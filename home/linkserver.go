package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

func init() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "linkserver",
		Description: "Make this server the target of your DM commands",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
	}, handleLinkServer)
}

func handleLinkServer(event *events.ApplicationCommandInteractionCreate) {
	guildID := event.GuildID()
	if guildID == nil {
		respond(event, sys.ErrCmdGuildOnly, true)
		return
	}

	if err := sys.GlobalStore.LinkUser(event.User().ID, *guildID); err != nil {
		respondErr(event, err)
		return
	}

	respond(event, sys.MsgCmdLinked, true)
}
