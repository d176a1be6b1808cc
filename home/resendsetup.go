package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/leeineian/chromie/proc"
	"github.com/leeineian/chromie/sys"
)

func init() {
	manageGuild := discord.PermissionManageGuild

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "resendsetup",
		Description:              "Resend the setup instructions to the server owner",
		DefaultMemberPermissions: omit.New(&manageGuild),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
	}, handleResendSetup)
}

func handleResendSetup(event *events.ApplicationCommandInteractionCreate) {
	guildID := event.GuildID()
	if guildID == nil {
		respond(event, sys.ErrCmdGuildOnly, true)
		return
	}

	client := event.Client()
	_ = event.DeferCreateMessage(true)
	go func() {
		if err := proc.ResendSetup(sys.AppContext, client, *guildID); err != nil {
			followUp(event, sys.UserMessage(err))
			return
		}
		followUp(event, sys.MsgCmdSetupResent)
	}()
}
