package home

import (
	"log"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/proc"
	"github.com/leeineian/chromie/sys"
)

func init() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "summary",
		Description: "Manage the pinned countdown board",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
			discord.InteractionContextTypeBotDM,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "refresh",
				Description: "Repost and re-pin the countdown board now",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "test",
				Description: "Send a test reminder to the events channel",
			},
		},
	}, handleSummary)
}

func handleSummary(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.SubCommandName == nil {
		return
	}

	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}

	notifier := sys.GlobalNotifier
	if notifier == nil {
		respond(event, sys.ErrCmdSaveFailed, true)
		return
	}

	switch *data.SubCommandName {
	case "refresh":
		_ = event.DeferCreateMessage(true)
		go func() {
			if err := proc.RebuildSummary(sys.AppContext, sys.GlobalStore, notifier, guildID, time.Now()); err != nil {
				followUp(event, sys.UserMessage(err))
				return
			}
			followUp(event, sys.MsgCmdSummarySent)
		}()

	case "test":
		view, ok := sys.GlobalStore.View(guildID)
		if !ok || view.EventChannelID == 0 {
			respond(event, sys.ErrCmdNoChannel, true)
			return
		}
		_ = event.DeferCreateMessage(true)
		go func() {
			if _, err := notifier.SendMessage(sys.AppContext, view.EventChannelID, "🔔 This is a test reminder from Chromie!"); err != nil {
				followUp(event, sys.ErrCmdChannelGone)
				return
			}
			followUp(event, sys.MsgCmdTestSent)
		}()

	default:
		log.Printf("Unknown summary subcommand: %s", *data.SubCommandName)
	}
}

// followUp edits a deferred interaction response in place.
func followUp(event *events.ApplicationCommandInteractionCreate, content string) {
	if !strings.HasPrefix(content, "#") && !strings.HasPrefix(content, ">") {
		content = "> " + content
	}

	_, _ = event.Client().Rest.UpdateInteractionResponse(event.ApplicationID(), event.Token(), discord.NewMessageUpdateV2([]discord.LayoutComponent{
		discord.NewContainer(
			discord.NewTextDisplay(content),
		),
	}))
}
