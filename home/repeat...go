package home

import (
	"fmt"
	"log"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

func init() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "repeat",
		Description: "Configure recurring check-in reminders for an event",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
			discord.InteractionContextTypeBotDM,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set",
				Description: "Remind every N days until the event",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
					discord.ApplicationCommandOptionInt{
						Name:        "every",
						Description: "Days between reminders (1-365)",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "from",
						Description: "Anchor date as MM/DD/YYYY (default: today)",
						Required:    false,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "clear",
				Description: "Disable recurring reminders for an event",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
				},
			},
		},
	}, handleRepeat)
}

func handleRepeat(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.SubCommandName == nil {
		return
	}

	guildID, ok := resolveGuild(event)
	if !ok {
		return
	}
	index := data.Int("index")

	switch *data.SubCommandName {
	case "set":
		loc := guildLocation(guildID)
		anchor := sys.LocalDate(time.Now(), loc)
		if raw, hasFrom := data.OptString("from"); hasFrom {
			t, err := sys.ParseDate(raw)
			if err != nil {
				respondErr(event, err)
				return
			}
			anchor = sys.LocalDate(t, time.UTC)
		}

		e, err := sys.GlobalStore.SetRepeat(guildID, index, data.Int("every"), anchor)
		if err != nil {
			respondErr(event, err)
			return
		}
		respond(event, fmt.Sprintf(sys.MsgCmdRepeatSet, e.Name, e.RepeatEveryDays, e.RepeatAnchorDate), false)

	case "clear":
		e, err := sys.GlobalStore.ClearRepeat(guildID, index)
		if err != nil {
			respondErr(event, err)
			return
		}
		respond(event, fmt.Sprintf(sys.MsgCmdRepeatClear, e.Name), false)

	default:
		log.Printf("Unknown repeat subcommand: %s", *data.SubCommandName)
	}
}
