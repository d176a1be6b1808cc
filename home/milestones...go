package home

import (
	"fmt"
	"log"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

func init() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "milestones",
		Description: "Configure which day-offsets trigger an alert for an event",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
			discord.InteractionContextTypeBotDM,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "set",
				Description: "Replace an event's milestone day-offsets",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "days",
						Description: "Comma-separated day-offsets, e.g. 90,60,30,7,1,0",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "reset",
				Description: "Restore an event's milestones to the defaults",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "clear",
				Description: "Remove all milestones so no alerts fire",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
				},
			},
		},
	}, handleMilestones)
}

func handleMilestones(event *events.ApplicationCommandInteractionCreate) {
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
		ms, err := sys.ParseMilestones(data.String("days"))
		if err != nil {
			respondErr(event, err)
			return
		}
		e, err := sys.GlobalStore.SetMilestones(guildID, index, ms)
		if err != nil {
			respondErr(event, err)
			return
		}
		respond(event, fmt.Sprintf(sys.MsgCmdMilestonesSet, e.Name, formatMilestones(e.Milestones)), false)

	case "reset":
		e, err := sys.GlobalStore.ResetMilestones(guildID, index)
		if err != nil {
			respondErr(event, err)
			return
		}
		respond(event, fmt.Sprintf(sys.MsgCmdMilestonesRst, e.Name, formatMilestones(e.Milestones)), false)

	case "clear":
		e, err := sys.GlobalStore.ClearMilestones(guildID, index)
		if err != nil {
			respondErr(event, err)
			return
		}
		respond(event, fmt.Sprintf(sys.MsgCmdMilestonesClr, e.Name), false)

	default:
		log.Printf("Unknown milestones subcommand: %s", *data.SubCommandName)
	}
}
