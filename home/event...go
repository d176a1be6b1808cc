package home

import (
	"log"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

func init() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "event",
		Description: "Manage this server's countdown events",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
			discord.InteractionContextTypeBotDM,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        "add",
				Description: "Add a new event",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "name",
						Description: "Event name",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "date",
						Description: "Date as MM/DD/YYYY",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "time",
						Description: "24-hour time as HH:MM",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "remove",
				Description: "Remove an event by its list number",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "edit",
				Description: "Rename and/or reschedule an event",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "name",
						Description: "New event name",
						Required:    false,
					},
					discord.ApplicationCommandOptionString{
						Name:        "date",
						Description: "New date as MM/DD/YYYY",
						Required:    false,
					},
					discord.ApplicationCommandOptionString{
						Name:        "time",
						Description: "New 24-hour time as HH:MM",
						Required:    false,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "move",
				Description: "Reschedule an event to a new date and time",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "date",
						Description: "New date as MM/DD/YYYY",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "time",
						Description: "New 24-hour time as HH:MM",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "duplicate",
				Description: "Copy an event's settings under a new name and date",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "name",
						Description: "Name for the copy",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "date",
						Description: "Date as MM/DD/YYYY",
						Required:    true,
					},
					discord.ApplicationCommandOptionString{
						Name:        "time",
						Description: "24-hour time as HH:MM",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "list",
				Description: "List all events in countdown order",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "info",
				Description: "Show full details for one event",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "next",
				Description: "Show the next upcoming event",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "search",
				Description: "Find events by name",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "query",
						Description: "Part of the event name",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "silence",
				Description: "Silence or re-enable reminders for an event",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
					discord.ApplicationCommandOptionBool{
						Name:        "silenced",
						Description: "True to silence, false to re-enable",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "owner",
				Description: "Record who is responsible for an event",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionInt{
						Name:        "index",
						Description: "Event number from /event list",
						Required:    true,
					},
					discord.ApplicationCommandOptionUser{
						Name:        "user",
						Description: "Responsible user",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "archive",
				Description: "Remove every event that has already passed",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "purge",
				Description: "Delete ALL events for this server",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "confirm",
						Description: "Type YES to confirm",
						Required:    true,
					},
				},
			},
		},
	}, handleEvent)
}

func handleEvent(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.SubCommandName == nil {
		return
	}

	switch *data.SubCommandName {
	case "add":
		handleEventAdd(event, data)
	case "remove":
		handleEventRemove(event, data)
	case "edit":
		handleEventEdit(event, data)
	case "move":
		handleEventMove(event, data)
	case "duplicate":
		handleEventDuplicate(event, data)
	case "list":
		handleEventList(event)
	case "info":
		handleEventInfo(event, data)
	case "next":
		handleEventNext(event)
	case "search":
		handleEventSearch(event, data)
	case "silence":
		handleEventSilence(event, data)
	case "owner":
		handleEventOwner(event, data)
	case "archive":
		handleEventArchive(event)
	case "purge":
		handleEventPurge(event, data)
	default:
		log.Printf("Unknown event subcommand: %s", *data.SubCommandName)
	}
}
