package home

import (
	"fmt"
	"log"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/omit"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/chromie/sys"
)

func init() {
	manageGuild := discord.PermissionManageGuild

	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:                     "settings",
		Description:              "Configure Chromie for this server",
		DefaultMemberPermissions: omit.New(&manageGuild),
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
		},
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommandGroup{
				Name:        "channel",
				Description: "Events channel configuration",
				Options: []discord.ApplicationCommandOptionSubCommand{
					{
						Name:        "set",
						Description: "Use the current channel for countdowns and alerts",
					},
					{
						Name:        "clear",
						Description: "Stop posting countdowns and alerts",
					},
				},
			},
			discord.ApplicationCommandOptionSubCommandGroup{
				Name:        "role",
				Description: "Milestone mention role configuration",
				Options: []discord.ApplicationCommandOptionSubCommand{
					{
						Name:        "set",
						Description: "Mention a role on milestone alerts",
						Options: []discord.ApplicationCommandOption{
							discord.ApplicationCommandOptionRole{
								Name:        "role",
								Description: "Role to mention",
								Required:    true,
							},
						},
					},
					{
						Name:        "clear",
						Description: "Stop mentioning a role on milestone alerts",
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "timezone",
				Description: "Set this server's timezone",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "zone",
						Description: "IANA zone name, e.g. America/Chicago",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        "health",
				Description: "Show Chromie's configuration for this server",
			},
		},
	}, handleSettings)
}

func handleSettings(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	if data.SubCommandName == nil {
		return
	}

	guildID := event.GuildID()
	if guildID == nil {
		respond(event, sys.ErrCmdGuildOnly, true)
		return
	}

	group := ""
	if data.SubCommandGroupName != nil {
		group = *data.SubCommandGroupName
	}

	switch group + "/" + *data.SubCommandName {
	case "channel/set":
		if err := sys.GlobalStore.SetEventChannel(*guildID, event.Channel().ID()); err != nil {
			respondErr(event, err)
			return
		}
		respond(event, sys.MsgCmdChannelSet, false)
		refreshSummary(*guildID)

	case "channel/clear":
		if err := sys.GlobalStore.ClearEventChannel(*guildID); err != nil {
			respondErr(event, err)
			return
		}
		respond(event, sys.MsgCmdChannelClear, false)

	case "role/set":
		roleID := data.Snowflake("role")
		if err := sys.GlobalStore.SetMentionRole(*guildID, roleID); err != nil {
			respondErr(event, err)
			return
		}
		respond(event, fmt.Sprintf(sys.MsgCmdRoleSet, roleID), false)

	case "role/clear":
		if err := sys.GlobalStore.ClearMentionRole(*guildID); err != nil {
			respondErr(event, err)
			return
		}
		respond(event, sys.MsgCmdRoleCleared, false)

	case "/timezone":
		zone := data.String("zone")
		if err := sys.GlobalStore.SetTimezone(*guildID, zone); err != nil {
			respondErr(event, err)
			return
		}
		respond(event, fmt.Sprintf(sys.MsgCmdTimezoneSet, zone), false)
		refreshSummary(*guildID)

	case "/health":
		respond(event, buildHealthReport(*guildID), true)

	default:
		log.Printf("Unknown settings subcommand: %s/%s", group, *data.SubCommandName)
	}
}

func buildHealthReport(guildID snowflake.ID) string {
	view, ok := sys.GlobalStore.View(guildID)

	var b strings.Builder
	b.WriteString("# 🩺 Chromie health\n")
	if !ok || view.EventChannelID == 0 {
		b.WriteString("❌ Events channel: not set\n")
	} else {
		b.WriteString(fmt.Sprintf("✅ Events channel: <#%s>\n", view.EventChannelID))
	}
	if ok && view.PinnedMessageID != 0 {
		b.WriteString("✅ Pinned summary: tracked\n")
	} else {
		b.WriteString("ℹ️ Pinned summary: will be created on the next update\n")
	}
	tz := sys.GlobalConfig.DefaultTimezone
	if ok && view.Timezone != "" {
		tz = view.Timezone
	}
	b.WriteString(fmt.Sprintf("🕰 Timezone: %s\n", tz))
	if ok && view.MentionRoleID != 0 {
		b.WriteString(fmt.Sprintf("🔔 Mention role: <@&%s>\n", view.MentionRoleID))
	} else {
		b.WriteString("🔔 Mention role: none\n")
	}
	if ok {
		b.WriteString(fmt.Sprintf("📅 Tracked events: %d\n", len(view.Events)))
	} else {
		b.WriteString("📅 Tracked events: 0\n")
	}
	b.WriteString(fmt.Sprintf("♻️ Update interval: %s", sys.GlobalConfig.UpdateInterval))
	return b.String()
}
