package home

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/leeineian/chromie/sys"
)

const helpText = "# 🕰 Chromie commands\n" +
	"**Events**\n" +
	"`/event add` `remove` `edit` `move` `duplicate` — manage events (MM/DD/YYYY, 24-hour HH:MM)\n" +
	"`/event list` `info` `next` `search` — browse events\n" +
	"`/event silence` — mute or unmute one event's reminders\n" +
	"`/event owner` — record who is responsible for an event\n" +
	"`/event archive` — drop everything that already happened\n" +
	"`/event purge` — delete every event (requires typing YES)\n\n" +
	"**Reminders**\n" +
	"`/milestones set` `reset` `clear` — which day-offsets fire a one-time alert\n" +
	"`/repeat set` `clear` — recurring check-in reminders every N days\n\n" +
	"**Server setup**\n" +
	"`/settings channel set|clear` — where countdowns and alerts go\n" +
	"`/settings role set|clear` — role pinged on milestone alerts\n" +
	"`/settings timezone` — IANA zone for dates and day boundaries\n" +
	"`/settings health` — current configuration at a glance\n\n" +
	"**Misc**\n" +
	"`/summary refresh` — repost and re-pin the countdown board\n" +
	"`/summary test` — send a test reminder\n" +
	"`/linkserver` — manage this server's events from DMs\n" +
	"`/resendsetup` — resend the onboarding instructions"

func init() {
	sys.RegisterCommand(discord.SlashCommandCreate{
		Name:        "chronohelp",
		Description: "Show every Chromie command",
		Contexts: []discord.InteractionContextType{
			discord.InteractionContextTypeGuild,
			discord.InteractionContextTypeBotDM,
		},
	}, handleChronoHelp)
}

func handleChronoHelp(event *events.ApplicationCommandInteractionCreate) {
	respond(event, helpText, true)
}
