package home

import (
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/chromie/proc"
	"github.com/leeineian/chromie/sys"
)

// respond sends a ComponentsV2 container reply to an interaction
func respond(event *events.ApplicationCommandInteractionCreate, content string, ephemeral bool) {
	var displayContent string
	if !strings.HasPrefix(content, "#") && !strings.HasPrefix(content, ">") {
		displayContent = "> " + content
	} else {
		displayContent = content
	}

	_ = event.CreateMessage(discord.NewMessageCreateV2(
		discord.NewContainer(
			discord.NewTextDisplay(displayContent),
		),
	).WithEphemeral(ephemeral))
}

// respondErr maps an internal error to its user-facing line.
func respondErr(event *events.ApplicationCommandInteractionCreate, err error) {
	respond(event, sys.UserMessage(err), true)
}

// resolveGuild determines which guild a command targets: the current guild, or
// the caller's linked guild when invoked from DMs. The second return is false
// when the interaction has already been answered with an error.
func resolveGuild(event *events.ApplicationCommandInteractionCreate) (snowflake.ID, bool) {
	if gid := event.GuildID(); gid != nil {
		return *gid, true
	}

	linked, ok := sys.GlobalStore.LinkedGuild(event.User().ID)
	if !ok {
		respond(event, sys.ErrStoreNoLink, true)
		return 0, false
	}
	return linked, true
}

// guildLocation resolves the display timezone for a guild.
func guildLocation(guildID snowflake.ID) *time.Location {
	view, ok := sys.GlobalStore.View(guildID)
	if !ok {
		return sys.GlobalStore.Location("")
	}
	return sys.GlobalStore.Location(view.Timezone)
}

// refreshSummary rebuilds the pinned countdown board after a mutation. Runs
// detached so command replies stay snappy; failures only log.
func refreshSummary(guildID snowflake.ID) {
	notifier := sys.GlobalNotifier
	if notifier == nil {
		return
	}
	go func() {
		_ = proc.RebuildSummary(sys.AppContext, sys.GlobalStore, notifier, guildID, time.Now())
	}()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
