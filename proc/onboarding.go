package proc

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/leeineian/chromie/sys"
)

const welcomeMessage = "👋 **Thanks for adding Chromie!**\n\n" +
	"Chromie keeps a pinned countdown board for your server's events and " +
	"sends milestone reminders as they approach.\n\n" +
	"**Getting started:**\n" +
	"1. In the channel you want countdowns in, run `/settings channel set`.\n" +
	"2. Set your timezone with `/settings timezone` (IANA name, e.g. `America/Chicago`).\n" +
	"3. Add your first event: `/event add name: date: time:` (MM/DD/YYYY and 24-hour HH:MM).\n\n" +
	"Optional:\n" +
	"- `/settings role set` to ping a role on milestone alerts.\n" +
	"- `/repeat set` for recurring check-in reminders.\n" +
	"- `/linkserver` so you can manage events from DMs.\n\n" +
	"Run `/chronohelp` anytime for the full command list."

func init() {
	sys.RegisterGuildJoinHandler(handleGuildJoin)
}

func handleGuildJoin(event *events.GuildJoin) {
	store := sys.GlobalStore
	guildID := event.Guild.ID

	if view, ok := store.View(guildID); ok && view.Welcomed {
		return
	}

	DeliverWelcome(sys.AppContext, event.Client(), guildID, event.Guild.OwnerID, event.Guild.SystemChannelID)

	// Welcomed is recorded even when every delivery path failed, so a guild is
	// never spammed with repeated setup messages across reconnects.
	if err := store.SetWelcomed(guildID, true); err != nil {
		sys.LogOnboard(sys.MsgStoreSaveFail, err)
	}
}

// DeliverWelcome tries to DM the guild owner with setup instructions, falling
// back to the guild's system channel.
func DeliverWelcome(ctx context.Context, client *bot.Client, guildID, ownerID snowflake.ID, systemChannelID *snowflake.ID) {
	if ctx == nil {
		ctx = context.Background()
	}

	dmErr := dmOwner(ctx, client, ownerID)
	if dmErr == nil {
		sys.LogOnboard(sys.MsgOnboardWelcomed, guildID)
		return
	}
	sys.LogOnboard(sys.MsgOnboardDMFail, guildID, dmErr)

	if systemChannelID == nil {
		return
	}
	_, err := client.Rest.CreateMessage(*systemChannelID, discord.NewMessageCreate().WithContent(welcomeMessage), rest.WithCtx(ctx))
	if err != nil {
		sys.LogOnboard(sys.MsgOnboardFallbackFail, guildID, err)
		return
	}
	sys.LogOnboard(sys.MsgOnboardWelcomed, guildID)
}

func dmOwner(ctx context.Context, client *bot.Client, ownerID snowflake.ID) error {
	ch, err := client.Rest.CreateDMChannel(ownerID, rest.WithCtx(ctx))
	if err != nil {
		return err
	}
	_, err = client.Rest.CreateMessage(ch.ID(), discord.NewMessageCreate().WithContent(welcomeMessage), rest.WithCtx(ctx))
	return err
}

// ResendSetup re-delivers the onboarding message on demand.
func ResendSetup(ctx context.Context, client *bot.Client, guildID snowflake.ID) error {
	guild, err := client.Rest.GetGuild(guildID, false, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch guild: %w", err)
	}

	DeliverWelcome(ctx, client, guildID, guild.OwnerID, guild.SystemChannelID)
	return sys.GlobalStore.SetWelcomed(guildID, true)
}
