package sys

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"
)

// Notifier is the delivery boundary. The sweep and the summary rebuilder
// decide what to send and when; a Notifier performs the send and reports
// failure without owning any caller state.
type Notifier interface {
	SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error)
	EditMessage(ctx context.Context, channelID, messageID snowflake.ID, content string) error
	PinMessage(ctx context.Context, channelID, messageID snowflake.ID) error
	UnpinMessage(ctx context.Context, channelID, messageID snowflake.ID) error
}

// GlobalNotifier is the process-wide delivery handle, set once the gateway
// client exists. Command handlers reach it through here; the sweep receives
// its notifier explicitly.
var GlobalNotifier Notifier

func SetGlobalNotifier(n Notifier) {
	GlobalNotifier = n
}

// RestNotifier delivers through the disgo REST client. A shared limiter keeps
// sweep bursts under the REST rate budget.
type RestNotifier struct {
	client  *bot.Client
	limiter *rate.Limiter
}

func NewRestNotifier(client *bot.Client) *RestNotifier {
	return &RestNotifier{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(400*time.Millisecond), 5),
	}
}

func (n *RestNotifier) SendMessage(ctx context.Context, channelID snowflake.ID, content string) (snowflake.ID, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	msg, err := n.client.Rest.CreateMessage(channelID, containerMessage(content), rest.WithCtx(ctx))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (n *RestNotifier) EditMessage(ctx context.Context, channelID, messageID snowflake.ID, content string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := n.client.Rest.UpdateMessage(channelID, messageID, discord.NewMessageUpdateV2([]discord.LayoutComponent{
		discord.NewContainer(
			discord.NewTextDisplay(content),
		),
	}), rest.WithCtx(ctx))
	return err
}

func (n *RestNotifier) PinMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	return n.client.Rest.PinMessage(channelID, messageID, rest.WithCtx(ctx))
}

func (n *RestNotifier) UnpinMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	return n.client.Rest.UnpinMessage(channelID, messageID, rest.WithCtx(ctx))
}

func containerMessage(content string) discord.MessageCreate {
	return discord.NewMessageCreateV2(
		discord.NewContainer(
			discord.NewTextDisplay(content),
		),
	)
}

// IsMissing reports whether a delivery error means the target is gone or
// off-limits (NotFound/Forbidden). Callers treat these as non-fatal, e.g.
// when unpinning a summary message that was deleted by hand.
func IsMissing(err error) bool {
	var restErr *rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		return code == http.StatusNotFound || code == http.StatusForbidden
	}
	return false
}
