package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/pkg/retrylimit"
)

const maxMessageLength = 2000

// Transport sends messages through a discordgo session. Calls go through an adaptive
// limiter and are retried on rate limits and server errors.
type Transport struct {
	s     *discordgo.Session
	lim   *retrylimit.AdaptiveLimiter
	retry retrylimit.RetryConfig
}

func NewTransport(s *discordgo.Session, lim *retrylimit.AdaptiveLimiter, log zerolog.Logger) *Transport {
	cfg := retrylimit.DefaultRetryConfig()
	cfg.Status = restStatus
	cfg.Log = log
	return &Transport{s: s, lim: lim, retry: cfg}
}

// restStatus reads the HTTP status of a failed REST call.
func restStatus(err error) (int, bool) {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode, true
	}
	return retrylimit.HTTPStatus(err)
}

// newMessage builds an outgoing message that can only ping individual users. Text that
// came from a user, such as echo arguments, cannot reach @everyone or roles.
func newMessage(content string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: truncate(content, maxMessageLength),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}
}

func replyMessage(ev *command.Event, content string) *discordgo.MessageSend {
	msg := newMessage(content)
	if ev.ID != "" {
		msg.Reference = &discordgo.MessageReference{
			MessageID: ev.ID,
			ChannelID: ev.ChannelID,
			GuildID:   ev.GuildID,
		}
	}
	return msg
}

func (t *Transport) Reply(ctx context.Context, ev *command.Event, content string) error {
	return t.send(ctx, ev.ChannelID, replyMessage(ev, content))
}

func (t *Transport) Send(ctx context.Context, channelID, content string) error {
	return t.send(ctx, channelID, newMessage(content))
}

func (t *Transport) SendView(ctx context.Context, ev *command.Event, view *command.View) error {
	embeds, components := renderView(view)
	msg := newMessage("")
	msg.Embeds, msg.Components = embeds, components
	return t.send(ctx, ev.ChannelID, msg)
}

// UpdateView replaces the message an interaction came from with view.
func (t *Transport) UpdateView(ctx context.Context, i *discordgo.Interaction, view *command.View) error {
	embeds, components := renderView(view)
	return retrylimit.Do(ctx, t.lim, t.retry, func() error {
		return t.s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     embeds,
				Components: components,
			},
		}, discordgo.WithContext(ctx))
	})
}

func (t *Transport) send(ctx context.Context, channelID string, msg *discordgo.MessageSend) error {
	return retrylimit.Do(ctx, t.lim, t.retry, func() error {
		_, err := t.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
		return err
	})
}
