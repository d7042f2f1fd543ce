package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/menu"
)

// messageEvent converts a gateway message. Nil when the message has no author.
func messageEvent(m *discordgo.MessageCreate) *command.Event {
	if m == nil || m.Message == nil || m.Author == nil {
		return nil
	}
	return &command.Event{
		ID:         m.ID,
		Content:    m.Content,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Bot:        m.Author.Bot,
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		Raw:        m,
	}
}

// interactionEvent converts a component interaction. Guild interactions carry the
// user on the member, direct-message ones on the interaction itself.
func interactionEvent(i *discordgo.InteractionCreate) *command.Event {
	ev := &command.Event{
		ChannelID: i.ChannelID,
		GuildID:   i.GuildID,
		Raw:       i,
	}
	if i.Message != nil {
		ev.ID = i.Message.ID
	}
	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user != nil {
		ev.AuthorID = user.ID
		ev.AuthorName = user.Username
		ev.Bot = user.Bot
	}
	return ev
}

func selectedValue(data discordgo.MessageComponentInteractionData) string {
	if len(data.Values) == 0 {
		return menu.ValueAll
	}
	return data.Values[0]
}
