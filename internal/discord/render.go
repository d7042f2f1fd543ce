package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandbot/internal/command"
)

const (
	EmbedColor = 0xb01e66

	maxSelectOptions  = 25
	maxOptionText     = 100
	maxEmbedFieldText = 1024
)

// renderView maps a help view to an embed plus a select menu.
func renderView(view *command.View) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title: view.Title,
		Color: EmbedColor,
	}

	switch view.Kind {
	case command.ViewDetailKind:
		d := view.Detail
		embed.Description = d.Description
		aliases := "-"
		if len(d.Aliases) > 0 {
			aliases = "`" + strings.Join(d.Aliases, "`, `") + "`"
		}
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: view.Labels.Usage, Value: "`" + d.Usage + "`"},
			{Name: view.Labels.Aliases, Value: aliases, Inline: true},
			{Name: view.Labels.Category, Value: d.Category, Inline: true},
		}
	default:
		embed.Description = view.Notice
		for _, section := range view.Sections {
			var sb strings.Builder
			for _, e := range section.Entries {
				sb.WriteString(fmt.Sprintf("`%s` - %s\n", e.Name, e.Description))
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  section.Category,
				Value: truncate(sb.String(), maxEmbedFieldText),
			})
		}
	}

	return []*discordgo.MessageEmbed{embed}, selectMenu(view)
}

// selectMenu builds the option list. Discord accepts at most 25 options, so later
// commands are cut; "all" always stays first.
func selectMenu(view *command.View) []discordgo.MessageComponent {
	if len(view.Options) == 0 {
		return nil
	}
	opts := view.Options
	if len(opts) > maxSelectOptions {
		opts = opts[:maxSelectOptions]
	}

	options := make([]discordgo.SelectMenuOption, 0, len(opts))
	for _, o := range opts {
		options = append(options, discordgo.SelectMenuOption{
			Label:       truncate(o.Label, maxOptionText),
			Value:       truncate(o.Value, maxOptionText),
			Description: truncate(o.Description, maxOptionText),
			Default:     o.Default,
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    view.MenuID,
					Placeholder: view.Labels.Placeholder,
					Options:     options,
				},
			},
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
