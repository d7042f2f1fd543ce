package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/commandbot/internal/command"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md\n"
	codeRightBlockWrapper   = "```"
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper)

// historyHandler lists the guild's recent commands, newest first, trimmed to one message.
func historyHandler(d *Deps) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		records, err := d.History.FetchCommandHistory(inv.Event.GuildID)
		if err != nil {
			return fmt.Errorf("fetch command history: %w", err)
		}
		if len(records) == 0 {
			return inv.Reply(ctx, inv.T("commands.history.empty"))
		}

		var builder strings.Builder
		builder.WriteString(fmt.Sprintf("%-19s\t%-15s\t%s\n", "# Datetime", "# Username", "# Command"))

		for idx := len(records) - 1; idx >= 0; idx-- {
			rec := records[idx]
			line := strings.TrimSpace(inv.Prefix + rec.Command + " " + rec.Param)
			entry := fmt.Sprintf("%-19s\t%-15s\t%s\n",
				rec.Datetime.Format("2006-01-02 15:04:05"),
				rec.Username,
				line,
			)
			if builder.Len()+len(entry) > maxContentLength {
				break
			}
			builder.WriteString(entry)
		}

		return inv.Send(ctx, inv.T("commands.history.title")+"\n"+codeLeftBlockWrapper+builder.String()+codeRightBlockWrapper)
	}
}
