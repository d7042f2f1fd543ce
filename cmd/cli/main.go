// cmd/cli/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/keshon/commandbot/internal/app"
	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/commands"
	"github.com/keshon/commandbot/internal/config"
	"github.com/keshon/commandbot/internal/console"
	"github.com/keshon/commandbot/internal/docs"
	"github.com/keshon/commandbot/internal/lang"
	"github.com/keshon/commandbot/internal/logging"
	"github.com/keshon/commandbot/internal/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdin, os.Stdout).Run(ctx, os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "commandbot: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(in io.Reader, out io.Writer) *cli.Command {
	dirFlag := &cli.StringFlag{Name: "dir", Usage: "read command definitions from `DIR` instead of the built-in set"}

	return &cli.Command{
		Name:      "commandbot",
		Usage:     "run and inspect the command bot locally",
		Version:   config.AppVersion,
		Writer:    out,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:  "console",
				Usage: "dispatch commands typed on stdin",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "admin", Usage: "act as an administrator"},
					&cli.BoolFlag{Name: "nsfw", Usage: "pretend the channel is age-restricted"},
					&cli.BoolFlag{Name: "dm", Usage: "send every line as a direct message"},
					&cli.StringFlag{Name: "guild", Value: "console", Usage: "guild `ID` settings and history are stored under"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runConsole(ctx, cmd, in, out)
				},
			},
			{
				Name:  "list",
				Usage: "print the registered commands by category",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					reg, _, err := loadRegistry(cmd.String("dir"))
					if err != nil {
						return err
					}
					texts, err := lang.Default()
					if err != nil {
						return err
					}
					printRegistry(out, reg, texts)
					return nil
				},
			},
			{
				Name:  "check",
				Usage: "validate command definitions and exit non-zero when any is broken",
				Flags: []cli.Flag{dirFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					reg, skipped, err := loadRegistry(cmd.String("dir"))
					if err != nil {
						return err
					}
					if skipped != nil {
						fmt.Fprintln(out, skipped)
						return cli.Exit(fmt.Sprintf("%d commands loaded, some definitions are broken", reg.Len()), 2)
					}
					fmt.Fprintf(out, "%d commands loaded\n", reg.Len())
					return nil
				},
			},
			{
				Name:  "docs",
				Usage: "render a Markdown command reference",
				Flags: []cli.Flag{
					dirFlag,
					&cli.StringFlag{Name: "template", Usage: "text/template `FILE` with a {{ .CommandSections }} placeholder"},
					&cli.StringFlag{Name: "out", Usage: "write to `FILE` instead of stdout"},
					&cli.StringFlag{Name: "locale", Value: lang.BaseLocale, Usage: "locale descriptions are rendered in"},
					&cli.StringFlag{Name: "prefix", Value: "!", Usage: "prefix shown in usage lines"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runDocs(cmd, out)
				},
			},
		},
	}
}

func runDocs(cmd *cli.Command, out io.Writer) error {
	reg, skipped, err := loadRegistry(cmd.String("dir"))
	if err != nil {
		return err
	}
	if skipped != nil {
		return cli.Exit(skipped.Error(), 2)
	}
	texts, err := lang.Default()
	if err != nil {
		return err
	}

	opts := docs.Options{
		AppName: config.AppName,
		Prefix:  cmd.String("prefix"),
		Locale:  cmd.String("locale"),
	}
	if path := cmd.String("template"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		opts.Template = string(data)
	}

	path := cmd.String("out")
	if path == "" {
		return docs.Render(out, reg, texts, opts)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := docs.Render(f, reg, texts, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s updated with %d commands\n", path, reg.Len())
	return nil
}

func runConsole(ctx context.Context, cmd *cli.Command, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.LoadErr != nil {
		log.Warn().Err(a.LoadErr).Msg("some commands were not loaded")
	}

	id := console.Identity{GuildID: cmd.String("guild")}
	if cmd.Bool("dm") {
		id.GuildID = ""
	}
	c := console.New(out, id)
	preds := console.Predicates{Admin: cmd.Bool("admin"), NSFW: cmd.Bool("nsfw")}

	go func() {
		if err := a.Watch(ctx); err != nil {
			log.Error().Err(err).Msg("definition watcher stopped")
		}
	}()

	fmt.Fprintf(out, "%s %s console, prefix %q. Type quit to leave.\n", config.AppName, config.AppVersion, cfg.Prefix)
	return c.Run(ctx, in, a.Pipeline(c, preds))
}

// loadRegistry builds a registry from definitions without storage or transport.
// skipped joins the definitions that could not be registered.
func loadRegistry(dir string) (reg *command.Registry, skipped, err error) {
	var fsys fs.FS = commands.Definitions()
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	src, err := source.New(fsys, commands.Table(&commands.Deps{}), zerolog.Nop())
	if err != nil {
		return nil, nil, err
	}
	reg = command.NewRegistry()
	_, skipped = src.LoadAll(reg)
	return reg, skipped, nil
}

func printRegistry(out io.Writer, reg *command.Registry, texts *lang.Bundle) {
	for category, cmds := range reg.ListByCategory() {
		fmt.Fprintf(out, "[%s]\n", category)
		for _, c := range cmds {
			line := fmt.Sprintf("  %-10s %s", c.Name, texts.Text(lang.BaseLocale, c.Description))
			if len(c.Aliases) > 0 {
				line += " (" + strings.Join(c.Aliases, ", ") + ")"
			}
			fmt.Fprintln(out, line)
		}
	}
}
