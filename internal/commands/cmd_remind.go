package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/notify"
	"github.com/colonyops/feedback/internal/feedback"
	"github.com/colonyops/feedback/internal/reminder"
	"github.com/colonyops/feedback/pkg/iojson"
)

type RemindCmd struct {
	flags *Flags
	app   *feedback.App

	watch      bool
	jsonOutput bool
}

// NewRemindCmd creates a new remind command.
func NewRemindCmd(flags *Flags, app *feedback.App) *RemindCmd {
	return &RemindCmd{flags: flags, app: app}
}

// Register adds the remind command and its subcommands to the application.
func (cmd *RemindCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "remind",
		Usage:     "Queue the reminder emails that are due",
		UsageText: "feedback remind [--watch] [--json]",
		Description: `Checks every tracked session and queues opening, closing and published
reminders. Each opening and published reminder is queued once; the closing
reminder goes out when the configured number of hours remain.

With --watch the check repeats every reminders.interval until interrupted.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "watch",
				Usage:       "keep running and check on every interval",
				Destination: &cmd.watch,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the run result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List queued reminders",
				UsageText: "feedback remind ls [name/course]",
				Action:    cmd.runList,
			},
			{
				Name:          "enable",
				Usage:         "Enable a reminder kind for a session",
				UsageText:     "feedback remind enable <name/course> <opening|closing|published>",
				ShellComplete: SessionCompleter(cmd.app),
				Action: func(ctx context.Context, c *cli.Command) error {
					return cmd.runToggle(ctx, c, true)
				},
			},
			{
				Name:          "disable",
				Usage:         "Disable a reminder kind for a session",
				UsageText:     "feedback remind disable <name/course> <opening|closing|published>",
				ShellComplete: SessionCompleter(cmd.app),
				Action: func(ctx context.Context, c *cli.Command) error {
					return cmd.runToggle(ctx, c, false)
				},
			},
		},
	})

	return app
}

func (cmd *RemindCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		interval := cmd.app.Config.Reminders.Interval
		log.Info().Dur("interval", interval).Msg("watching for due reminders")
		reminder.Start(ctx, cmd.app.Reminders, interval, time.Now)
		return nil
	}

	res, err := cmd.app.Reminders.Run(ctx, time.Now().UTC())

	out := c.Root().Writer
	if cmd.jsonOutput {
		if werr := iojson.WriteLine(out, res); werr != nil {
			return werr
		}
	} else {
		_, _ = fmt.Fprintf(out, "checked %d session(s): %d opening, %d closing, %d published\n",
			res.Checked, res.Opening, res.Closing, res.Published)
	}

	return err
}

func (cmd *RemindCmd) runList(ctx context.Context, c *cli.Command) error {
	id := ""
	if c.Args().Present() {
		id = SessionID(c.Args().First())
	}

	reminders, err := cmd.app.Sessions.Reminders(ctx, id)
	if err != nil {
		return err
	}

	utcNow := time.Now().UTC()
	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tQUEUED\tMESSAGE")
	for _, r := range reminders {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Kind, relTime(r.CreatedAt, utcNow), r.Message)
	}
	return w.Flush()
}

func (cmd *RemindCmd) runToggle(ctx context.Context, c *cli.Command, enabled bool) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected a session and a reminder kind, got %d argument(s)", c.Args().Len())
	}

	kind := notify.Kind(c.Args().Get(1))
	if err := cmd.app.Sessions.SetReminder(ctx, SessionID(c.Args().First()), kind, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "%s reminders %s for %s\n", kind, state, c.Args().First())
	return nil
}
