package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/styles"
	"github.com/colonyops/feedback/internal/feedback"
	"github.com/colonyops/feedback/pkg/iojson"
)

type StatusCmd struct {
	flags *Flags
	app   *feedback.App

	jsonOutput bool
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags, app *feedback.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show where a session is in its window",
		UsageText: "feedback status <name/course> [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: SessionCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one session, got %d", c.Args().Len())
	}

	out := c.Root().Writer
	id := SessionID(c.Args().First())

	st, err := cmd.app.Sessions.Status(ctx, id, time.Now().UTC())
	if err != nil {
		if cmd.jsonOutput {
			_ = iojson.WriteError(out, err.Error(), map[string]any{"session_id": id})
		}
		return fmt.Errorf("session status: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, st)
	}

	ws := st.Window
	w := st.Session.Window

	_, _ = fmt.Fprintln(out, styles.HeaderStyle.Render(st.Session.Identification()))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "phase\t%s\n", renderPhase(ws.Phase))
	_, _ = fmt.Fprintf(tw, "local time\t%s\n", ws.Now.Format(time.DateTime))
	_, _ = fmt.Fprintf(tw, "start\t%s (%s)\n", formatTime(w.Start), relTime(w.Start, ws.Now))
	_, _ = fmt.Fprintf(tw, "end\t%s (%s)\n", formatTime(w.End), relTime(w.End, ws.Now))
	_, _ = fmt.Fprintf(tw, "grace period\t%d min\n", w.GracePeriod)
	_, _ = fmt.Fprintf(tw, "visible\t%s (%s)\n", yesNo(ws.Visible), w.Visibility)
	_, _ = fmt.Fprintf(tw, "published\t%s (%s)\n", yesNo(ws.Published), w.Publish)
	_, _ = fmt.Fprintf(tw, "responses\t%d students, %d instructors\n", st.Responders.Students, st.Responders.Instructors)
	_, _ = fmt.Fprintf(tw, "reminders\topening=%s closing=%s published=%s\n",
		yesNo(st.Notify.OpeningEnabled), yesNo(st.Notify.ClosingEnabled), yesNo(st.Notify.PublishedEnabled))

	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateTime)
}
