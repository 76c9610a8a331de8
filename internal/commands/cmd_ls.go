package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/session"
	"github.com/colonyops/feedback/internal/core/window"
	"github.com/colonyops/feedback/internal/feedback"
	"github.com/colonyops/feedback/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *feedback.App

	// flags
	jsonOutput bool
	course     string
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *feedback.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List feedback sessions",
		UsageText: "feedback ls [--course ID] [--json]",
		Description: `Displays a table of sessions, newest first, with the phase each one is in
right now (awaiting, open, grace, closed or private).

Use --json for one JSON object per line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.StringFlag{
				Name:        "course",
				Usage:       "only list sessions of this course",
				Destination: &cmd.course,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	sessions, err := cmd.app.Sessions.List(ctx, cmd.course)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	if cmd.course == "" && cmd.app.Config != nil {
		tracked := sessions[:0]
		for _, s := range sessions {
			if cmd.app.Config.Tracks(s.CourseID) {
				tracked = append(tracked, s)
			}
		}
		sessions = tracked
	}

	if len(sessions) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No sessions found\n")
		}
		return nil
	}

	out := c.Root().Writer
	utcNow := time.Now().UTC()

	if cmd.jsonOutput {
		for _, s := range sessions {
			if err := iojson.WriteLine(out, newSessionInfo(s, utcNow)); err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COURSE\tNAME\tPHASE\tSTARTS\tENDS\tCREATED")
	for _, s := range sessions {
		now := s.Window.LocalNow(utcNow)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.CourseID,
			s.Name,
			renderPhase(s.Window.Evaluate(now).Phase),
			relTime(s.Window.Start, now),
			relTime(s.Window.End, now),
			relTime(s.CreatedAt, utcNow),
		)
	}

	return w.Flush()
}

// sessionInfo is the JSON output format for feedback ls --json.
type sessionInfo struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Course    string       `json:"course"`
	Creator   string       `json:"creator"`
	Phase     window.Phase `json:"phase"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Published bool         `json:"published"`
}

func newSessionInfo(s session.Session, utcNow time.Time) sessionInfo {
	st := s.Window.Evaluate(s.Window.LocalNow(utcNow))
	return sessionInfo{
		ID:        s.ID(),
		Name:      s.Name,
		Course:    s.CourseID,
		Creator:   s.CreatorEmail,
		Phase:     st.Phase,
		Start:     s.Window.Start,
		End:       s.Window.End,
		Published: st.Published,
	}
}
