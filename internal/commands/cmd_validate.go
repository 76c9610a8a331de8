package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/session"
	"github.com/colonyops/feedback/internal/core/styles"
	"github.com/colonyops/feedback/pkg/iojson"
)

type ValidateCmd struct {
	flags  *Flags
	input  *iojson.FileReader[[]session.Session]
	format string
}

// NewValidateCmd creates a new validate command.
func NewValidateCmd(flags *Flags) *ValidateCmd {
	return &ValidateCmd{
		flags:  flags,
		input:  &iojson.FileReader[[]session.Session]{Decode: session.DecodeFile},
		format: "text",
	}
}

// Register adds the validate command to the application.
func (cmd *ValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "validate",
		Usage:     "Check session definitions without saving them",
		UsageText: "feedback validate [-f file] [--format text|json]",
		Description: `Reads session definitions from a file or stdin and prints, for every
invalid session, the problems found in the order they are checked.

Exits non-zero when any session is invalid.`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

type validationResult struct {
	Session  string   `json:"session"`
	Valid    bool     `json:"valid"`
	Messages []string `json:"messages,omitempty"`
}

func (cmd *ValidateCmd) run(_ context.Context, c *cli.Command) error {
	sessions, err := cmd.input.Read()
	if err != nil {
		return err
	}

	out := c.Root().Writer
	invalid := 0
	results := make([]validationResult, 0, len(sessions))

	for _, s := range sessions {
		msgs := s.Sanitized().InvalidityInfo()
		results = append(results, validationResult{
			Session:  s.Identification(),
			Valid:    len(msgs) == 0,
			Messages: msgs,
		})
		if len(msgs) > 0 {
			invalid++
		}
	}

	if cmd.format == "json" {
		for _, r := range results {
			if err := iojson.WriteLine(out, r); err != nil {
				return err
			}
		}
	} else {
		for i, r := range results {
			if r.Valid {
				_, _ = fmt.Fprintf(out, "%s %s\n", styles.SuccessStyle.Render("ok"), r.Session)
				continue
			}
			printInvalid(out, sessions[i], r.Messages)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d session(s) in %s are invalid", invalid, len(sessions), cmd.input.Source())
	}
	return nil
}

func printInvalid(w io.Writer, s session.Session, msgs []string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.ErrorStyle.Render("invalid"), s.Identification())
	for _, m := range msgs {
		_, _ = fmt.Fprintf(w, "  - %s\n", m)
	}
}
