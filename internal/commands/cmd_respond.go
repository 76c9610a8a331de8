package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/responders"
	"github.com/colonyops/feedback/internal/feedback"
)

type RespondCmd struct {
	flags *Flags
	app   *feedback.App

	email string
	role  string
}

// NewRespondCmd creates a new respond command.
func NewRespondCmd(flags *Flags, app *feedback.App) *RespondCmd {
	return &RespondCmd{flags: flags, app: app}
}

// Register adds the respond command to the application.
func (cmd *RespondCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "respond",
		Usage:     "Record that a user submitted a response",
		UsageText: "feedback respond <name/course> --email EMAIL [--role student|instructor]",
		Description: `Adds the user to the responder set of the session. Responses are only
accepted while the session is open or within its grace period.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Usage:       "email of the responding user",
				Required:    true,
				Destination: &cmd.email,
			},
			&cli.StringFlag{
				Name:        "role",
				Usage:       "role of the responding user (student, instructor)",
				Value:       string(responders.RoleStudent),
				Destination: &cmd.role,
			},
		},
		ShellComplete: SessionCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *RespondCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one session, got %d", c.Args().Len())
	}

	role, err := responders.ParseRole(cmd.role)
	if err != nil {
		return err
	}

	id := SessionID(c.Args().First())
	err = cmd.app.Sessions.Respond(ctx, id, role, cmd.email, time.Now().UTC())
	if errors.Is(err, feedback.ErrNotAcceptingResponses) {
		return fmt.Errorf("%w; run 'feedback status %s' to see its window", err, c.Args().First())
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "recorded %s response from %s\n", role, cmd.email)
	return nil
}
