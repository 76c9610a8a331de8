package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/feedback"
)

type RmCmd struct {
	flags *Flags
	app   *feedback.App
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags, app *feedback.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "rm",
		Usage:         "Delete sessions with their responders and reminders",
		UsageText:     "feedback rm <name/course>...",
		ShellComplete: SessionCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one session is required")
	}

	var errs []error
	for _, arg := range c.Args().Slice() {
		if err := cmd.app.Sessions.Delete(ctx, SessionID(arg)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", arg, err))
			continue
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "deleted %s\n", arg)
	}

	return errors.Join(errs...)
}
