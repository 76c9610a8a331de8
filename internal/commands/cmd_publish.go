package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/session"
	"github.com/colonyops/feedback/internal/feedback"
)

type PublishCmd struct {
	flags *Flags
	app   *feedback.App
}

// NewPublishCmd creates the publish and unpublish commands.
func NewPublishCmd(flags *Flags, app *feedback.App) *PublishCmd {
	return &PublishCmd{flags: flags, app: app}
}

// Register adds the publish and unpublish commands to the application.
func (cmd *PublishCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:          "publish",
			Usage:         "Make the results of a manually published session visible",
			UsageText:     "feedback publish <name/course>",
			ShellComplete: SessionCompleter(cmd.app),
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.run(ctx, c, "published", cmd.app.Sessions.Publish)
			},
		},
		&cli.Command{
			Name:          "unpublish",
			Usage:         "Hide the results of a manually published session",
			UsageText:     "feedback unpublish <name/course>",
			ShellComplete: SessionCompleter(cmd.app),
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.run(ctx, c, "unpublished", cmd.app.Sessions.Unpublish)
			},
		},
	)

	return app
}

func (cmd *PublishCmd) run(
	ctx context.Context,
	c *cli.Command,
	verb string,
	fn func(context.Context, string) (session.Session, error),
) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one session, got %d", c.Args().Len())
	}

	sess, err := fn(ctx, SessionID(c.Args().First()))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s %s\n", verb, sess.Identification())
	return nil
}
