package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/feedback"
	"github.com/colonyops/feedback/pkg/iojson"
)

type DBCmd struct {
	flags *Flags
	app   *feedback.App

	json  bool
	steps int
}

// NewDBCmd creates a new db command.
func NewDBCmd(flags *Flags, app *feedback.App) *DBCmd {
	return &DBCmd{flags: flags, app: app}
}

// Register adds the db command to the application.
func (cmd *DBCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "db",
		Usage: "Inspect the session database schema",
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "Show applied schema migrations",
				UsageText: "feedback db status [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.json,
					},
				},
				Action: cmd.status,
			},
			{
				Name:  "rollback",
				Usage: "Revert the newest schema migrations",
				Description: `Reverts migrations and drops the tables they created. The next command
re-applies them on an empty schema, so rolled back data is lost.`,
				UsageText: "feedback db rollback [--steps n]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "steps",
						Usage:       "number of migrations to revert",
						Value:       1,
						Destination: &cmd.steps,
					},
				},
				Action: cmd.rollback,
			},
		},
	})

	return app
}

func (cmd *DBCmd) status(ctx context.Context, c *cli.Command) error {
	applied, err := cmd.app.DB.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.json {
		return iojson.WriteWith(out, c.Root().ErrWriter, applied)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
	for _, m := range applied {
		_, _ = fmt.Fprintf(tw, "%04d\t%s\t%s\n", m.Version, m.Name, relTime(m.AppliedAt, time.Now()))
	}
	return tw.Flush()
}

func (cmd *DBCmd) rollback(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.DB.Rollback(ctx, cmd.steps); err != nil {
		return err
	}

	version, err := cmd.app.DB.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "reverted %d migration(s), schema is at version %d\n", cmd.steps, version)
	return nil
}
