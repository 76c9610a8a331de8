package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/session"
	"github.com/colonyops/feedback/internal/feedback"
)

type ImportCmd struct {
	flags *Flags
	app   *feedback.App

	dryRun bool
}

// NewImportCmd creates a new import command.
func NewImportCmd(flags *Flags, app *feedback.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application.
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Create or update sessions from YAML files",
		UsageText: "feedback import [--dry-run] <glob>...",
		Description: `Loads every file matching the given patterns (doublestar globs such as
"courses/**/*.yaml"), validates each session and saves it. Existing sessions
are updated; their creator and creation time are kept.

Invalid sessions are reported and skipped. The command fails if any session
could not be imported.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "validate without saving",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one file or glob is required")
	}

	files, err := expandGlobs(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no files matched")
	}

	out := c.Root().Writer
	var created, updated, failed int

	for _, file := range files {
		sessions, err := readSessionFile(file)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("read session file")
			_, _ = fmt.Fprintf(out, "%s: %v\n", file, err)
			failed++
			continue
		}

		for _, s := range sessions {
			var (
				isNew bool
				err   error
			)
			if cmd.dryRun {
				err = cmd.app.Sessions.Check(s)
			} else {
				_, isNew, err = cmd.app.Sessions.Save(ctx, s)
			}

			var verr *feedback.ValidationError
			switch {
			case cmd.dryRun && err == nil:
				continue
			case errors.As(err, &verr):
				printInvalid(out, s, verr.Messages)
				failed++
			case err != nil:
				_, _ = fmt.Fprintf(out, "%s: %v\n", s.Identification(), err)
				failed++
			case isNew:
				created++
			default:
				updated++
			}
		}
	}

	_, _ = fmt.Fprintf(out, "%d created, %d updated, %d failed\n", created, updated, failed)
	if failed > 0 {
		return fmt.Errorf("%d session(s) could not be imported", failed)
	}
	return nil
}

// expandGlobs resolves each pattern with doublestar, keeping the first
// occurrence of every file.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

func readSessionFile(path string) ([]session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return session.DecodeFile(f)
}
