package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/feedback"
)

// SessionCompleter suggests the identifications of tracked sessions that are
// not already on the command line. A trailing flag argument falls back to
// flag completion.
func SessionCompleter(app *feedback.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		given := map[string]bool{}
		for _, a := range cmd.Args().Slice() {
			if strings.HasPrefix(a, "-") {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
			given[SessionID(a)] = true
		}

		if app.Sessions == nil {
			return
		}
		sessions, err := app.Sessions.List(ctx, "")
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, s := range sessions {
			if given[s.ID()] || (app.Config != nil && !app.Config.Tracks(s.CourseID)) {
				continue
			}
			_, _ = fmt.Fprintln(w, s.Identification())
		}
	}
}
