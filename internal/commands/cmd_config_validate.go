package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/core/styles"
	"github.com/colonyops/feedback/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "feedback config validate [options]",
				Description: "Validates the configuration values, the config file and the data directory.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type configProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)
	problems := configProblems(err)

	out := c.Root().Writer
	if cmd.format == "json" {
		return iojson.WriteWith(out, c.Root().ErrWriter, struct {
			Valid    bool            `json:"valid"`
			Problems []configProblem `json:"problems,omitempty"`
		}{Valid: err == nil, Problems: problems})
	}

	if err == nil {
		_, _ = fmt.Fprintln(out, styles.SuccessStyle.Render("Configuration is valid"))
		return nil
	}

	for _, p := range problems {
		_, _ = fmt.Fprintf(out, "%s %s: %s\n", styles.ErrorStyle.Render("error"), p.Field, p.Message)
	}
	return cli.Exit(fmt.Sprintf("%d error(s) found", len(problems)), 1)
}

func configProblems(err error) []configProblem {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []configProblem{{Field: "config", Message: err.Error()}}
	}

	problems := make([]configProblem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, configProblem{Field: fe.Field, Message: fe.Err.Error()})
	}
	return problems
}
