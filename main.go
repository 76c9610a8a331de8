package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/feedback/internal/commands"
	"github.com/colonyops/feedback/internal/core/config"
	"github.com/colonyops/feedback/internal/core/logging"
	"github.com/colonyops/feedback/internal/core/styles"
	"github.com/colonyops/feedback/internal/data/db"
	"github.com/colonyops/feedback/internal/data/stores"
	"github.com/colonyops/feedback/internal/feedback"
	"github.com/colonyops/feedback/internal/reminder"
	"github.com/colonyops/feedback/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() falls back to
	// runtime/debug.BuildInfo.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// openDatabase opens the database, moving a corrupt file aside and starting
// fresh when sqlite reports corruption.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database corrupt, moving it aside")
	backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
	if rerr != nil {
		return nil, fmt.Errorf("recover from corruption: %w (original error: %v)", rerr, err)
	}
	if backup != "" {
		log.Warn().Str("backup", backup).Msg("corrupt database saved")
	}
	return db.Open(cfg.DataDir, opts)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		feedbackApp = &feedback.App{}
		database    *db.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "feedback",
		Usage:     "Manage the time windows of course feedback sessions",
		UsageText: "feedback [global options] command [command options]",
		Description: `Feedback keeps track of course feedback sessions: when they open and close,
when students can see them, and when their results are published.

Run 'feedback import' to load session definitions and 'feedback remind' to
queue the reminder emails that are due.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("FEEDBACK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (empty for console output on stderr, - for JSON on stderr)",
				Sources:     cli.EnvVars("FEEDBACK_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("FEEDBACK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("FEEDBACK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Validation ensures the theme exists.
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			var (
				sessionStore   = stores.NewSessionStore(database)
				notifyStore    = stores.NewNotifyStore(database)
				responderStore = stores.NewResponderStore(database)
			)

			scheduler := reminder.NewScheduler(
				sessionStore,
				notifyStore,
				reminder.NewOutboxSender(notifyStore),
				reminder.Options{
					ClosingHours: cfg.Reminders.ClosingHours,
					Tracks:       cfg.Tracks,
				},
			)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*feedbackApp = *feedback.NewApp(
				feedback.NewSessionService(sessionStore, notifyStore, responderStore),
				scheduler,
				cfg,
				database,
			)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewImportCmd(flags, feedbackApp).Register(app)
	app = commands.NewValidateCmd(flags).Register(app)
	app = commands.NewLsCmd(flags, feedbackApp).Register(app)
	app = commands.NewStatusCmd(flags, feedbackApp).Register(app)
	app = commands.NewPublishCmd(flags, feedbackApp).Register(app)
	app = commands.NewRespondCmd(flags, feedbackApp).Register(app)
	app = commands.NewRemindCmd(flags, feedbackApp).Register(app)
	app = commands.NewRmCmd(flags, feedbackApp).Register(app)
	app = commands.NewDBCmd(flags, feedbackApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
