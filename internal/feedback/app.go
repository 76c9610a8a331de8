// Package feedback wires the session, notification and responder stores into
// the workflows the CLI exposes.
package feedback

import (
	"github.com/colonyops/feedback/internal/core/config"
	"github.com/colonyops/feedback/internal/data/db"
	"github.com/colonyops/feedback/internal/reminder"
)

// App is the central entry point for all feedback operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Sessions  *SessionService
	Reminders *reminder.Scheduler

	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(sessions *SessionService, scheduler *reminder.Scheduler, cfg *config.Config, database *db.DB) *App {
	return &App{
		Sessions:  sessions,
		Reminders: scheduler,
		Config:    cfg,
		DB:        database,
	}
}
