package commands

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/colonyops/feedback/internal/core/styles"
	"github.com/colonyops/feedback/internal/core/window"
)

// renderPhase colors a phase label for terminal output.
func renderPhase(p window.Phase) string {
	switch p {
	case window.PhaseOpen:
		return styles.SuccessStyle.Render(string(p))
	case window.PhaseGrace:
		return styles.WarningStyle.Render(string(p))
	case window.PhaseClosed, window.PhasePrivate:
		return styles.MutedStyle.Render(string(p))
	default:
		return string(p)
	}
}

// relTime renders t relative to now, or "-" for the zero time.
func relTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
