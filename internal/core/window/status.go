package window

import "time"

// Phase is a coarse summary of where a session sits in its window.
type Phase string

const (
	PhasePrivate  Phase = "private"
	PhaseAwaiting Phase = "awaiting"
	PhaseOpen     Phase = "open"
	PhaseGrace    Phase = "grace"
	PhaseClosed   Phase = "closed"
)

// Status is a snapshot of every predicate at one instant.
type Status struct {
	Now               time.Time `json:"now"`
	Phase             Phase     `json:"phase"`
	Open              bool      `json:"open"`
	Closed            bool      `json:"closed"`
	InGracePeriod     bool      `json:"in_grace_period"`
	WaitingToOpen     bool      `json:"waiting_to_open"`
	Visible           bool      `json:"visible"`
	Published         bool      `json:"published"`
	ManuallyPublished bool      `json:"manually_published"`
	Private           bool      `json:"private"`
}

// Evaluate answers every predicate for the session-local instant now.
func (w Window) Evaluate(now time.Time) Status {
	return Status{
		Now:               now,
		Phase:             w.phase(now),
		Open:              w.IsOpen(now),
		Closed:            w.IsClosed(now),
		InGracePeriod:     w.IsInGracePeriod(now),
		WaitingToOpen:     w.IsWaitingToOpen(now),
		Visible:           w.IsVisible(now),
		Published:         w.IsPublished(now),
		ManuallyPublished: w.IsManuallyPublished(),
		Private:           w.IsPrivate(),
	}
}

// phase folds the boundary instants (now == Start, End or GracedEnd) into the
// neighbouring phase so every instant has exactly one.
func (w Window) phase(now time.Time) Phase {
	switch {
	case w.IsPrivate():
		return PhasePrivate
	case w.IsClosed(now):
		return PhaseClosed
	case now.After(w.End):
		return PhaseGrace
	case w.IsWaitingToOpen(now):
		return PhaseAwaiting
	default:
		return PhaseOpen
	}
}
