// Package reminder decides which notification emails are due for each
// feedback session and hands them to a Sender.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/feedback/internal/core/logging"
	"github.com/colonyops/feedback/internal/core/notify"
	"github.com/colonyops/feedback/internal/core/session"
)

// Result counts the reminders sent by one Run.
type Result struct {
	Checked   int `json:"checked"`
	Opening   int `json:"opening"`
	Closing   int `json:"closing"`
	Published int `json:"published"`
}

// Total is the number of reminders sent.
func (r Result) Total() int {
	return r.Opening + r.Closing + r.Published
}

// Options configures a Scheduler.
type Options struct {
	// ClosingHours is the threshold passed to IsClosingWithinHours.
	ClosingHours int
	// Tracks filters sessions by course. Nil tracks every course.
	Tracks func(courseID string) bool
}

// Scheduler walks every session and sends the reminders that are due.
type Scheduler struct {
	sessions session.Store
	notify   notify.Store
	sender   Sender
	opts     Options
	log      zerolog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(sessions session.Store, notifyStore notify.Store, sender Sender, opts Options) *Scheduler {
	if opts.ClosingHours <= 0 {
		opts.ClosingHours = 24
	}
	return &Scheduler{
		sessions: sessions,
		notify:   notifyStore,
		sender:   sender,
		opts:     opts,
		log:      logging.Component("reminder"),
	}
}

// Run checks every non-private session against utcNow. A failure on one
// session is logged and does not stop the others; all failures are returned
// joined.
func (s *Scheduler) Run(ctx context.Context, utcNow time.Time) (Result, error) {
	var res Result

	all, err := s.sessions.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list sessions: %w", err)
	}

	var errs []error
	for _, sess := range all {
		if sess.Window.IsPrivate() {
			continue
		}
		if s.opts.Tracks != nil && !s.opts.Tracks(sess.CourseID) {
			continue
		}

		res.Checked++
		sctx := logging.WithSession(ctx, sess.ID(), sess.CourseID)
		if err := s.check(sctx, sess, utcNow, &res); err != nil {
			s.log.Error().Ctx(sctx).Err(err).Msg("reminder check failed")
			errs = append(errs, fmt.Errorf("%s: %w", sess.Identification(), err))
		}
	}

	s.log.Debug().
		Int("checked", res.Checked).
		Int("sent", res.Total()).
		Msg("reminder run complete")

	return res, errors.Join(errs...)
}

// check sends the reminders due for sess. Flags set by a successful send are
// saved even when a later step fails, so one-time reminders stay one-time.
func (s *Scheduler) check(ctx context.Context, sess session.Session, utcNow time.Time, res *Result) (err error) {
	st, err := s.notify.GetState(ctx, sess.ID())
	if err != nil {
		return err
	}

	w := sess.Window
	now := w.LocalNow(utcNow)
	dirty := false
	defer func() {
		if !dirty {
			return
		}
		if serr := s.notify.SaveState(ctx, st); serr != nil {
			err = errors.Join(err, serr)
		}
	}()

	if st.Enabled(notify.KindOpening) && !st.SentOpen && w.IsOpen(now) {
		if err := s.sender.Send(ctx, sess, notify.KindOpening, utcNow); err != nil {
			return err
		}
		st.SentOpen = true
		dirty = true
		res.Opening++
	}

	if st.Enabled(notify.KindClosing) && w.IsClosingWithinHours(now, s.opts.ClosingHours) {
		sent, err := s.closingSentSince(ctx, sess.ID(), utcNow.Add(-time.Hour))
		if err != nil {
			return err
		}
		if !sent {
			if err := s.sender.Send(ctx, sess, notify.KindClosing, utcNow); err != nil {
				return err
			}
			res.Closing++
		}
	}

	published := w.IsPublished(now)
	switch {
	case published && !st.SentPublished && st.Enabled(notify.KindPublished):
		if err := s.sender.Send(ctx, sess, notify.KindPublished, utcNow); err != nil {
			return err
		}
		st.SentPublished = true
		dirty = true
		res.Published++
	case !published && st.SentPublished:
		// unpublished since the last email; allow it to go out again
		st.SentPublished = false
		dirty = true
	}

	return nil
}

// closingSentSince reports whether a closing reminder was already queued for
// the session at or after since. It keeps sub-hourly run intervals from
// sending twice within one hour bucket.
func (s *Scheduler) closingSentSince(ctx context.Context, sessionID string, since time.Time) (bool, error) {
	reminders, err := s.notify.ListReminders(ctx, sessionID)
	if err != nil {
		return false, err
	}
	for _, r := range reminders {
		if r.Kind == notify.KindClosing && !r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
