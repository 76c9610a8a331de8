package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/feedback/internal/core/logging"
	"github.com/colonyops/feedback/internal/core/notify"
	"github.com/colonyops/feedback/internal/core/responders"
	"github.com/colonyops/feedback/internal/core/session"
	"github.com/colonyops/feedback/internal/core/validate"
	"github.com/colonyops/feedback/internal/core/window"
)

// SessionService orchestrates feedback session operations.
type SessionService struct {
	sessions   session.Store
	notify     notify.Store
	responders responders.Store
	log        zerolog.Logger
	now        func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions session.Store, notifyStore notify.Store, responderStore responders.Store) *SessionService {
	return &SessionService{
		sessions:   sessions,
		notify:     notifyStore,
		responders: responderStore,
		log:        logging.Component("sessions"),
		now:        time.Now,
	}
}

// Status is the evaluated state of one session.
type Status struct {
	Session    session.Session   `json:"session"`
	Window     window.Status     `json:"window"`
	Responders responders.Counts `json:"responders"`
	Notify     notify.State      `json:"-"`
}

// Get returns a session by ID.
func (s *SessionService) Get(ctx context.Context, id string) (session.Session, error) {
	return s.sessions.Get(ctx, id)
}

// List returns the sessions of courseID, or every session when courseID is
// empty, newest first.
func (s *SessionService) List(ctx context.Context, courseID string) ([]session.Session, error) {
	var (
		all []session.Session
		err error
	)
	if courseID == "" {
		all, err = s.sessions.List(ctx)
	} else {
		all, err = s.sessions.ListByCourse(ctx, courseID)
	}
	if err != nil {
		return nil, err
	}

	session.SortByCreationDesc(all)
	return all, nil
}

// Check prepares sess the way Create does and validates it without saving.
// It returns nil or a *ValidationError.
func (s *SessionService) Check(sess session.Session) error {
	_, err := s.prepareNew(sess)
	return err
}

// Create sanitizes and validates a new session, then saves it with default
// notification settings.
func (s *SessionService) Create(ctx context.Context, sess session.Session) (session.Session, error) {
	sess, err := s.prepareNew(sess)
	if err != nil {
		return session.Session{}, err
	}

	_, err = s.sessions.Get(ctx, sess.ID())
	switch {
	case err == nil:
		return session.Session{}, fmt.Errorf("%s: %w", sess.Identification(), ErrAlreadyExists)
	case !errors.Is(err, session.ErrNotFound):
		return session.Session{}, err
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return session.Session{}, err
	}
	if err := s.notify.SaveState(ctx, notify.DefaultState(sess.ID())); err != nil {
		return session.Session{}, err
	}

	s.log.Info().Ctx(logging.WithSession(ctx, sess.ID(), sess.CourseID)).Msg("session created")
	return sess, nil
}

// Update replaces the editable attributes of an existing session. The
// creator and creation time are kept from the stored copy. Moving the start
// into the future re-arms the opening reminder.
func (s *SessionService) Update(ctx context.Context, sess session.Session) (session.Session, error) {
	existing, err := s.sessions.Get(ctx, sess.ID())
	if err != nil {
		return session.Session{}, err
	}

	sess = s.prepare(sess)
	sess.CreatorEmail = existing.CreatorEmail
	sess.CreatedAt = existing.CreatedAt

	if err := sess.Validate(); err != nil {
		return session.Session{}, newValidationError(sess, err)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return session.Session{}, err
	}

	lctx := logging.WithSession(ctx, sess.ID(), sess.CourseID)
	if !sess.Window.Start.Equal(existing.Window.Start) &&
		sess.Window.IsWaitingToOpen(sess.Window.LocalNow(s.now())) {
		st, err := s.notify.GetState(ctx, sess.ID())
		if err != nil {
			return session.Session{}, err
		}
		if st.SentOpen {
			st.SentOpen = false
			if err := s.notify.SaveState(ctx, st); err != nil {
				return session.Session{}, err
			}
			s.log.Debug().Ctx(lctx).Msg("opening reminder re-armed")
		}
	}

	s.log.Info().Ctx(lctx).Msg("session updated")
	return sess, nil
}

// Save creates the session or updates it when it already exists. It reports
// whether a new session was created.
func (s *SessionService) Save(ctx context.Context, sess session.Session) (session.Session, bool, error) {
	_, err := s.sessions.Get(ctx, sess.ID())
	switch {
	case errors.Is(err, session.ErrNotFound):
		created, err := s.Create(ctx, sess)
		return created, true, err
	case err != nil:
		return session.Session{}, false, err
	}

	updated, err := s.Update(ctx, sess)
	return updated, false, err
}

// Delete removes a session with its notification state and responders. The
// session row goes last, so a failed cleanup leaves it in place for a retry
// and a recreated session never inherits old state.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}

	if err := s.notify.DeleteState(ctx, id); err != nil {
		return err
	}
	if err := s.responders.Clear(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// Publish makes the results of a manually published session visible.
func (s *SessionService) Publish(ctx context.Context, id string) (session.Session, error) {
	return s.setPublish(ctx, id, window.PublishNow)
}

// Unpublish hides the results of a manually published session again.
func (s *SessionService) Unpublish(ctx context.Context, id string) (session.Session, error) {
	return s.setPublish(ctx, id, window.PublishLater)
}

func (s *SessionService) setPublish(ctx context.Context, id string, p window.PublishPolicy) (session.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.Window.IsManuallyPublished() {
		return session.Session{}, fmt.Errorf("%s: %w", sess.Identification(), ErrNotManual)
	}

	w := sess.Window
	w.Publish = p
	sess = sess.WithWindow(w)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return session.Session{}, err
	}

	s.log.Info().
		Ctx(logging.WithSession(ctx, sess.ID(), sess.CourseID)).
		Str("publish", p.String()).
		Msg("results visibility changed")
	return sess, nil
}

// Respond records that email submitted a response. Responses are accepted
// while the session is open or in its grace period.
func (s *SessionService) Respond(ctx context.Context, id string, role responders.Role, email string, utcNow time.Time) error {
	if err := validate.EmailField("email", email); err != nil {
		return err
	}

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}

	w := sess.Window
	now := w.LocalNow(utcNow)
	if w.IsPrivate() || !(w.IsOpen(now) || w.IsInGracePeriod(now)) {
		return fmt.Errorf("%s: %w", sess.Identification(), ErrNotAcceptingResponses)
	}

	if err := s.responders.Add(ctx, id, role, email); err != nil {
		return err
	}

	s.log.Debug().
		Ctx(logging.WithSession(ctx, sess.ID(), sess.CourseID)).
		Str("role", string(role)).
		Bool("grace", w.IsInGracePeriod(now)).
		Msg("response recorded")
	return nil
}

// Status evaluates a session at utcNow.
func (s *SessionService) Status(ctx context.Context, id string, utcNow time.Time) (Status, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Status{}, err
	}

	counts, err := s.responders.Count(ctx, id)
	if err != nil {
		return Status{}, err
	}

	st, err := s.notify.GetState(ctx, id)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Session:    sess,
		Window:     sess.Window.Evaluate(sess.Window.LocalNow(utcNow)),
		Responders: counts,
		Notify:     st,
	}, nil
}

// SetReminder turns one reminder kind on or off for a session.
func (s *SessionService) SetReminder(ctx context.Context, id string, kind notify.Kind, enabled bool) error {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}

	st, err := s.notify.GetState(ctx, id)
	if err != nil {
		return err
	}

	switch kind {
	case notify.KindOpening:
		st.OpeningEnabled = enabled
	case notify.KindClosing:
		st.ClosingEnabled = enabled
	case notify.KindPublished:
		st.PublishedEnabled = enabled
	default:
		return fmt.Errorf("unknown reminder kind %q", kind)
	}

	return s.notify.SaveState(ctx, st)
}

// Reminders returns the queued reminders of a session, newest first. An
// empty id lists the reminders of every session.
func (s *SessionService) Reminders(ctx context.Context, id string) ([]notify.Reminder, error) {
	return s.notify.ListReminders(ctx, id)
}

// prepareNew applies the defaults of a new session and validates it.
func (s *SessionService) prepareNew(sess session.Session) (session.Session, error) {
	sess = s.prepare(sess)
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now().UTC()
	}

	if err := sess.Validate(); err != nil {
		return session.Session{}, newValidationError(sess, err)
	}
	return sess, nil
}

func (s *SessionService) prepare(sess session.Session) session.Session {
	sess = sess.Sanitized()
	if sess.Window.Kind == "" {
		w := sess.Window
		w.Kind = window.KindNormal
		sess = sess.WithWindow(w)
	}
	return sess
}
