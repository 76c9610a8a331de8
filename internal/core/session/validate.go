package session

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/feedback/internal/core/validate"
	"github.com/colonyops/feedback/internal/core/window"
)

// Validate checks the session fields and returns criterio.FieldErrors in a
// stable order, or nil when the session is valid.
//
// Checks run in stages and stop at the first stage that fails on missing
// values. Private sessions skip every time window check.
func (s Session) Validate() error {
	var errs criterio.FieldErrorsBuilder
	add := func(field string, err error) {
		if err != nil {
			errs = errs.Append(field, err)
		}
	}

	add("name", required("feedback session name", s.Name != ""))
	add("course_id", required("course ID", s.CourseID != ""))
	add("instructions", required("instructions to students", s.Instructions != ""))
	add("window.visible_from", required("time for the session to become visible", s.Window.Visibility.IsSet()))
	add("creator_email", required("creator's email", s.CreatorEmail != ""))
	add("created_at", required("session creation time", !s.CreatedAt.IsZero()))
	if err := errs.ToError(); err != nil {
		return err
	}

	add("name", validate.SessionName(s.Name))
	add("course_id", validate.CourseID(s.CourseID))
	if err := validate.Email(s.CreatorEmail); err != nil {
		add("creator_email", fmt.Errorf("Invalid creator's email: %w", err))
	}

	if s.Window.IsPrivate() {
		return errs.ToError()
	}

	w := s.Window
	add("window.start", required("submission opening time", !w.Start.IsZero()))
	add("window.end", required("submission closing time", !w.End.IsZero()))
	add("window.results_visible_from", required("time for the responses to become visible", w.Publish.IsSet()))
	if err := errs.ToError(); err != nil {
		return err
	}

	if !w.Start.Before(w.End) {
		add("window.end", errors.New("The end time for this feedback session must be later than the start time."))
	}

	if visible, ok := w.Visibility.Time(); ok && visible.After(w.Start) {
		add("window.visible_from", errors.New("The time when the session will be visible to students cannot be later than the start time."))
	}

	visible, hasVisible := w.Visibility.Time()
	if w.Visibility.Kind() == window.VisibilityFollowOpening {
		visible, hasVisible = w.Start, true
	}
	if publish, ok := w.Publish.Time(); ok && hasVisible && publish.Before(visible) {
		add("window.results_visible_from", errors.New("The time when the results will be visible to students cannot be earlier than the time when the session will be visible to students."))
	}

	return errs.ToError()
}

// InvalidityInfo returns the human-readable validation messages in order. An
// empty slice means the session is valid.
func (s Session) InvalidityInfo() []string {
	return Messages(s.Validate())
}

// IsValid reports whether Validate finds no problems.
func (s Session) IsValid() bool {
	return s.Validate() == nil
}

// Messages flattens a validation error into its messages.
func Messages(err error) []string {
	if err == nil {
		return []string{}
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fe.Err.Error())
	}
	return out
}

func required(what string, present bool) error {
	if present {
		return nil
	}
	return fmt.Errorf("The provided %s is not acceptable as it cannot be empty.", what)
}
