package feedback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/colonyops/feedback/internal/core/session"
)

var (
	// ErrAlreadyExists is returned by Create when the session ID is taken.
	ErrAlreadyExists = errors.New("session already exists")
	// ErrNotManual is returned when publishing or unpublishing a session
	// whose results follow a schedule.
	ErrNotManual = errors.New("session results are not published manually")
	// ErrNotAcceptingResponses is returned for responses outside the open
	// window and its grace period.
	ErrNotAcceptingResponses = errors.New("session is not accepting responses")
)

// ValidationError carries the ordered validation messages of a session.
type ValidationError struct {
	SessionID string
	Messages  []string
	Err       error
}

func newValidationError(sess session.Session, err error) *ValidationError {
	return &ValidationError{
		SessionID: sess.Identification(),
		Messages:  session.Messages(err),
		Err:       err,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid session %s: %s", e.SessionID, strings.Join(e.Messages, " "))
}

func (e *ValidationError) Unwrap() error { return e.Err }
