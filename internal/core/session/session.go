// Package session defines feedback session domain types and interfaces.
package session

import (
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/colonyops/feedback/internal/core/window"
)

// richText keeps the formatting tags an instructor may use in instructions
// and strips scripts, handlers and other active content.
var richText = bluemonday.UGCPolicy()

// Session is the metadata of one feedback session in a course.
//
// Notification bookkeeping lives in the notify package and responder sets in
// the responders package; both are keyed by ID().
type Session struct {
	Name         string        `yaml:"name" json:"name"`
	CourseID     string        `yaml:"course_id" json:"course_id"`
	CreatorEmail string        `yaml:"creator_email" json:"creator_email"`
	Instructions string        `yaml:"instructions" json:"instructions"`
	CreatedAt    time.Time     `yaml:"created_at" json:"created_at"`
	Window       window.Window `yaml:"window" json:"window"`
}

// MakeID builds the identifier of the session called name in courseID.
func MakeID(name, courseID string) string {
	return name + "%" + courseID
}

// ID returns the store key of the session.
func (s Session) ID() string {
	return MakeID(s.Name, s.CourseID)
}

// Identification is the human-readable "name/course" form used in logs and
// messages.
func (s Session) Identification() string {
	return s.Name + "/" + s.CourseID
}

// IsCreator reports whether email belongs to the instructor who created the
// session.
func (s Session) IsCreator(email string) bool {
	return s.CreatorEmail == email
}

// Sanitized returns a copy with instructions passed through the rich text
// policy.
func (s Session) Sanitized() Session {
	s.Instructions = SanitizeRichText(s.Instructions)
	return s
}

// SanitizeRichText strips unsafe markup from instructor-provided HTML.
func SanitizeRichText(html string) string {
	return richText.Sanitize(html)
}

// WithWindow returns a copy of the session using w.
func (s Session) WithWindow(w window.Window) Session {
	s.Window = w
	return s
}
