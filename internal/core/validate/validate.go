// Package validate provides the field format checks shared by session
// validation and the response workflow.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hay-kot/criterio"
)

const (
	NameMaxLength     = 38
	CourseIDMaxLength = 40
	EmailMaxLength    = 254
)

var (
	courseIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.$-]+$`)
	emailPattern    = regexp.MustCompile(`^[\w+][\w+.'-]*@([A-Za-z0-9-]+\.)*[A-Za-z]+$`)
)

// EmailField validates email and reports a failure under field as
// criterio.FieldErrors.
func EmailField(field, email string) error {
	return criterio.Run(field, email, Email)
}

// SessionName checks a feedback session name: non-blank, at most
// NameMaxLength characters, starting with a letter or digit and free of the
// characters used to build session IDs.
func SessionName(name string) error {
	var reason string
	first, _ := utf8.DecodeRuneInString(name)
	switch {
	case strings.TrimSpace(name) == "":
		reason = "is empty"
	case utf8.RuneCountInString(name) > NameMaxLength:
		reason = "is too long"
	case !unicode.IsLetter(first) && !unicode.IsDigit(first):
		reason = "does not start with an alphanumeric character"
	case strings.ContainsAny(name, "%|"):
		reason = "contains a reserved character"
	default:
		return nil
	}
	return fmt.Errorf("%q is not acceptable as a feedback session name because it %s. "+
		"A feedback session name must start with a letter or digit, cannot contain %% or |, "+
		"and cannot be longer than %d characters.", name, reason, NameMaxLength)
}

// CourseID checks that id is short and uses only the characters allowed in
// course IDs.
func CourseID(id string) error {
	var reason string
	switch {
	case len(id) > CourseIDMaxLength:
		reason = "is too long"
	case !courseIDPattern.MatchString(id):
		reason = "is not in the correct format"
	default:
		return nil
	}
	return fmt.Errorf("%q is not acceptable as a course ID because it %s. "+
		"A course ID can contain letters, numbers, fullstops, hyphens, underscores, and dollar signs. "+
		"It cannot be longer than %d characters, cannot be empty and cannot contain spaces.", id, reason, CourseIDMaxLength)
}

// Email performs a shape check of an email address.
func Email(email string) error {
	var reason string
	switch {
	case len(email) > EmailMaxLength:
		reason = "is too long"
	case !emailPattern.MatchString(email):
		reason = "is not in the correct format"
	default:
		return nil
	}
	return fmt.Errorf("%q is not acceptable as an email because it %s. "+
		"An email address contains some text followed by one '@' sign followed by some more text. "+
		"It cannot be longer than %d characters, cannot be empty and cannot contain spaces.", email, reason, EmailMaxLength)
}
