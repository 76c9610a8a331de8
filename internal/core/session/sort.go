package session

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// SortByCreation orders sessions by course, then creation time, end time,
// start time and name, all ascending. Sorting by course first keeps sessions
// from several courses grouped.
func SortByCreation(sessions []Session) {
	slices.SortStableFunc(sessions, func(a, b Session) int {
		return cmp.Or(
			strings.Compare(a.CourseID, b.CourseID),
			a.CreatedAt.Compare(b.CreatedAt),
			a.Window.End.Compare(b.Window.End),
			a.Window.Start.Compare(b.Window.Start),
			strings.Compare(a.Name, b.Name),
		)
	})
}

// SortByCreationDesc orders sessions newest first: creation time, end time
// and start time descending, then course and name ascending. Sessions without
// an end time come before those with one.
func SortByCreationDesc(sessions []Session) {
	slices.SortStableFunc(sessions, func(a, b Session) int {
		return cmp.Or(
			b.CreatedAt.Compare(a.CreatedAt),
			compareEndDesc(a.Window.End, b.Window.End),
			b.Window.Start.Compare(a.Window.Start),
			strings.Compare(a.CourseID, b.CourseID),
			strings.Compare(a.Name, b.Name),
		)
	})
}

func compareEndDesc(a, b time.Time) int {
	if a.IsZero() || b.IsZero() {
		result := 0
		if a.IsZero() {
			result--
		}
		if b.IsZero() {
			result++
		}
		return result
	}
	return b.Compare(a)
}
