// Package window evaluates the time window of a feedback session: when it
// opens, closes, becomes visible and publishes its results.
//
// Every predicate is a pure function of the Window and a session-local "now".
// Callers convert a UTC clock reading with LocalNow before asking.
package window

import "time"

// Kind separates sessions with a public time window from creator-only ones.
type Kind string

const (
	KindNormal  Kind = "normal"
	KindPrivate Kind = "private"
)

// Window is the timing configuration of a feedback session. It is a value
// type; changing it means building a new Window.
type Window struct {
	Start       time.Time        `yaml:"start" json:"start"`
	End         time.Time        `yaml:"end" json:"end"`
	Visibility  VisibilityPolicy `yaml:"visible_from" json:"visible_from"`
	Publish     PublishPolicy    `yaml:"results_visible_from" json:"results_visible_from"`
	TimeZone    float64          `yaml:"time_zone" json:"time_zone"`       // hours added to UTC to get session-local time
	GracePeriod int              `yaml:"grace_period" json:"grace_period"` // minutes past End during which responses are accepted
	Kind        Kind             `yaml:"kind" json:"kind"`
}

// LocalNow shifts a UTC instant by the window's time zone offset, at
// millisecond precision.
func (w Window) LocalNow(utc time.Time) time.Time {
	offset := time.Duration(int64(w.TimeZone*float64(time.Hour/time.Millisecond))) * time.Millisecond
	return utc.UTC().Add(offset)
}

// GracedEnd is End extended by the grace period.
func (w Window) GracedEnd() time.Time {
	return w.End.Add(time.Duration(w.GracePeriod) * time.Minute)
}

// IsClosed reports whether now is past the end of the grace period.
func (w Window) IsClosed(now time.Time) bool {
	return now.After(w.GracedEnd())
}

// IsOpen reports whether now lies strictly between Start and End.
func (w Window) IsOpen(now time.Time) bool {
	return now.After(w.Start) && now.Before(w.End)
}

// IsInGracePeriod reports whether the session has ended but still accepts
// responses.
func (w Window) IsInGracePeriod(now time.Time) bool {
	return now.After(w.End) && now.Before(w.GracedEnd())
}

// IsWaitingToOpen reports whether now is before Start.
func (w Window) IsWaitingToOpen(now time.Time) bool {
	return now.Before(w.Start)
}

// IsVisible reports whether the session is visible. It does not care whether
// the session has started.
func (w Window) IsVisible(now time.Time) bool {
	var visibleFrom time.Time
	switch w.Visibility.Kind() {
	case VisibilityAt:
		visibleFrom = w.Visibility.at
	case VisibilityFollowOpening:
		visibleFrom = w.Start
	default:
		return false
	}
	return visibleFrom.Before(now)
}

// IsPublished reports whether the results are visible. It does not care
// whether the session has ended.
func (w Window) IsPublished(now time.Time) bool {
	switch w.Publish.Kind() {
	case PublishFollowVisibility:
		return w.IsVisible(now)
	case PublishKindNow:
		return true
	case PublishAtTime:
		return w.Publish.at.Before(now)
	default:
		return false
	}
}

// IsManuallyPublished reports whether the creator publishes results by hand.
func (w Window) IsManuallyPublished() bool {
	return w.Publish.IsManual()
}

// IsPrivate reports whether only the creator can see the session.
func (w Window) IsPrivate() bool {
	return w.Visibility.Kind() == VisibilityNever || w.Kind == KindPrivate
}

// IsClosingWithinHours reports whether the session has started and the whole
// hours left until End fall in [hours-1, hours). Partial hours are truncated,
// so exactly one hourly check per threshold answers true.
func (w Window) IsClosingWithinHours(now time.Time, hours int) bool {
	remaining := int64(w.End.Sub(now) / time.Hour)
	return now.After(w.Start) &&
		remaining >= int64(hours-1) &&
		remaining < int64(hours)
}
