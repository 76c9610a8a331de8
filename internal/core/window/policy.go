package window

import (
	"fmt"
	"time"
)

// VisibilityKind identifies which variant a VisibilityPolicy holds.
type VisibilityKind string

const (
	VisibilityAt            VisibilityKind = "at"
	VisibilityFollowOpening VisibilityKind = "follow_opening"
	VisibilityNever         VisibilityKind = "never"
)

// VisibilityPolicy decides when a session becomes visible to non-creators.
// The zero value is unset and is rejected by validation.
type VisibilityPolicy struct {
	kind VisibilityKind
	at   time.Time
}

// Shared visibility sentinels.
var (
	FollowOpening = VisibilityPolicy{kind: VisibilityFollowOpening}
	VisibleNever  = VisibilityPolicy{kind: VisibilityNever}
)

// VisibleAt returns a policy that makes the session visible after t.
func VisibleAt(t time.Time) VisibilityPolicy {
	return VisibilityPolicy{kind: VisibilityAt, at: t}
}

// Kind returns the variant, or "" when unset.
func (p VisibilityPolicy) Kind() VisibilityKind { return p.kind }

// IsSet reports whether the policy holds any variant.
func (p VisibilityPolicy) IsSet() bool { return p.kind != "" }

// Time returns the concrete instant. ok is false for every sentinel.
func (p VisibilityPolicy) Time() (t time.Time, ok bool) {
	if p.kind != VisibilityAt {
		return time.Time{}, false
	}
	return p.at, true
}

func (p VisibilityPolicy) String() string {
	b, _ := p.MarshalText()
	if len(b) == 0 {
		return "unset"
	}
	return string(b)
}

// MarshalText encodes sentinels by name and instants as RFC 3339.
func (p VisibilityPolicy) MarshalText() ([]byte, error) {
	switch p.kind {
	case "":
		return []byte{}, nil
	case VisibilityAt:
		return []byte(p.at.Format(time.RFC3339)), nil
	default:
		return []byte(p.kind), nil
	}
}

// UnmarshalText is the inverse of MarshalText. An empty input yields the
// unset policy.
func (p *VisibilityPolicy) UnmarshalText(text []byte) error {
	s := string(text)
	switch VisibilityKind(s) {
	case "":
		*p = VisibilityPolicy{}
	case VisibilityFollowOpening:
		*p = FollowOpening
	case VisibilityNever:
		*p = VisibleNever
	default:
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid visibility %q: want follow_opening, never or an RFC 3339 time", s)
		}
		*p = VisibleAt(t)
	}
	return nil
}

// PublishKind identifies which variant a PublishPolicy holds.
type PublishKind string

const (
	PublishAtTime           PublishKind = "at"
	PublishFollowVisibility PublishKind = "follow_visible"
	PublishKindLater        PublishKind = "later"
	PublishKindNever        PublishKind = "never"
	PublishKindNow          PublishKind = "now"
)

// PublishPolicy decides when the results of a session are published.
// The zero value is unset and is rejected by validation.
type PublishPolicy struct {
	kind PublishKind
	at   time.Time
}

// Shared publish sentinels.
var (
	FollowVisibility = PublishPolicy{kind: PublishFollowVisibility}
	PublishLater     = PublishPolicy{kind: PublishKindLater}
	PublishNever     = PublishPolicy{kind: PublishKindNever}
	PublishNow       = PublishPolicy{kind: PublishKindNow}
)

// PublishAt returns a policy that publishes results after t.
func PublishAt(t time.Time) PublishPolicy {
	return PublishPolicy{kind: PublishAtTime, at: t}
}

// Kind returns the variant, or "" when unset.
func (p PublishPolicy) Kind() PublishKind { return p.kind }

// IsSet reports whether the policy holds any variant.
func (p PublishPolicy) IsSet() bool { return p.kind != "" }

// Time returns the concrete instant. ok is false for every sentinel.
func (p PublishPolicy) Time() (t time.Time, ok bool) {
	if p.kind != PublishAtTime {
		return time.Time{}, false
	}
	return p.at, true
}

// IsManual reports whether publication is driven by an explicit action.
func (p PublishPolicy) IsManual() bool {
	return p.kind == PublishKindLater || p.kind == PublishKindNow
}

func (p PublishPolicy) String() string {
	b, _ := p.MarshalText()
	if len(b) == 0 {
		return "unset"
	}
	return string(b)
}

// MarshalText encodes sentinels by name and instants as RFC 3339.
func (p PublishPolicy) MarshalText() ([]byte, error) {
	switch p.kind {
	case "":
		return []byte{}, nil
	case PublishAtTime:
		return []byte(p.at.Format(time.RFC3339)), nil
	default:
		return []byte(p.kind), nil
	}
}

// UnmarshalText is the inverse of MarshalText. An empty input yields the
// unset policy.
func (p *PublishPolicy) UnmarshalText(text []byte) error {
	s := string(text)
	switch PublishKind(s) {
	case "":
		*p = PublishPolicy{}
	case PublishFollowVisibility:
		*p = FollowVisibility
	case PublishKindLater:
		*p = PublishLater
	case PublishKindNever:
		*p = PublishNever
	case PublishKindNow:
		*p = PublishNow
	default:
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid results visibility %q: want follow_visible, later, never, now or an RFC 3339 time", s)
		}
		*p = PublishAt(t)
	}
	return nil
}
