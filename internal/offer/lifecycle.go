package offer

import (
	"fmt"
	"strings"
	"time"
)

// State is the derived lifecycle state of an offer. It is never stored;
// listings recompute it from the isActive flag and the date window.
type State string

const (
	StateActive   State = "active"
	StateUpcoming State = "upcoming"
	StateExpired  State = "expired"
)

// ParseState maps a listing filter value onto a State.
func ParseState(value string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(value))) {
	case StateActive:
		return StateActive, nil
	case StateUpcoming:
		return StateUpcoming, nil
	case StateExpired:
		return StateExpired, nil
	}
	return "", fmt.Errorf("unknown offer status %q", value)
}

// Classify derives the lifecycle state at the provided instant. A disabled
// offer is expired regardless of its dates; an elapsed end date beats an
// unstarted start date.
func Classify(o Offer, now time.Time) State {
	if !o.IsActive {
		return StateExpired
	}
	if o.EndDate != nil && o.EndDate.Before(now) {
		return StateExpired
	}
	if o.StartDate.After(now) {
		return StateUpcoming
	}
	return StateActive
}
