package models

import "time"

type EventType string

const (
	EventAlert EventType = "alert"
	EventTick  EventType = "tick"
	EventReset EventType = "reset"
)

// Event is published after every store mutation.
type Event struct {
	Type     EventType
	At       time.Time
	Alert    *Alert        // set for EventAlert
	Severity Severity      // set for EventTick and EventReset
	Samples  []TrendSample // newest sample for a tick, the whole window for a reset
	Total    int
}
