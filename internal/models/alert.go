package models

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeveritySevere   Severity = "Severe"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Severities lists every class from most to least urgent.
var Severities = []Severity{
	SeverityCritical,
	SeveritySevere,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
}

// TrackedSeverities are the classes that get a trend window.
var TrackedSeverities = []Severity{SeverityCritical, SeveritySevere}

func (s Severity) String() string {
	return string(s)
}

func (s Severity) Valid() bool {
	for _, v := range Severities {
		if s == v {
			return true
		}
	}
	return false
}

func (s Severity) Tracked() bool {
	for _, v := range TrackedSeverities {
		if s == v {
			return true
		}
	}
	return false
}

// ParseSeverity matches case-insensitively and returns false for unknown names.
func ParseSeverity(s string) (Severity, bool) {
	for _, v := range Severities {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

type Status string

const (
	StatusNew           Status = "New"
	StatusInvestigating Status = "Investigating"
	StatusBlocked       Status = "Blocked"
	StatusQuarantined   Status = "Quarantined"
	StatusResolved      Status = "Resolved"
	StatusClosed        Status = "Closed"
)

type Alert struct {
	ID            string    // "evt-<millis>-<n>" for generated alerts
	Timestamp     time.Time // when the event was raised
	RuleName      string
	SourceIP      string
	DestinationIP string
	Severity      Severity
	Status        Status
	EdgeGroup     string // site label, optional
	Description   string // optional
}

type TrendSample struct {
	Timestamp time.Time
	Count     int
}
