package api

import (
	"time"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

type alertView struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	RuleName      string          `json:"ruleName"`
	SourceIP      string          `json:"sourceIp"`
	DestinationIP string          `json:"destinationIp"`
	Severity      models.Severity `json:"severity"`
	Status        models.Status   `json:"status"`
	EdgeGroup     string          `json:"edgeGroup,omitempty"`
	Description   string          `json:"description,omitempty"`
}

type feedResponse struct {
	Alerts []alertView `json:"alerts"`
	Count  int         `json:"count"`
}

type statsResponse struct {
	Counts      map[models.Severity]int `json:"counts"`
	Total       int                     `json:"total"`
	LastUpdated time.Time               `json:"lastUpdated"`
}

type sampleView struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

type trendResponse struct {
	Severity models.Severity `json:"severity"`
	Samples  []sampleView    `json:"samples"`
}

type eventView struct {
	Type     models.EventType `json:"type"`
	At       time.Time        `json:"at"`
	Alert    *alertView       `json:"alert,omitempty"`
	Severity models.Severity  `json:"severity,omitempty"`
	Samples  []sampleView     `json:"samples,omitempty"`
	Total    int              `json:"total,omitempty"`
}

func toAlertView(a models.Alert) alertView {
	return alertView{
		ID:            a.ID,
		Timestamp:     a.Timestamp,
		RuleName:      a.RuleName,
		SourceIP:      a.SourceIP,
		DestinationIP: a.DestinationIP,
		Severity:      a.Severity,
		Status:        a.Status,
		EdgeGroup:     a.EdgeGroup,
		Description:   a.Description,
	}
}

func toAlertViews(alerts []models.Alert) []alertView {
	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, toAlertView(a))
	}
	return views
}

func toSampleViews(samples []models.TrendSample) []sampleView {
	views := make([]sampleView, 0, len(samples))
	for _, s := range samples {
		views = append(views, sampleView{Timestamp: s.Timestamp, Count: s.Count})
	}
	return views
}

func toEventView(ev *models.Event) eventView {
	v := eventView{
		Type:     ev.Type,
		At:       ev.At,
		Severity: ev.Severity,
		Total:    ev.Total,
	}
	if ev.Alert != nil {
		a := toAlertView(*ev.Alert)
		v.Alert = &a
	}
	if len(ev.Samples) > 0 {
		v.Samples = toSampleViews(ev.Samples)
	}
	return v
}
