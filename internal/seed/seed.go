// Package seed holds the fixed catalog of example alerts loaded at startup.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

const timestampLayout = "2006-01-02T15:04:05"

//go:embed alerts.yaml
var catalog []byte

type record struct {
	ID            string `yaml:"id"`
	Timestamp     string `yaml:"timestamp"`
	RuleName      string `yaml:"rule_name"`
	SourceIP      string `yaml:"source_ip"`
	DestinationIP string `yaml:"destination_ip"`
	Severity      string `yaml:"severity"`
	Status        string `yaml:"status"`
	EdgeGroup     string `yaml:"edge_group"`
	Description   string `yaml:"description"`
}

type document struct {
	Alerts []record `yaml:"alerts"`
}

// Load returns the embedded catalog oldest first.
func Load() ([]models.Alert, error) {
	return Parse(catalog)
}

// Parse decodes a catalog document.
func Parse(data []byte) ([]models.Alert, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding seed catalog: %w", err)
	}

	alerts := make([]models.Alert, 0, len(doc.Alerts))
	seen := make(map[string]bool, len(doc.Alerts))
	for _, r := range doc.Alerts {
		if r.ID == "" {
			return nil, fmt.Errorf("seed alert missing id")
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate seed alert id: %s", r.ID)
		}
		seen[r.ID] = true

		ts, err := time.ParseInLocation(timestampLayout, r.Timestamp, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("seed alert %s: invalid timestamp: %w", r.ID, err)
		}
		sev, ok := models.ParseSeverity(r.Severity)
		if !ok {
			return nil, fmt.Errorf("seed alert %s: unknown severity %q", r.ID, r.Severity)
		}

		alerts = append(alerts, models.Alert{
			ID:            r.ID,
			Timestamp:     ts,
			RuleName:      r.RuleName,
			SourceIP:      r.SourceIP,
			DestinationIP: r.DestinationIP,
			Severity:      sev,
			Status:        models.Status(r.Status),
			EdgeGroup:     r.EdgeGroup,
			Description:   r.Description,
		})
	}

	return alerts, nil
}
