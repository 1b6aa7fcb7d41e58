package seed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-alert-dashboard/internal/models"
)

func TestLoad_Catalog(t *testing.T) {
	alerts, err := Load()
	require.NoError(t, err)
	require.Len(t, alerts, 10)

	counts := map[models.Severity]int{}
	for i, a := range alerts {
		assert.Equal(t, fmt.Sprintf("evt-%03d", i+1), a.ID)
		counts[a.Severity]++
		if i > 0 {
			assert.True(t, a.Timestamp.After(alerts[i-1].Timestamp), "catalog should be oldest first")
		}
	}

	assert.Equal(t, 3, counts[models.SeverityCritical])
	assert.Equal(t, 3, counts[models.SeveritySevere])
	assert.Equal(t, 2, counts[models.SeverityHigh])
	assert.Equal(t, 1, counts[models.SeverityMedium])
	assert.Equal(t, 1, counts[models.SeverityLow])
}

func TestLoad_OptionalFields(t *testing.T) {
	alerts, err := Load()
	require.NoError(t, err)

	assert.Empty(t, alerts[1].Description, "evt-002 has no description")
	assert.Equal(t, models.StatusQuarantined, alerts[3].Status)
	assert.Equal(t, "N/A", alerts[7].DestinationIP)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "alerts: ["},
		{"missing id", "alerts:\n  - timestamp: \"2025-12-16T10:30:00\"\n    severity: Low\n"},
		{"bad timestamp", "alerts:\n  - id: a\n    timestamp: yesterday\n    severity: Low\n"},
		{"bad severity", "alerts:\n  - id: a\n    timestamp: \"2025-12-16T10:30:00\"\n    severity: Urgent\n"},
		{"duplicate id", "alerts:\n  - id: a\n    timestamp: \"2025-12-16T10:30:00\"\n    severity: Low\n  - id: a\n    timestamp: \"2025-12-16T10:31:00\"\n    severity: Low\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
