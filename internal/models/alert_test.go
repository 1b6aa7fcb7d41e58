package models

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"Critical", SeverityCritical, true},
		{"critical", SeverityCritical, true},
		{"SEVERE", SeveritySevere, true},
		{"low", SeverityLow, true},
		{"urgent", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSeverity(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSeverity(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSeverity_Tracked(t *testing.T) {
	for _, s := range Severities {
		want := s == SeverityCritical || s == SeveritySevere
		if s.Tracked() != want {
			t.Errorf("%s.Tracked() = %v, want %v", s, s.Tracked(), want)
		}
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Severity("Info").Valid() {
		t.Error("unknown severity should not be valid")
	}
}
