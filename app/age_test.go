package app

import "testing"

func TestLastReloadedText(t *testing.T) {
	const (
		minute = int64(60000)
		hour   = 60 * minute
		day    = 24 * hour
	)

	tests := []struct {
		name     string
		agoMs    int64
		expected string
	}{
		{name: "Just now", agoMs: 0, expected: "0 min ago"},
		{name: "Under half a minute rounds down", agoMs: 29500, expected: "0 min ago"},
		{name: "Half a minute rounds up", agoMs: 30000, expected: "1 min ago"},
		{name: "Ninety seconds", agoMs: 90000, expected: "2 min ago"},
		{name: "Exactly 180 minutes stays in minutes", agoMs: 180 * minute, expected: "180 min ago"},
		{name: "Just over 180 minutes", agoMs: 180*minute + 1, expected: "3 hrs ago"},
		{name: "Ten and a half hours", agoMs: 10*hour + 30*minute, expected: "11 hrs ago"},
		{name: "Exactly 48 hours stays in hours", agoMs: 48 * hour, expected: "48 hrs ago"},
		{name: "Just over 48 hours", agoMs: 48*hour + 1, expected: "2 days ago"},
		{name: "Exactly 14 days stays in days", agoMs: 14 * day, expected: "14 days ago"},
		{name: "Just over 14 days", agoMs: 14*day + 1, expected: "long ago"},
		{name: "Clock skew", agoMs: -20000, expected: "0 min ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LastReloadedText(tt.agoMs)
			if result != tt.expected {
				t.Errorf("LastReloadedText(%d) = %q, expected %q", tt.agoMs, result, tt.expected)
			}
		})
	}
}

func TestLastReloadedTextGerman(t *testing.T) {
	l := NewLocalizer("de_DE")

	if l.Locale() != "de" {
		t.Fatalf("Expected locale 'de', got '%s'", l.Locale())
	}

	tests := map[int64]string{
		120000:        "vor 2 Min.",
		5 * 3600000:   "vor 5 Std.",
		3 * 86400000:  "vor 3 Tagen",
		30 * 86400000: "vor langer Zeit",
	}
	for agoMs, expected := range tests {
		if result := l.LastReloadedText(agoMs); result != expected {
			t.Errorf("LastReloadedText(%d) = %q, expected %q", agoMs, result, expected)
		}
	}
}
