package official

import (
	"testing"
	"time"
)

func TestParseFlashscoreDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"plain", "12.05. 19:00", time.Date(2026, 5, 12, 19, 0, 0, 0, time.UTC), true},
		{"trailing status", "12.05. 19:00 ES", time.Date(2026, 5, 12, 19, 0, 0, 0, time.UTC), true},
		{"nbsp separator", "12.05. 19:00", time.Date(2026, 5, 12, 19, 0, 0, 0, time.UTC), true},
		{"no date", "Avslutad", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFlashscoreDate(tt.raw, 2026)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("date = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseScore(t *testing.T) {
	if n, err := parseScore(" 48 "); err != nil || n != 48 {
		t.Errorf("parseScore(\" 48 \") = %d, %v", n, err)
	}
	if _, err := parseScore(""); err == nil {
		t.Error("empty score parsed")
	}
	if _, err := parseScore("-"); err == nil {
		t.Error("placeholder score parsed")
	}
}
