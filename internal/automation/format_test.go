package automation

import (
	"testing"
	"time"
)

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{10, "Every 10 minutes"},
		{30, "Every 30 minutes"},
		{60, "Every hour"},
		{90, "Every 1 hours"},
		{180, "Every 3 hours"},
		{720, "Every 12 hours"},
		{1440, "Daily"},
	}
	for _, tt := range tests {
		if got := FormatInterval(tt.minutes); got != tt.want {
			t.Errorf("FormatInterval(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFormatLastRun(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	tests := []struct {
		name string
		last *time.Time
		want string
	}{
		{"never", nil, "Never"},
		{"seconds", ago(30 * time.Second), "Just now"},
		{"minutes", ago(5 * time.Minute), "5 min ago"},
		{"hours", ago(150 * time.Minute), "2 hours ago"},
		{"days", ago(49 * time.Hour), "2 days ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLastRun(tt.last, now); got != tt.want {
				t.Errorf("FormatLastRun() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIntervalOptions(t *testing.T) {
	want := []int{10, 30, 60, 180, 360, 720, 1440}
	opts := IntervalOptions()
	if len(opts) != len(want) {
		t.Fatalf("got %d options", len(opts))
	}
	for i, opt := range opts {
		if opt.Minutes != want[i] {
			t.Errorf("option %d = %d, want %d", i, opt.Minutes, want[i])
		}
	}
	if !IsIntervalOption(DefaultIntervalMinutes) || IsIntervalOption(45) {
		t.Error("IsIntervalOption mismatch")
	}
}

// TestComputeStats tests the free tier counters
func TestComputeStats(t *testing.T) {
	tests := []struct {
		name          string
		active        []bool
		wantActive    int
		wantAvailable int
		wantCreate    bool
	}{
		{"empty", nil, 0, 3, true},
		{"one paused", []bool{false}, 0, 2, true},
		{"two of three active", []bool{true, false, true}, 2, 0, false},
		{"over limit", []bool{true, true, true, true}, 4, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []HostedAutomation
			for i, a := range tt.active {
				list = append(list, HostedAutomation{ID: i + 1, IsActive: a})
			}
			s := ComputeStats(list)
			if s.Active != tt.wantActive || s.Total != len(tt.active) || s.Limit != FreeTierLimit {
				t.Errorf("stats = %+v", s)
			}
			if s.Available() != tt.wantAvailable {
				t.Errorf("Available() = %d, want %d", s.Available(), tt.wantAvailable)
			}
			if s.CanCreate() != tt.wantCreate {
				t.Errorf("CanCreate() = %v", s.CanCreate())
			}
		})
	}
}
