package automation

import (
	"fmt"
	"time"
)

// FreeTierLimit is the number of hosted automations allowed per account
const FreeTierLimit = 3

// DefaultIntervalMinutes is preselected in the cloud form
const DefaultIntervalMinutes = 60

// IntervalOption is one entry of the interval picker
type IntervalOption struct {
	Minutes int
	Label   string
}

var intervalOptions = []IntervalOption{
	{10, "Every 10 minutes"},
	{30, "Every 30 minutes"},
	{60, "Every hour"},
	{180, "Every 3 hours"},
	{360, "Every 6 hours"},
	{720, "Every 12 hours"},
	{1440, "Once daily"},
}

// IntervalOptions returns the offered check intervals, shortest first
func IntervalOptions() []IntervalOption {
	out := make([]IntervalOption, len(intervalOptions))
	copy(out, intervalOptions)
	return out
}

// IsIntervalOption reports whether minutes is one of the offered intervals
func IsIntervalOption(minutes int) bool {
	for _, opt := range intervalOptions {
		if opt.Minutes == minutes {
			return true
		}
	}
	return false
}

// FormatInterval renders an interval for list rows.
//
//	< 60    "Every N minutes"
//	60      "Every hour"
//	1440    "Daily"
//	other   "Every floor(N/60) hours"
func FormatInterval(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("Every %d minutes", minutes)
	case minutes == 60:
		return "Every hour"
	case minutes == 1440:
		return "Daily"
	default:
		return fmt.Sprintf("Every %d hours", minutes/60)
	}
}

// FormatLastRun renders how long ago an automation last ran, relative to now.
func FormatLastRun(last *time.Time, now time.Time) string {
	if last == nil || last.IsZero() {
		return "Never"
	}
	mins := int(now.Sub(*last) / time.Minute)
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case mins < 1440:
		return fmt.Sprintf("%d hours ago", mins/60)
	default:
		return fmt.Sprintf("%d days ago", mins/1440)
	}
}

// Stats summarises a hosted automation list against the free tier limit
type Stats struct {
	Active int
	Total  int
	Limit  int
}

// ComputeStats counts active and total automations
func ComputeStats(list []HostedAutomation) Stats {
	s := Stats{Total: len(list), Limit: FreeTierLimit}
	for _, h := range list {
		if h.IsActive {
			s.Active++
		}
	}
	return s
}

// Available returns the number of free slots, never negative
func (s Stats) Available() int {
	if s.Total >= s.Limit {
		return 0
	}
	return s.Limit - s.Total
}

// CanCreate reports whether another automation fits in the limit
func (s Stats) CanCreate() bool {
	return s.Total < s.Limit
}
