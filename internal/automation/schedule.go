package automation

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ScheduleFor returns the schedule string sent with download-mode create
// requests, e.g. "@every 60m". Non-positive intervals use the default.
func ScheduleFor(intervalMinutes int) string {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	return fmt.Sprintf("@every %dm", intervalMinutes)
}

// ParseSchedule validates a schedule string. Both descriptors such as
// "@every 30m" or "@daily" and five-field cron expressions are accepted.
func ParseSchedule(schedule string) (cron.Schedule, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return sched, nil
}

// NextRun returns when the backend is next expected to check h. The
// interval is counted from the last run, or from creation when it never ran.
func NextRun(h HostedAutomation) time.Time {
	base := h.CreatedAt.Time
	if last := h.LastRunTime(); last != nil {
		base = *last
	}
	if base.IsZero() || h.IntervalMinutes <= 0 {
		return time.Time{}
	}
	return cron.Every(time.Duration(h.IntervalMinutes) * time.Minute).Next(base)
}

// FormatNextRun renders the next expected check relative to now
func FormatNextRun(h HostedAutomation, now time.Time) string {
	if !h.IsActive {
		return "Paused"
	}
	next := NextRun(h)
	if next.IsZero() {
		return "Unknown"
	}
	mins := int(next.Sub(now) / time.Minute)
	switch {
	case mins < 1:
		return "Due now"
	case mins < 60:
		return fmt.Sprintf("in %d min", mins)
	case mins < 1440:
		return fmt.Sprintf("in %d hours", mins/60)
	default:
		return fmt.Sprintf("in %d days", mins/1440)
	}
}
