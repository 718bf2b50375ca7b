package utils

import (
	"fmt"
	"time"
)

// FormatAge renders how long ago something happened as a coarse human string,
// e.g. "42 seconds", "3 minutes", "2 hours", "5 days".
func FormatAge(age time.Duration) string {
	seconds := age.Seconds()

	switch {
	case seconds < 0:
		return "0 seconds"
	case seconds < 60:
		return fmt.Sprintf("%d seconds", int(seconds))
	case seconds < 3600:
		return fmt.Sprintf("%d minutes", int(seconds/60))
	case seconds < 86400:
		return fmt.Sprintf("%d hours", int(seconds/3600))
	default:
		return fmt.Sprintf("%d days", int(seconds/86400))
	}
}

// FormatRemaining renders a countdown as "Hh Mm", e.g. "11h 59m".
// Negative durations render as "0h 0m".
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}

	total := int(remaining.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60

	return fmt.Sprintf("%dh %dm", hours, minutes)
}
