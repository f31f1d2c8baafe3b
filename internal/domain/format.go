package domain

import (
	"fmt"
	"time"
)

// FormatHour renders an hour of the day in 12-hour form, e.g. "12 AM", "09 PM".
func FormatHour(h int) string {
	h = ((h % 24) + 24) % 24
	switch {
	case h == 0:
		return "12 AM"
	case h == 12:
		return "12 PM"
	case h > 12:
		return fmt.Sprintf("%02d PM", h-12)
	default:
		return fmt.Sprintf("%02d AM", h)
	}
}

// FormatClock returns HH:MM of t.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
