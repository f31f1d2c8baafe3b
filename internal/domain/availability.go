package domain

import (
	"time"

	"github.com/ykvlv/report-bot/internal/tzdb"
)

// InInterval reports whether localHour falls inside the half-open window [start, end)
// on a 24h clock. Windows with start >= end wrap past midnight; start == end covers the whole day.
func InInterval(localHour, start, end int) bool {
	if start < end {
		return localHour >= start && localHour < end
	}
	// wrap: [start..24) U [0..end)
	return localHour >= start || localHour < end
}

// LocalTime shifts nowUTC by a UTC offset given in minutes.
func LocalTime(nowUTC time.Time, offsetMinutes int) time.Time {
	return nowUTC.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
}

// IsAvailable answers the timezone/window part of availability. DND is not considered here.
// Missing configuration, or a zone absent from the snapshot, counts as available.
func IsAvailable(p *Preferences, nowUTC time.Time, zones []tzdb.Zone) bool {
	if p == nil || p.TZ == "" || p.Interval == nil {
		return true
	}
	zone, ok := tzdb.Find(zones, p.TZ)
	if !ok {
		return true
	}
	h := LocalTime(nowUTC, zone.OffsetMinutes).Hour()
	return !InInterval(h, p.Interval.Start, p.Interval.End)
}
