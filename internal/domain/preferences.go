package domain

// Interval is a daily unavailability window in local hours. Start and End are
// in [0,24); a window with Start >= End wraps past midnight.
type Interval struct {
	Start int
	End   int
}

// DefaultInterval is installed when a user sets a timezone for the first time (12 AM to 6 AM).
var DefaultInterval = Interval{Start: 0, End: 6}

// Valid reports whether both hours are inside [0,24).
func (iv Interval) Valid() bool {
	return ValidHour(iv.Start) && ValidHour(iv.End)
}

// Preferences holds one user's availability settings.
type Preferences struct {
	TZ       string    // canonical zone name; empty means not configured
	Interval *Interval // nil means the unavailability window is disabled
	DND      bool
}

// HasTZ reports whether a timezone is configured.
func (p *Preferences) HasTZ() bool {
	return p != nil && p.TZ != ""
}

// ClearTZ removes the timezone together with the window, which has no meaning without it.
func (p *Preferences) ClearTZ() {
	p.TZ = ""
	p.Interval = nil
}

// ValidHour reports whether h is an hour of the day.
func ValidHour(h int) bool {
	return h >= 0 && h < 24
}
