package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Checker uses it to determine "today" before matching records.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
// Loc sets the zone "today" is read in; nil means the host's local zone.
type RealClock struct {
	Loc *time.Location
}

// Now returns the current time in c.Loc.
func (c RealClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// Midnight truncates t to the start of its calendar day in t's location.
// time.Truncate cannot be used because it operates on absolute time.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
