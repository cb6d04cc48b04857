package clock

import "time"

// Clock supplies the calendar day used for loan and return dates and for
// the overdue view. Days are represented as midnight UTC of that date so
// they compare equal after a round trip through a DATE column.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type system struct {
	loc *time.Location
}

func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return system{loc: loc}
}

// Load builds a system clock for an IANA zone name such as Asia/Jakarta.
func Load(zone string) (Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return New(loc), nil
}

func (s system) Now() time.Time { return time.Now().In(s.loc) }

func (s system) Today() time.Time { return Date(s.Now()) }

// Date truncates t to its calendar day in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixed always reports the same day.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

func (f Fixed) Today() time.Time { return Date(time.Time(f)) }
