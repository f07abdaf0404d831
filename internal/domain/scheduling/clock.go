package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a time of day expressed as minutes since midnight. It is the
// unit of all working-hours arithmetic: schedule windows, break carving
// and appointment slots. Stored as a SMALLINT column.
type Clock int

const (
	// VisitLength is the fixed appointment duration.
	VisitLength Clock = 30
	// BreakLength is the fixed lunch break duration.
	BreakLength Clock = 60
	// CollisionWindow is the buffer on either side of a requested slot
	// within which another appointment's start counts as a conflict.
	CollisionWindow Clock = 30

	minutesPerDay = 24 * 60
)

// NewClock builds a Clock from an hour and minute pair.
func NewClock(hour, min int) Clock {
	return Clock(hour*60 + min)
}

// ParseClock parses "HH:MM" into a Clock.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	min, err := strconv.Atoi(mm)
	if err != nil || min < 0 || min > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return NewClock(hour, min), nil
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// Valid reports whether the clock falls within a single day.
func (c Clock) Valid() bool { return c >= 0 && c < minutesPerDay }

// Add shifts the clock forward by d minutes.
func (c Clock) Add(d Clock) Clock { return c + d }

// Sub shifts the clock back by d minutes.
func (c Clock) Sub(d Clock) Clock { return c - d }

// Within reports whether c lies in [lo, hi], inclusive on both ends.
func (c Clock) Within(lo, hi Clock) bool { return c >= lo && c <= hi }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalJSON renders the clock as an "HH:MM" string.
func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON accepts an "HH:MM" string.
func (c *Clock) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid time value: %s", data)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share any
// time. Touching endpoints do not count as overlap.
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && bStart < aEnd
}
