package scheduling

import "time"

// BookingHorizonDays limits how far ahead a working schedule may be
// declared.
const BookingHorizonDays = 7

// ValidateSchedule checks that a proposed working day is structurally
// sound relative to today: within the booking horizon, start no later
// than the break, and the one-hour break fitting before the end of the
// day. It does not check for an existing schedule on the same day.
func ValidateSchedule(today, day time.Time, start, end, breakStart Clock) error {
	if day.After(today.AddDate(0, 0, BookingHorizonDays)) {
		return ErrScheduleInvalid
	}
	if start > breakStart {
		return ErrScheduleInvalid
	}
	if breakStart.Add(BreakLength) > end {
		return ErrScheduleInvalid
	}
	return nil
}

// FitsSchedule reports whether the visit [start, end] lies inside the
// working window and clear of the break. The visit must sit entirely
// before the break starts or entirely after it ends.
func FitsSchedule(start, end Clock, s *Schedule) bool {
	withinWorkingHours := start >= s.StartTime && end <= s.EndTime
	clearOfBreak := end < s.BreakStart || start > s.BreakEnd
	return withinWorkingHours && clearOfBreak
}

// ComputeFreeIntervals walks the day's booked appointments, sorted
// ascending by start time, and returns the open spans of the schedule:
// working hours minus the break minus each 30-minute visit.
//
// The walk keeps a cursor and a segment end. The segment end starts at
// the break so pre-break gaps accumulate first; the first appointment
// past the break flushes the remaining pre-break span and moves the
// segment past the break. If no appointment ever crosses the break, the
// post-break span is emitted whole at the end. Zero-length intervals
// are dropped.
func ComputeFreeIntervals(s *Schedule, appointments []*Appointment) []FreeInterval {
	intervals := make([]FreeInterval, 0, len(appointments)+2)
	from := s.StartTime
	till := s.BreakStart
	for _, a := range appointments {
		if a.StartTime > s.BreakEnd && till == s.BreakStart {
			if from != till {
				intervals = append(intervals, FreeInterval{From: from, Till: till})
			}
			from = s.BreakEnd
			till = s.EndTime
		}
		if from != a.StartTime {
			intervals = append(intervals, FreeInterval{From: from, Till: a.StartTime})
		}
		from = a.StartTime.Add(VisitLength)
	}
	if from != till {
		intervals = append(intervals, FreeInterval{From: from, Till: till})
	}
	if len(appointments) == 0 || till == s.BreakStart {
		intervals = append(intervals, FreeInterval{From: s.BreakEnd, Till: s.EndTime})
	}
	return intervals
}
