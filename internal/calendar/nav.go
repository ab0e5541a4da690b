package calendar

import (
	"time"

	"github.com/dentms/dentms/internal/wallclock"
)

// Next advances the reference date by one view period. Month navigation
// clamps the day-of-month, so Jan 31 moves to Feb 28 (or 29), never Mar 2.
func Next(reference wallclock.CivilDate, view ViewMode) wallclock.CivilDate {
	return step(reference, view, 1)
}

// Prev moves the reference date back by one view period, with the same
// day-of-month clamping as Next.
func Prev(reference wallclock.CivilDate, view ViewMode) wallclock.CivilDate {
	return step(reference, view, -1)
}

func step(reference wallclock.CivilDate, view ViewMode, dir int) wallclock.CivilDate {
	switch view {
	case ViewWeek:
		return reference.AddDays(7 * dir)
	case ViewMonth:
		return reference.AddMonths(dir)
	default:
		return reference.AddDays(dir)
	}
}

// Today returns the wall-clock date of now, in now's own location.
func Today(now time.Time) wallclock.CivilDate {
	return wallclock.DateOf(now)
}
