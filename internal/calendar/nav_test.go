package calendar

import (
	"testing"
	"time"
)

func TestNextPrevDay(t *testing.T) {
	d := date(2025, time.August, 31)
	if got := Next(d, ViewDay); got != date(2025, time.September, 1) {
		t.Errorf("Next day = %v", got)
	}
	if got := Prev(Next(d, ViewDay), ViewDay); got != d {
		t.Errorf("Prev(Next(d)) = %v, want %v", got, d)
	}
}

func TestNextPrevWeek(t *testing.T) {
	d := date(2025, time.August, 25)
	if got := Next(d, ViewWeek); got != date(2025, time.September, 1) {
		t.Errorf("Next week = %v", got)
	}
	if got := Prev(d, ViewWeek); got != date(2025, time.August, 18) {
		t.Errorf("Prev week = %v", got)
	}
}

func TestNextPrevDayWeekInverse(t *testing.T) {
	for _, view := range []ViewMode{ViewDay, ViewWeek} {
		for day := 1; day <= 28; day++ {
			d := date(2025, time.February, day)
			if got := Prev(Next(d, view), view); got != d {
				t.Errorf("%s: Prev(Next(%v)) = %v", view, d, got)
			}
			if got := Next(Prev(d, view), view); got != d {
				t.Errorf("%s: Next(Prev(%v)) = %v", view, d, got)
			}
		}
	}
}

func TestNextMonthClampsDay(t *testing.T) {
	if got := Next(date(2025, time.January, 31), ViewMonth); got != date(2025, time.February, 28) {
		t.Errorf("Jan 31 -> %v, want Feb 28", got)
	}
	if got := Next(date(2024, time.January, 31), ViewMonth); got != date(2024, time.February, 29) {
		t.Errorf("leap Jan 31 -> %v, want Feb 29", got)
	}
	if got := Prev(date(2025, time.March, 31), ViewMonth); got != date(2025, time.February, 28) {
		t.Errorf("Mar 31 back -> %v, want Feb 28", got)
	}
}

func TestMonthNavInverseForSafeDays(t *testing.T) {
	// Days 1..28 exist in every month, so month navigation inverts cleanly.
	for day := 1; day <= 28; day++ {
		d := date(2025, time.January, day)
		if got := Prev(Next(d, ViewMonth), ViewMonth); got != d {
			t.Errorf("Prev(Next(%v)) = %v", d, got)
		}
	}
}

func TestNextMonthYearBoundary(t *testing.T) {
	if got := Next(date(2025, time.December, 15), ViewMonth); got != date(2026, time.January, 15) {
		t.Errorf("Dec -> %v", got)
	}
	if got := Prev(date(2025, time.January, 15), ViewMonth); got != date(2024, time.December, 15) {
		t.Errorf("Jan back -> %v", got)
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("plus9", 9*3600)
	now := time.Date(2025, time.August, 25, 23, 30, 0, 0, loc)
	if got := Today(now); got != date(2025, time.August, 25) {
		t.Errorf("Today = %v", got)
	}
}
