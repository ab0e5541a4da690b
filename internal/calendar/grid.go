// Package calendar computes day, week and month grid layouts for appointment
// events. Everything here is pure: grids are derived from the inputs alone,
// events are never mutated, and identical inputs always produce identical
// output, including ordering.
package calendar

import (
	"sort"
	"time"

	"github.com/dentms/dentms/internal/wallclock"
)

// ViewMode selects the grid shape.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// Valid reports whether v is a known view mode.
func (v ViewMode) Valid() bool {
	return v == ViewDay || v == ViewWeek || v == ViewMonth
}

// Options controls grid geometry. Zero fields fall back to defaults.
type Options struct {
	MinHour     int          // first hour shown in day/week views
	MaxHour     int          // hour after the last row in day/week views
	StepMinutes int          // row height in minutes
	WeekStart   time.Weekday // first column of week/month views
	MaxPerCell  int          // visible events per month cell before overflow
}

// DefaultOptions is the working-hours grid most clinics want.
func DefaultOptions() Options {
	return Options{
		MinHour:     8,
		MaxHour:     18,
		StepMinutes: 30,
		WeekStart:   time.Monday,
		MaxPerCell:  3,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.StepMinutes <= 0 {
		o.StepMinutes = def.StepMinutes
	}
	if o.MaxPerCell <= 0 {
		o.MaxPerCell = def.MaxPerCell
	}
	if o.MinHour < 0 || o.MinHour > 23 {
		o.MinHour = def.MinHour
	}
	if o.MaxHour <= o.MinHour || o.MaxHour > 24 {
		o.MaxHour = def.MaxHour
		if o.MaxHour <= o.MinHour {
			o.MaxHour = 24
		}
	}
	return o
}

// Event is the calendar's view of an appointment. Status is the lifecycle
// status string; the grid itself does not interpret it.
type Event struct {
	ID              string
	PatientID       string
	DentistID       string
	Start           wallclock.CivilInstant
	DurationMinutes int
	Status          string
	Reason          string
}

// End returns the minute-of-day the event finishes, capped at end of day.
func (e Event) End() int {
	end := e.Start.MinuteOfDay() + e.DurationMinutes
	if end > 24*60 {
		end = 24 * 60
	}
	return end
}

// PlacedEvent is an event positioned on a day/week time grid. Events in the
// same overlap cluster share a Columns count and get distinct Column indexes
// so they render side by side.
type PlacedEvent struct {
	Event
	RowStart int // index of the first row the event occupies
	RowSpan  int // number of rows covered, at least 1
	Column   int // 0-based column within the overlap cluster
	Columns  int // total columns in the overlap cluster
	Clamped  bool // start or end fell outside the visible hour window
}

// Day is one column of a day or week grid.
type Day struct {
	Date   wallclock.CivilDate
	Events []PlacedEvent
}

// Cell is one day of a month grid. Events holds at most MaxPerCell entries;
// Overflow counts the rest, so len(Events)+Overflow is the day's total.
type Cell struct {
	Date     wallclock.CivilDate
	InMonth  bool
	Events   []Event
	Overflow int
}

// Week is one row of a month grid.
type Week struct {
	Cells [7]Cell
}

// Grid is the computed layout for one view of the calendar.
type Grid struct {
	View      ViewMode
	Reference wallclock.CivilDate
	Options   Options
	Rows      int    // row count for day/week views, 0 for month
	Days      []Day  // day view: 1 entry; week view: 7; month: nil
	Weeks     []Week // month view: 4 to 6 entries; otherwise nil
}

// ComputeGrid lays out events for the view containing reference. Events that
// do not fall inside the view's date range are ignored; every event inside
// the range appears exactly once (month cells may fold it into Overflow, but
// the count is preserved). The input slice is left untouched.
func ComputeGrid(reference wallclock.CivilDate, view ViewMode, events []Event, opts Options) Grid {
	opts = opts.normalized()
	g := Grid{View: view, Reference: reference, Options: opts}

	switch view {
	case ViewWeek:
		start := weekStart(reference, opts.WeekStart)
		g.Rows = rowCount(opts)
		g.Days = make([]Day, 7)
		for i := range g.Days {
			date := start.AddDays(i)
			g.Days[i] = Day{Date: date, Events: placeDay(date, events, opts)}
		}
	case ViewMonth:
		g.Weeks = monthWeeks(reference, events, opts)
	default: // day view, also the fallback for unknown modes
		g.View = ViewDay
		g.Rows = rowCount(opts)
		g.Days = []Day{{Date: reference, Events: placeDay(reference, events, opts)}}
	}
	return g
}

func rowCount(o Options) int {
	return ((o.MaxHour - o.MinHour) * 60) / o.StepMinutes
}

// weekStart returns the most recent date on weekday start, on or before d.
func weekStart(d wallclock.CivilDate, start time.Weekday) wallclock.CivilDate {
	back := (int(d.Weekday()) - int(start) + 7) % 7
	return d.AddDays(-back)
}

// eventsOn collects the events starting on date, sorted by start minute then
// id so layout is deterministic.
func eventsOn(date wallclock.CivilDate, events []Event) []Event {
	var out []Event
	for _, e := range events {
		if e.Start.Date() == date {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Start.MinuteOfDay() != b.Start.MinuteOfDay() {
			return a.Start.MinuteOfDay() < b.Start.MinuteOfDay()
		}
		return a.ID < b.ID
	})
	return out
}

// placeDay positions one day's events onto the time grid. Events outside the
// visible hour window are clamped onto the first or last row rather than
// dropped, and flagged Clamped.
func placeDay(date wallclock.CivilDate, events []Event, o Options) []PlacedEvent {
	day := eventsOn(date, events)
	if len(day) == 0 {
		return nil
	}

	rows := rowCount(o)
	winStart := o.MinHour * 60
	placed := make([]PlacedEvent, len(day))
	for i, e := range day {
		p := PlacedEvent{Event: e}
		startMin := e.Start.MinuteOfDay()
		endMin := e.End()

		row := (startMin - winStart) / o.StepMinutes
		if row < 0 {
			row = 0
			p.Clamped = true
		}
		if row > rows-1 {
			row = rows - 1
			p.Clamped = true
		}
		span := (endMin - winStart + o.StepMinutes - 1) / o.StepMinutes - row
		if row+span > rows {
			span = rows - row
			p.Clamped = true
		}
		if span < 1 {
			span = 1
		}
		p.RowStart = row
		p.RowSpan = span
		placed[i] = p
	}

	layoutColumns(placed)
	return placed
}

// layoutColumns assigns side-by-side columns within clusters of transitively
// overlapping events. Input must be sorted by start minute then id.
func layoutColumns(placed []PlacedEvent) {
	clusterFrom := 0
	clusterEnd := -1 // latest end minute within the current cluster
	maxCol := 0
	colEnds := []int{} // per-column latest end minute

	flush := func(upto int) {
		for i := clusterFrom; i < upto; i++ {
			placed[i].Columns = maxCol
		}
	}

	for i := range placed {
		start := placed[i].Start.MinuteOfDay()
		if i > clusterFrom && start >= clusterEnd {
			flush(i)
			clusterFrom = i
			clusterEnd = -1
			colEnds = colEnds[:0]
			maxCol = 0
		}

		col := -1
		for ci, end := range colEnds {
			if start >= end {
				col = ci
				break
			}
		}
		if col < 0 {
			col = len(colEnds)
			colEnds = append(colEnds, 0)
		}
		colEnds[col] = placed[i].End()
		placed[i].Column = col
		if col+1 > maxCol {
			maxCol = col + 1
		}
		if placed[i].End() > clusterEnd {
			clusterEnd = placed[i].End()
		}
	}
	flush(len(placed))
}

// monthWeeks builds whole-week rows covering the reference month, padded with
// leading and trailing out-of-month days.
func monthWeeks(reference wallclock.CivilDate, events []Event, o Options) []Week {
	first := wallclock.CivilDate{Year: reference.Year, Month: reference.Month, Day: 1}
	last := wallclock.CivilDate{Year: reference.Year, Month: reference.Month, Day: first.DaysInMonth()}

	cur := weekStart(first, o.WeekStart)
	var weeks []Week
	for !last.Before(cur) {
		var w Week
		for i := 0; i < 7; i++ {
			w.Cells[i] = monthCell(cur, reference, events, o)
			cur = cur.AddDays(1)
		}
		weeks = append(weeks, w)
	}
	return weeks
}

func monthCell(date, reference wallclock.CivilDate, events []Event, o Options) Cell {
	day := eventsOn(date, events)
	cell := Cell{
		Date:    date,
		InMonth: date.Month == reference.Month && date.Year == reference.Year,
	}
	if len(day) > o.MaxPerCell {
		cell.Events = day[:o.MaxPerCell]
		cell.Overflow = len(day) - o.MaxPerCell
	} else {
		cell.Events = day
	}
	return cell
}
