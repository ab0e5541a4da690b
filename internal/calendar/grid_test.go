package calendar

import (
	"reflect"
	"testing"
	"time"

	"github.com/dentms/dentms/internal/wallclock"
)

func date(y int, m time.Month, d int) wallclock.CivilDate {
	return wallclock.CivilDate{Year: y, Month: m, Day: d}
}

func event(id string, d wallclock.CivilDate, hour, minute, dur int) Event {
	return Event{
		ID:              id,
		PatientID:       "pat-" + id,
		DentistID:       "den-1",
		Start:           d.At(hour, minute),
		DurationMinutes: dur,
		Status:          "scheduled",
	}
}

func TestDayGridGeometry(t *testing.T) {
	ref := date(2025, time.August, 25)
	g := ComputeGrid(ref, ViewDay, nil, DefaultOptions())
	if g.View != ViewDay {
		t.Fatalf("view = %s", g.View)
	}
	if len(g.Days) != 1 || g.Days[0].Date != ref {
		t.Fatalf("days = %+v", g.Days)
	}
	// 08:00-18:00 at 30 minute steps.
	if g.Rows != 20 {
		t.Errorf("rows = %d, want 20", g.Rows)
	}
}

func TestDayGridPlacement(t *testing.T) {
	ref := date(2025, time.August, 25)
	ev := event("a", ref, 9, 30, 60)
	g := ComputeGrid(ref, ViewDay, []Event{ev}, DefaultOptions())
	if len(g.Days[0].Events) != 1 {
		t.Fatalf("events = %+v", g.Days[0].Events)
	}
	p := g.Days[0].Events[0]
	if p.RowStart != 3 || p.RowSpan != 2 {
		t.Errorf("placement row=%d span=%d, want 3/2", p.RowStart, p.RowSpan)
	}
	if p.Clamped {
		t.Error("in-window event marked clamped")
	}
}

func TestDayGridClampsOutOfWindow(t *testing.T) {
	ref := date(2025, time.August, 25)
	early := event("a", ref, 6, 0, 30)   // before MinHour
	late := event("b", ref, 21, 0, 30)   // after MaxHour
	long := event("c", ref, 17, 30, 120) // runs past MaxHour
	g := ComputeGrid(ref, ViewDay, []Event{early, late, long}, DefaultOptions())
	if got := len(g.Days[0].Events); got != 3 {
		t.Fatalf("out-of-window events dropped: %d of 3 placed", got)
	}
	for _, p := range g.Days[0].Events {
		if !p.Clamped {
			t.Errorf("event %s should be clamped", p.ID)
		}
		if p.RowStart < 0 || p.RowStart+p.RowSpan > g.Rows {
			t.Errorf("event %s outside grid: row=%d span=%d", p.ID, p.RowStart, p.RowSpan)
		}
		if p.RowSpan < 1 {
			t.Errorf("event %s has zero span", p.ID)
		}
	}
}

func TestOverlapColumns(t *testing.T) {
	ref := date(2025, time.August, 25)
	// a and b overlap; c starts when a ends and reuses a's column slot.
	a := event("a", ref, 9, 0, 60)
	b := event("b", ref, 9, 30, 60)
	c := event("c", ref, 10, 0, 30)
	g := ComputeGrid(ref, ViewDay, []Event{c, b, a}, DefaultOptions())
	placed := g.Days[0].Events

	byID := map[string]PlacedEvent{}
	for _, p := range placed {
		byID[p.ID] = p
	}
	if byID["a"].Column == byID["b"].Column {
		t.Error("overlapping events share a column")
	}
	if byID["a"].Columns != 2 || byID["b"].Columns != 2 || byID["c"].Columns != 2 {
		t.Errorf("cluster width: a=%d b=%d c=%d, want 2",
			byID["a"].Columns, byID["b"].Columns, byID["c"].Columns)
	}
	if byID["c"].Column != byID["a"].Column {
		t.Error("freed column not reused")
	}
}

func TestDisjointEventsSingleColumn(t *testing.T) {
	ref := date(2025, time.August, 25)
	a := event("a", ref, 9, 0, 30)
	b := event("b", ref, 11, 0, 30)
	g := ComputeGrid(ref, ViewDay, []Event{a, b}, DefaultOptions())
	for _, p := range g.Days[0].Events {
		if p.Columns != 1 || p.Column != 0 {
			t.Errorf("event %s: col=%d of %d, want 0 of 1", p.ID, p.Column, p.Columns)
		}
	}
}

func TestGridDeterministic(t *testing.T) {
	ref := date(2025, time.August, 25)
	evs := []Event{
		event("b", ref, 9, 0, 60),
		event("a", ref, 9, 0, 60),
		event("c", ref, 14, 0, 30),
	}
	g1 := ComputeGrid(ref, ViewDay, evs, DefaultOptions())
	// Different input order, same set.
	g2 := ComputeGrid(ref, ViewDay, []Event{evs[2], evs[0], evs[1]}, DefaultOptions())
	if !reflect.DeepEqual(g1, g2) {
		t.Error("grid depends on input order")
	}
	// Ties break on id.
	if g1.Days[0].Events[0].ID != "a" {
		t.Errorf("first event = %s, want a", g1.Days[0].Events[0].ID)
	}
}

func TestGridDoesNotMutateInput(t *testing.T) {
	ref := date(2025, time.August, 25)
	evs := []Event{event("b", ref, 10, 0, 30), event("a", ref, 9, 0, 30)}
	snapshot := append([]Event(nil), evs...)
	ComputeGrid(ref, ViewDay, evs, DefaultOptions())
	if !reflect.DeepEqual(evs, snapshot) {
		t.Error("input slice mutated")
	}
}

func TestWeekGrid(t *testing.T) {
	// Monday Aug 25 2025; reference mid-week.
	ref := date(2025, time.August, 27)
	mon := date(2025, time.August, 25)
	sun := date(2025, time.August, 31)
	evs := []Event{
		event("a", mon, 9, 0, 30),
		event("b", sun, 9, 0, 30),
		event("x", date(2025, time.September, 1), 9, 0, 30), // next week
	}
	g := ComputeGrid(ref, ViewWeek, evs, DefaultOptions())
	if len(g.Days) != 7 {
		t.Fatalf("week has %d days", len(g.Days))
	}
	if g.Days[0].Date != mon || g.Days[6].Date != sun {
		t.Errorf("week span %v..%v, want %v..%v", g.Days[0].Date, g.Days[6].Date, mon, sun)
	}
	total := 0
	for _, d := range g.Days {
		total += len(d.Events)
	}
	if total != 2 {
		t.Errorf("placed %d events in week, want 2", total)
	}
}

func TestWeekStartSunday(t *testing.T) {
	opts := DefaultOptions()
	opts.WeekStart = time.Sunday
	g := ComputeGrid(date(2025, time.August, 27), ViewWeek, nil, opts)
	if g.Days[0].Date != date(2025, time.August, 24) {
		t.Errorf("sunday-start week begins %v", g.Days[0].Date)
	}
}

func TestMonthGridShape(t *testing.T) {
	// August 2025: Fri Aug 1 .. Sun Aug 31, Monday weeks -> Jul 28 .. Aug 31.
	g := ComputeGrid(date(2025, time.August, 15), ViewMonth, nil, DefaultOptions())
	if len(g.Weeks) != 5 {
		t.Fatalf("weeks = %d, want 5", len(g.Weeks))
	}
	first := g.Weeks[0].Cells[0]
	last := g.Weeks[len(g.Weeks)-1].Cells[6]
	if first.Date != date(2025, time.July, 28) {
		t.Errorf("first cell %v", first.Date)
	}
	if last.Date != date(2025, time.August, 31) {
		t.Errorf("last cell %v", last.Date)
	}
	if first.InMonth {
		t.Error("leading day marked in-month")
	}
	if !last.InMonth {
		t.Error("Aug 31 not marked in-month")
	}

	inMonth := 0
	for _, w := range g.Weeks {
		for _, c := range w.Cells {
			if c.InMonth {
				inMonth++
			}
		}
	}
	if inMonth != 31 {
		t.Errorf("in-month cells = %d, want 31", inMonth)
	}
}

func TestMonthGridSixWeeks(t *testing.T) {
	// November 2025 starts on a Saturday and has 30 days; with Monday weeks
	// it needs 6 rows.
	g := ComputeGrid(date(2025, time.November, 10), ViewMonth, nil, DefaultOptions())
	if len(g.Weeks) != 6 {
		t.Errorf("weeks = %d, want 6", len(g.Weeks))
	}
}

func TestMonthCellOverflow(t *testing.T) {
	d := date(2025, time.August, 25)
	evs := []Event{
		event("d", d, 12, 0, 30),
		event("a", d, 9, 0, 30),
		event("c", d, 11, 0, 30),
		event("b", d, 10, 0, 30),
		event("e", d, 13, 0, 30),
	}
	g := ComputeGrid(d, ViewMonth, evs, DefaultOptions())

	var cell Cell
	for _, w := range g.Weeks {
		for _, c := range w.Cells {
			if c.Date == d {
				cell = c
			}
		}
	}
	if len(cell.Events) != 3 || cell.Overflow != 2 {
		t.Fatalf("cell holds %d events overflow %d, want 3/2", len(cell.Events), cell.Overflow)
	}
	// Earliest events win the visible slots.
	if cell.Events[0].ID != "a" || cell.Events[1].ID != "b" || cell.Events[2].ID != "c" {
		t.Errorf("visible events %s %s %s", cell.Events[0].ID, cell.Events[1].ID, cell.Events[2].ID)
	}
	if len(cell.Events)+cell.Overflow != len(evs) {
		t.Error("overflow loses the total count")
	}
}

func TestOptionsNormalization(t *testing.T) {
	g := ComputeGrid(date(2025, time.August, 25), ViewDay, nil, Options{})
	if g.Options.StepMinutes != 30 || g.Options.MaxPerCell != 3 {
		t.Errorf("zero options = %+v", g.Options)
	}
	if g.Rows <= 0 {
		t.Errorf("rows = %d", g.Rows)
	}
	// Inverted window falls back rather than producing a negative row count.
	g = ComputeGrid(date(2025, time.August, 25), ViewDay, nil, Options{MinHour: 20, MaxHour: 8})
	if g.Rows <= 0 {
		t.Errorf("rows = %d", g.Rows)
	}
}

func TestUnknownViewFallsBackToDay(t *testing.T) {
	g := ComputeGrid(date(2025, time.August, 25), ViewMode("agenda"), nil, DefaultOptions())
	if g.View != ViewDay || len(g.Days) != 1 {
		t.Errorf("unknown view: %s with %d days", g.View, len(g.Days))
	}
}
