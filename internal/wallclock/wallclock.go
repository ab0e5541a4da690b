// Package wallclock owns the conversion between the wire timestamp format and
// civil (timezone-free) date/time values. The appointment store labels its
// timestamps UTC, but by convention the calendar fields hold "the time the
// receptionist typed" with no timezone meaning. Every layer that touches a
// scheduled time goes through Decode/Encode; nothing else in the codebase is
// allowed to do UTC/local arithmetic on appointment times.
package wallclock

import (
	"fmt"
	"time"
)

// literalLayout covers the calendar-field portion of an RFC 3339 timestamp,
// i.e. everything before the offset suffix.
const literalLayout = "2006-01-02T15:04:05"

// dateLayout is the wire format for plain civil dates (query parameters).
const dateLayout = "2006-01-02"

// CivilInstant is a wall-clock date and time with no timezone attached:
// "the clock read 16:00 on Aug 25". It is minute-granular.
type CivilInstant struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Day    int        `json:"day"`
	Hour   int        `json:"hour"`
	Minute int        `json:"minute"`
}

// CivilDate is a wall-clock calendar date with no timezone attached.
type CivilDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// MalformedTimestampError reports a wire timestamp that could not be parsed.
// The codec never substitutes "now" or a default for bad input.
type MalformedTimestampError struct {
	Input string
	Err   error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q: %v", e.Input, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error { return e.Err }

// Decode interprets the wire timestamp's calendar fields as a civil instant.
// The offset suffix ("Z", "+02:00", ...) is validated but discarded: the
// digits the receptionist typed are the value, regardless of which zone label
// the storage layer stamped on them. Seconds are truncated. Decode is the
// exact inverse of Encode.
func Decode(wire string) (CivilInstant, error) {
	if _, err := time.Parse(time.RFC3339, wire); err != nil {
		return CivilInstant{}, &MalformedTimestampError{Input: wire, Err: err}
	}
	t, err := time.ParseInLocation(literalLayout, wire[:len(literalLayout)], time.UTC)
	if err != nil {
		return CivilInstant{}, &MalformedTimestampError{Input: wire, Err: err}
	}
	return CivilInstant{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}, nil
}

// Encode packages the civil fields back into the wire format's UTC-labelled
// fields unchanged. No local-timezone conversion is applied.
func Encode(c CivilInstant) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00Z",
		c.Year, int(c.Month), c.Day, c.Hour, c.Minute)
}

// FromTime reads the wall-clock fields of t in t's own location. It is the
// storage-boundary adapter for drivers that hand back civil columns as
// time.Time values.
func FromTime(t time.Time) CivilInstant {
	return CivilInstant{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// UTC renders the civil fields as a time.Time in the UTC location. Only the
// storage layer may use this, to write TIMESTAMP (without time zone) columns.
func (c CivilInstant) UTC() time.Time {
	return time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// IsZero reports whether the instant is the zero value.
func (c CivilInstant) IsZero() bool { return c == CivilInstant{} }

// Date returns the calendar-date portion of the instant.
func (c CivilInstant) Date() CivilDate {
	return CivilDate{Year: c.Year, Month: c.Month, Day: c.Day}
}

// MinuteOfDay returns minutes since midnight.
func (c CivilInstant) MinuteOfDay() int { return c.Hour*60 + c.Minute }

// Before reports whether c is earlier than o.
func (c CivilInstant) Before(o CivilInstant) bool {
	if c.Date() != o.Date() {
		return c.Date().Before(o.Date())
	}
	return c.MinuteOfDay() < o.MinuteOfDay()
}

func (c CivilInstant) String() string { return Encode(c) }

// MarshalJSON emits the wire timestamp so that every serialization path runs
// through the codec.
func (c CivilInstant) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Encode(c) + `"`), nil
}

// UnmarshalJSON parses the wire timestamp through Decode.
func (c *CivilInstant) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return &MalformedTimestampError{Input: string(data), Err: fmt.Errorf("expected JSON string")}
	}
	decoded, err := Decode(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// ParseDate parses a "2006-01-02" civil date.
func ParseDate(s string) (CivilDate, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return CivilDate{}, &MalformedTimestampError{Input: s, Err: err}
	}
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf reads the wall-clock date of t in t's own location.
func DateOf(t time.Time) CivilDate {
	return CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is the zero value.
func (d CivilDate) IsZero() bool { return d == CivilDate{} }

// At combines the date with a time of day.
func (d CivilDate) At(hour, minute int) CivilInstant {
	return CivilInstant{Year: d.Year, Month: d.Month, Day: d.Day, Hour: hour, Minute: minute}
}

// Weekday returns the day of the week.
func (d CivilDate) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Before reports whether d is earlier than o.
func (d CivilDate) Before(o CivilDate) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// AddDays returns the date shifted by n days, normalizing across month and
// year boundaries.
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// DaysInMonth returns the number of days in the date's month.
func (d CivilDate) DaysInMonth() int {
	return time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths returns the date shifted by n months, clamping the day-of-month
// so that e.g. Jan 31 + 1 month is Feb 28/29, never Mar 2/3.
func (d CivilDate) AddMonths(n int) CivilDate {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	target := CivilDate{Year: first.Year(), Month: first.Month(), Day: 1}
	day := d.Day
	if max := target.DaysInMonth(); day > max {
		day = max
	}
	target.Day = day
	return target
}
