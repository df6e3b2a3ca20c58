// Package calendar resolves instants to civil dates and week boundaries on the
// clock of a single fixed IANA time zone.
package calendar

import (
	"fmt"
	"time"
)

const DefaultZone = "America/New_York"

// Date is a civil calendar date: a (year, month, day) triple with no time zone
// attached. Two instants in different zones can disagree about which Date they
// fall on; a Date itself is unambiguous.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// MarshalText renders the date as "YYYY-MM-DD", which is also how it travels
// in JSON bodies and SQL parameters.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddDays returns the date n calendar days after d (n may be negative). The
// arithmetic is purely civil: it normalizes through time.Date and never touches
// a zone offset, so it cannot drift across DST transitions.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Compare returns -1, 0, or 1 ordering d against other chronologically.
func (d Date) Compare(other Date) int {
	a := d.String()
	b := other.String()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

// Weekday returns ISO day numbering for the civil date: Monday=1 .. Sunday=7.
// The weekday of a calendar date does not depend on any zone.
func (d Date) Weekday() int {
	wd := int(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Resolver converts instants to civil dates on one fixed zone's clock.
type Resolver struct {
	loc *time.Location
}

func NewResolver(zone string) (*Resolver, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", zone, err)
	}
	return &Resolver{loc: loc}, nil
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// CivilDate returns the calendar date the instant falls on in the resolver's
// zone. The zone offset varies with DST; time.Location carries the full rule
// table, so this is correct on both sides of a transition.
func (r *Resolver) CivilDate(instant time.Time) Date {
	t := instant.In(r.loc)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// WeekStart returns the most recent Monday at or before CivilDate(instant).
// The weekday is taken from the civil date, not from the UTC instant, and the
// subtraction is civil-date arithmetic rather than epoch math.
func (r *Resolver) WeekStart(instant time.Time) Date {
	d := r.CivilDate(instant)
	return d.AddDays(-(d.Weekday() - 1))
}
