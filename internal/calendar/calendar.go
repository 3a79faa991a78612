// Package calendar computes timezone-aware calendar windows for reports.
//
// All datetimes produced here are naive local datetimes: the wall-clock
// fields carry the local time in the requested zone and the location is
// always time.UTC. This is the representation stored in TIMESTAMP
// (without time zone) columns.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrParse           = errors.New("parse error")
)

// LocalDateTimeLayout is the ISO-8601 local datetime layout used on the wire.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var localDateTimeLayouts = []string{
	LocalDateTimeLayout,
	"2006-01-02T15:04",
}

// Window is a half-open interval [Start, End) of naive local datetimes.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) String() string {
	return w.Start.Format(LocalDateTimeLayout) + "/" + w.End.Format(LocalDateTimeLayout)
}

// Snapshot holds every window derived from a single reading of "now".
type Snapshot struct {
	Date  Date
	Today Window
	Week  Window
	Month Window
}

// ResolveZone loads a zone by IANA name or fixed-offset ID. Offset IDs are
// "Z", "+h", "+hh", "+hh:mm", "+hhmm", "+hh:mm:ss", "+hhmmss", optionally
// prefixed by "UTC", "GMT" or "UT", and are bounded by 18 hours. Names are
// not trimmed.
func ResolveZone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	if loc, ok := fixedOffsetZone(name); ok {
		return loc, nil
	}
	if strings.TrimSpace(name) != name {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

const maxOffsetSeconds = 18 * 60 * 60

func fixedOffsetZone(name string) (*time.Location, bool) {
	if name == "Z" {
		return time.FixedZone(name, 0), true
	}
	offset := name
	for _, prefix := range []string{"UTC", "GMT", "UT"} {
		if strings.HasPrefix(name, prefix) {
			offset = name[len(prefix):]
			break
		}
	}
	if offset == "" || (offset[0] != '+' && offset[0] != '-') {
		return nil, false
	}
	secs, ok := parseOffset(offset[1:])
	if !ok || secs > maxOffsetSeconds {
		return nil, false
	}
	if offset[0] == '-' {
		secs = -secs
	}
	return time.FixedZone(name, secs), true
}

// parseOffset reads h, hh, hh:mm, hhmm, hh:mm:ss or hhmmss into seconds.
func parseOffset(s string) (int, bool) {
	var parts []string
	switch {
	case len(s) == 1 || len(s) == 2:
		parts = []string{s}
	case len(s) == 4:
		parts = []string{s[:2], s[2:]}
	case len(s) == 6:
		parts = []string{s[:2], s[2:4], s[4:]}
	case len(s) == 5 && s[2] == ':':
		parts = []string{s[:2], s[3:]}
	case len(s) == 8 && s[2] == ':' && s[5] == ':':
		parts = []string{s[:2], s[3:5], s[6:]}
	default:
		return 0, false
	}

	total := 0
	for i, p := range parts {
		n := 0
		for _, r := range p {
			if r < '0' || r > '9' {
				return 0, false
			}
			n = n*10 + int(r-'0')
		}
		if i > 0 && n > 59 {
			return 0, false
		}
		total = total*60 + n
	}
	for i := len(parts); i < 3; i++ {
		total *= 60
	}
	return total, true
}

// Naive converts an instant into the naive local datetime it shows in loc.
func Naive(loc *time.Location, now time.Time) time.Time {
	l := now.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}

// LocalDate returns the calendar date of now in loc.
func LocalDate(loc *time.Location, now time.Time) Date {
	return DateOf(now.In(loc))
}

// Today returns [today 00:00, tomorrow 00:00).
func Today(loc *time.Location, now time.Time) Window {
	return todayOf(LocalDate(loc, now))
}

// Week returns the ISO week containing now, Monday 00:00 to the next Monday 00:00.
func Week(loc *time.Location, now time.Time) Window {
	return weekOf(LocalDate(loc, now))
}

// Month returns [1st of this month 00:00, 1st of next month 00:00).
func Month(loc *time.Location, now time.Time) Window {
	return monthOf(LocalDate(loc, now))
}

// At evaluates now once and derives the date and all windows from it.
func At(loc *time.Location, now time.Time) Snapshot {
	d := LocalDate(loc, now)
	return Snapshot{
		Date:  d,
		Today: todayOf(d),
		Week:  weekOf(d),
		Month: monthOf(d),
	}
}

// RangeFromDates converts an inclusive date range into datetimes covering
// the whole end date: [start 00:00, end+1 00:00 - 1ns].
//
// Unlike the other windows the end bound is inclusive.
func RangeFromDates(start, end Date) Window {
	return Window{
		Start: start.Midnight(),
		End:   end.AddDays(1).Midnight().Add(-time.Nanosecond),
	}
}

// ParseLocalDateTimeOr parses an ISO local datetime, returning fallback for
// a blank input.
func ParseLocalDateTimeOr(fallback time.Time, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return ParseLocalDateTime(s)
}

// ParseLocalDateTime parses an ISO local datetime with minute or second
// precision. Fractional seconds are accepted.
func ParseLocalDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid local datetime %q", ErrParse, s)
}

func todayOf(d Date) Window {
	return Window{Start: d.Midnight(), End: d.AddDays(1).Midnight()}
}

func weekOf(d Date) Window {
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := d.AddDays(1 - wd)
	return Window{Start: monday.Midnight(), End: monday.AddDays(7).Midnight()}
}

func monthOf(d Date) Window {
	first := Date{Year: d.Year, Month: d.Month, Day: 1}
	return Window{Start: first.Midnight(), End: first.Midnight().AddDate(0, 1, 0)}
}
