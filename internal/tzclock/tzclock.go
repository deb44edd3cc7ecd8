// Package tzclock normalises timestamps coming from the system of record and
// compares or renders instants against an explicit IANA zone.
//
// Upstream always emits naive timestamps that are implicitly UTC, so a string
// without an offset is read as UTC, never as local time. Nothing here reads the
// process clock or the process zone: callers pass now and the zone in.
package tzclock

import (
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"cloud.google.com/go/civil"
)

var zoneSuffix = regexp.MustCompile(`(?i)(z|[+-]\d{2}(:?\d{2})?)$`)

var zonedLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
}

// ToInstant parses a timestamp string into an absolute instant in UTC.
// Date-only input becomes UTC midnight. ok is false for malformed input.
func ToInstant(raw string) (t time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d.In(time.UTC), true
	}

	s = strings.Replace(s, " ", "T", 1)
	if !strings.Contains(s, "T") {
		return time.Time{}, false
	}
	if !zoneSuffix.MatchString(s) {
		s += "Z"
	}
	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// ResolveZone loads an IANA zone, falling back to UTC for empty or unknown ids.
func ResolveZone(id string) *time.Location {
	return ResolveZoneOr(id, time.UTC)
}

// ResolveZoneOr is ResolveZone with a caller-chosen fallback. A nil fallback
// means UTC.
func ResolveZoneOr(id string, fallback *time.Location) *time.Location {
	fallback = zoneOrUTC(fallback)
	if id == "" {
		return fallback
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return fallback
	}
	return loc
}

// KnownZone reports whether id names a loadable IANA zone.
func KnownZone(id string) bool {
	if id == "" {
		return false
	}
	_, err := time.LoadLocation(id)
	return err == nil
}

// ParseClock reads a time of day written as HH:MM or HH:MM:SS.
func ParseClock(raw string) (civil.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return civil.TimeOf(t), true
		}
	}
	return civil.Time{}, false
}

func zoneOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// StartOfDay returns midnight of the calendar day containing t as observed in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	loc = zoneOrUTC(loc)
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	return DateIn(a, loc) == DateIn(b, loc)
}

// DateIn is the calendar date of t in loc.
func DateIn(t time.Time, loc *time.Location) civil.Date {
	return civil.DateOf(t.In(zoneOrUTC(loc)))
}

// Today is the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	return DateIn(now, loc)
}

// At combines a calendar date and a wall-clock time in loc into an instant.
func At(d civil.Date, tod civil.Time, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, tod.Second, tod.Nanosecond, zoneOrUTC(loc))
}
