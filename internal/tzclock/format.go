package tzclock

import (
	"time"

	"golang.org/x/text/language"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
)

type layoutSet struct {
	time string
	date string
}

// First entry is the fallback when nothing matches.
var (
	supportedLocales = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
	}
	localeLayouts = []layoutSet{
		{time: "3:04 PM", date: "Jan 2, 2006"},
		{time: "15:04", date: "2 Jan 2006"},
		{time: "15:04", date: "02.01.2006"},
		{time: "15:04", date: "02/01/2006"},
		{time: "15:04", date: "02/01/2006"},
	}
	localeMatcher = language.NewMatcher(supportedLocales)
)

// Formatter renders instants with the layouts of one locale.
type Formatter struct {
	locale  language.Tag
	layouts layoutSet
}

// NewFormatter picks the closest supported locale for a BCP 47 tag such as
// "en-GB" or "de". Unparseable tags get the en-US layouts.
func NewFormatter(locale string) Formatter {
	idx := 0
	if tag, err := language.Parse(locale); err == nil {
		_, idx, _ = localeMatcher.Match(tag)
	}
	return Formatter{locale: supportedLocales[idx], layouts: localeLayouts[idx]}
}

var defaultFormatter = NewFormatter("en-US")

func (f Formatter) Locale() string {
	return f.locale.String()
}

func (f Formatter) FormatTime(t time.Time, loc *time.Location) string {
	return t.In(zoneOrUTC(loc)).Format(f.layouts.time)
}

func (f Formatter) FormatDate(t time.Time, loc *time.Location) string {
	return t.In(zoneOrUTC(loc)).Format(f.layouts.date)
}

// DateSeparatorLabel returns "Today", "Yesterday" or the formatted date of t,
// comparing calendar days in loc.
func (f Formatter) DateSeparatorLabel(t time.Time, loc *time.Location, now time.Time) string {
	day := DateIn(t, loc)
	today := Today(now, loc)
	switch day {
	case today:
		return LabelToday
	case today.AddDays(-1):
		return LabelYesterday
	default:
		return f.FormatDate(t, loc)
	}
}

func FormatTime(t time.Time, loc *time.Location) string {
	return defaultFormatter.FormatTime(t, loc)
}

func FormatDate(t time.Time, loc *time.Location) string {
	return defaultFormatter.FormatDate(t, loc)
}

func DateSeparatorLabel(t time.Time, loc *time.Location, now time.Time) string {
	return defaultFormatter.DateSeparatorLabel(t, loc, now)
}
