package tzclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateSeparatorLabel_AcrossZoneBoundary(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	now := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)
	instant := time.Date(2026, 2, 17, 3, 0, 0, 0, time.UTC) // 22:00 on the 16th in New York

	require.Equal(t, LabelToday, DateSeparatorLabel(instant, time.UTC, now))
	require.Equal(t, LabelYesterday, DateSeparatorLabel(instant, ny, now))
}

func TestDateSeparatorLabel_OlderDate(t *testing.T) {
	now := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)

	require.Equal(t, LabelYesterday, DateSeparatorLabel(now.Add(-24*time.Hour), time.UTC, now))
	require.Equal(t, "Feb 15, 2026", DateSeparatorLabel(now.Add(-48*time.Hour), time.UTC, now))
	require.Equal(t, "15/02/2026", NewFormatter("fr").DateSeparatorLabel(now.Add(-48*time.Hour), time.UTC, now))
}

func TestFormatTimeAndDate_ZoneCorrect(t *testing.T) {
	ny := mustZone(t, "America/New_York")
	instant := time.Date(2026, 2, 17, 15, 30, 0, 0, time.UTC)

	require.Equal(t, "10:30 AM", FormatTime(instant, ny))
	require.Equal(t, "3:30 PM", FormatTime(instant, nil))
	require.Equal(t, "Feb 17, 2026", FormatDate(instant, ny))

	late := time.Date(2026, 2, 18, 2, 0, 0, 0, time.UTC)
	require.Equal(t, "Feb 17, 2026", FormatDate(late, ny))
	require.Equal(t, "Feb 18, 2026", FormatDate(late, time.UTC))
}

func TestNewFormatter_Locales(t *testing.T) {
	instant := time.Date(2026, 2, 7, 15, 30, 0, 0, time.UTC)

	gb := NewFormatter("en-GB")
	require.Equal(t, "en-GB", gb.Locale())
	require.Equal(t, "15:30", gb.FormatTime(instant, time.UTC))
	require.Equal(t, "7 Feb 2026", gb.FormatDate(instant, time.UTC))

	de := NewFormatter("de-DE")
	require.Equal(t, "07.02.2026", de.FormatDate(instant, time.UTC))

	fallback := NewFormatter("not a locale")
	require.Equal(t, "en-US", fallback.Locale())
	require.Equal(t, "Feb 7, 2026", fallback.FormatDate(instant, time.UTC))
}
