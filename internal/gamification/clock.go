package gamification

import "time"

// CutoffHour is the hour (UTC) at which a streak day rolls over. Activity
// at 03:59 counts toward the previous calendar day's streak day.
const CutoffHour = 4

// StreakDay maps a timestamp to its streak day: the UTC calendar date after
// shifting the clock back by the cutoff. Two timestamps share a streak day
// iff they fall in the same [cutoff, cutoff+24h) window.
func StreakDay(t time.Time) time.Time {
	return t.UTC().Add(-CutoffHour * time.Hour).Truncate(24 * time.Hour)
}

// WeekStart returns the streak day of the most recent Monday, using the same
// cutoff rule. A week runs Monday 04:00 UTC to the next Monday 04:00 UTC.
func WeekStart(t time.Time) time.Time {
	day := StreakDay(t)
	offset := (int(day.Weekday()) - int(time.Monday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// GapDays returns the whole number of streak days between two streak-day
// values. Both arguments must come from StreakDay or WeekStart.
func GapDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// IsNight reports whether the timestamp falls in the night window,
// [22:00, cutoff) UTC.
func IsNight(t time.Time) bool {
	h := t.UTC().Hour()
	return h >= 22 || h < CutoffHour
}

// IsWeekend reports whether the timestamp's streak day is a Saturday or
// Sunday.
func IsWeekend(t time.Time) bool {
	wd := StreakDay(t).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
