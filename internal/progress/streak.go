package progress

import "time"

type StreakChange string

const (
	StreakUnchanged StreakChange = "unchanged"
	StreakContinued StreakChange = "continued"
	StreakReset     StreakChange = "reset"
)

const dayLayout = "2006-01-02"

// DayKey is the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayLayout)
}

// ApplyStreak runs the daily-activity rule against rec. A record last active
// today is left alone, one active yesterday extends the streak, and any other
// gap (or no recorded activity) restarts it at 1.
func ApplyStreak(rec *Record, now time.Time, loc *time.Location) StreakChange {
	today := DayKey(now, loc)
	if !rec.LastActiveDate.IsZero() {
		last := DayKey(rec.LastActiveDate, loc)
		if last == today {
			return StreakUnchanged
		}
		if last == yesterday(now, loc) {
			rec.StreakDays++
			rec.LastActiveDate = now
			return StreakContinued
		}
	}
	rec.StreakDays = 1
	rec.LastActiveDate = now
	return StreakReset
}

func yesterday(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day()-1, 12, 0, 0, 0, loc).Format(dayLayout)
}
