package pathstore

import "time"

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// emptyDays returns n zero counts ending today (UTC), oldest first.
func emptyDays(now time.Time, n int) []DayCount {
	if n <= 0 {
		return []DayCount{}
	}
	today := truncateDay(now)
	days := make([]DayCount, n)
	for i := range days {
		days[i].Day = today.AddDate(0, 0, i-(n-1))
	}
	return days
}

// fillDays places counts onto a zero-filled window so that gaps in a
// backend's answer still yield one entry per day.
func fillDays(now time.Time, n int, counts []DayCount) []DayCount {
	days := emptyDays(now, n)
	for _, c := range counts {
		day := truncateDay(c.Day)
		for i := range days {
			if days[i].Day.Equal(day) {
				days[i].Count += c.Count
			}
		}
	}
	return days
}
