package store

import "time"

const dateLayout = "2006-01-02"

// DateOf returns the YYYY-MM-DD bucket of t in local time. Date strings
// sort lexicographically, so range filters compare them directly.
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD string; the zero time on failure.
func ParseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

// WeekDates returns the seven dates, Sunday through Saturday, of the
// week containing ref.
func WeekDates(ref time.Time) [7]string {
	sunday := ref.AddDate(0, 0, -int(ref.Weekday()))
	var week [7]string
	for i := range week {
		week[i] = DateOf(sunday.AddDate(0, 0, i))
	}
	return week
}
