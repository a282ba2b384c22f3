package engine

import "time"

const dateLayout = "2006-01-02"

// today returns the current civil date as midnight in the engine timezone.
func (e *Engine) today() time.Time {
	return dateOf(e.Now().In(e.loc))
}

// Today is the exported civil-date anchor for collaborators that need to
// address "today plus n days" in the engine timezone.
func (e *Engine) Today() time.Time {
	return e.today()
}

func (e *Engine) nowIn() time.Time {
	return e.Now().In(e.loc)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func formatDate(d time.Time) string {
	return d.Format(dateLayout)
}

// parseDate returns the zero time for empty or malformed values; callers treat
// that as "no anchor recorded yet".
func (e *Engine) parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.ParseInLocation(dateLayout, s, e.loc)
	if err != nil {
		return time.Time{}
	}
	return d
}

func addDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

func startOfDay(d time.Time) time.Time {
	return dateOf(d)
}

func endOfDay(d time.Time) time.Time {
	return dateOf(d).AddDate(0, 0, 1).Add(-time.Second)
}

// weekStartSunday anchors league weeks: the Sunday on or before d.
func weekStartSunday(d time.Time) time.Time {
	return addDays(dateOf(d), -int(d.Weekday()))
}

// weekdayIndex maps Monday to 0 .. Sunday to 6, matching the workdays mask.
func weekdayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}
