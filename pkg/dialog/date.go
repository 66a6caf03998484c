package dialog

import (
	"fmt"
	"time"
)

// FormatDate renders an entry timestamp the way the widget shows it:
// clock time for today, day and month within the current year, full
// date otherwise.
func FormatDate(millis int64) string {
	return formatDateAt(millis, time.Now())
}

func formatDateAt(millis int64, now time.Time) string {
	t := time.UnixMilli(millis)
	switch {
	case t.Year() == now.Year() && t.YearDay() == now.YearDay():
		return t.Format("15:04")
	case t.Year() == now.Year():
		return fmt.Sprintf("%d.%02d", t.Day(), int(t.Month()))
	default:
		return fmt.Sprintf("%d.%02d.%d", t.Day(), int(t.Month()), t.Year())
	}
}
