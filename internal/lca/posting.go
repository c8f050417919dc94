package lca

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// DefaultPostingDays is how many business days the notice stays posted.
const DefaultPostingDays = 10

// newBusinessCalendar creates a calendar with the US federal holidays.
func newBusinessCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = "US federal"
	c.Description = "Federal business days for notice posting"
	c.AddHoliday(us.Holidays...)
	return c
}

// postingWindow returns the first and last business day of a posting that
// starts on posted and lasts days business days. A posting made on a weekend
// or holiday starts counting on the next business day.
func postingWindow(posted time.Time, days int) (first, last time.Time) {
	if days < 1 {
		days = 1
	}

	c := newBusinessCalendar()
	day := time.Date(posted.Year(), posted.Month(), posted.Day(), 12, 0, 0, 0, time.UTC)
	counted := 0
	for {
		if c.IsWorkday(day) {
			counted++
			if counted == 1 {
				first = day
			}
			if counted == days {
				return first, day
			}
		}
		day = day.AddDate(0, 0, 1)
	}
}
