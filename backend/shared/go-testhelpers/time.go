package testhelpers

import (
	"time"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// NextBookableDay returns midnight (in loc) of the first day at least
// daysAhead out that is not a Thai public holiday, so booking tests do not
// depend on the calendar date they run on.
func NextBookableDay(loc *time.Location, daysAhead int) time.Time {
	now := time.Now().In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, daysAhead)
	for {
		if holiday, _ := utils.IsThaiHoliday(day); !holiday {
			return day
		}
		day = day.AddDate(0, 0, 1)
	}
}

// At returns day with the given wall-clock hour and minute.
func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
