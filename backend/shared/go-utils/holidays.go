package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
)

// Weekend holidays are observed on the following Monday.
var thaiSubstitutionDays = []cal.AltDay{
	{Day: time.Saturday, Offset: 2},
	{Day: time.Sunday, Offset: 1},
}

func thaiFixedHoliday(name string, month time.Month, day int) *cal.Holiday {
	return &cal.Holiday{
		Name:     name,
		Type:     cal.ObservancePublic,
		Month:    month,
		Day:      day,
		Observed: thaiSubstitutionDays,
		Func:     cal.CalcDayOfMonth,
	}
}

// Fixed-date Thai public holidays. Lunar holidays (Makha Bucha, Visakha
// Bucha, Asahna Bucha) move every year and are not included.
var (
	ThaiNewYear          = thaiFixedHoliday("New Year's Day", time.January, 1)
	ThaiChakriDay        = thaiFixedHoliday("Chakri Memorial Day", time.April, 6)
	ThaiSongkran1        = thaiFixedHoliday("Songkran", time.April, 13)
	ThaiSongkran2        = thaiFixedHoliday("Songkran", time.April, 14)
	ThaiSongkran3        = thaiFixedHoliday("Songkran", time.April, 15)
	ThaiLabourDay        = thaiFixedHoliday("National Labour Day", time.May, 1)
	ThaiCoronationDay    = thaiFixedHoliday("Coronation Day", time.May, 4)
	ThaiQueenSuthidaDay  = thaiFixedHoliday("Queen Suthida's Birthday", time.June, 3)
	ThaiKingsBirthday    = thaiFixedHoliday("King Vajiralongkorn's Birthday", time.July, 28)
	ThaiMothersDay       = thaiFixedHoliday("Queen Mother's Birthday", time.August, 12)
	ThaiKingBhumibolDay  = thaiFixedHoliday("King Bhumibol Memorial Day", time.October, 13)
	ThaiChulalongkornDay = thaiFixedHoliday("Chulalongkorn Day", time.October, 23)
	ThaiFathersDay       = thaiFixedHoliday("King Bhumibol's Birthday", time.December, 5)
	ThaiConstitutionDay  = thaiFixedHoliday("Constitution Day", time.December, 10)
	ThaiNewYearsEve      = thaiFixedHoliday("New Year's Eve", time.December, 31)
)

var thaiCalendar = cal.NewBusinessCalendar()

func init() {
	thaiCalendar.AddHoliday(
		ThaiNewYear,
		ThaiChakriDay,
		ThaiSongkran1,
		ThaiSongkran2,
		ThaiSongkran3,
		ThaiLabourDay,
		ThaiCoronationDay,
		ThaiQueenSuthidaDay,
		ThaiKingsBirthday,
		ThaiMothersDay,
		ThaiKingBhumibolDay,
		ThaiChulalongkornDay,
		ThaiFathersDay,
		ThaiConstitutionDay,
		ThaiNewYearsEve,
	)
}

// IsThaiHoliday reports whether the calendar date of t (in t's location)
// is a public holiday or its substitution day, with the holiday name.
func IsThaiHoliday(t time.Time) (bool, string) {
	actual, observed, h := thaiCalendar.IsHoliday(t)
	if (actual || observed) && h != nil {
		return true, h.Name
	}
	return false, ""
}
