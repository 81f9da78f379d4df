package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsThaiHoliday(t *testing.T) {
	bkk := LoadLocation("Asia/Bangkok")

	ok, name := IsThaiHoliday(time.Date(2025, time.April, 14, 10, 0, 0, 0, bkk))
	assert.True(t, ok)
	assert.Equal(t, "Songkran", name)

	ok, _ = IsThaiHoliday(time.Date(2025, time.December, 5, 9, 0, 0, 0, bkk))
	assert.True(t, ok)

	ok, _ = IsThaiHoliday(time.Date(2025, time.March, 11, 9, 0, 0, 0, bkk))
	assert.False(t, ok)
}

func TestThaiHolidaySubstitution(t *testing.T) {
	bkk := LoadLocation("Asia/Bangkok")
	// Constitution Day 2023 fell on a Sunday; Monday the 11th is observed.
	ok, name := IsThaiHoliday(time.Date(2023, time.December, 11, 9, 0, 0, 0, bkk))
	assert.True(t, ok)
	assert.Equal(t, "Constitution Day", name)
}
