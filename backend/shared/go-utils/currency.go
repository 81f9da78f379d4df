package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatCurrency renders an amount held in satang as ฿1,234.50.
func FormatCurrency(satang int64) string {
	sign := ""
	mag := uint64(satang)
	if satang < 0 {
		sign = "-"
		// two's complement negation stays correct for math.MinInt64
		mag = -mag
	}
	baht := mag / SatangPerBaht
	frac := mag % SatangPerBaht
	return fmt.Sprintf("%s%s%s.%02d", sign, CurrencySymbolTHB, amountPrinter.Sprintf("%d", baht), frac)
}

// FormatBaht is FormatCurrency for callers holding a float baht value.
func FormatBaht(amount float64) string {
	return FormatCurrency(int64(math.Round(amount * SatangPerBaht)))
}

// ParseBaht reads "1,234.50", "฿1234.5" or "-20" into satang. Thousands
// separators must fall every three digits.
func ParseBaht(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSpace(strings.TrimPrefix(s, CurrencySymbolTHB))
	if s == "" {
		return 0, ErrInvalidAmount
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2 || !allDigits(frac)) {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		if !hasFrac {
			return 0, ErrInvalidAmount
		}
		whole = "0"
	}
	whole, ok := ungroup(whole)
	if !ok {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	b, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidAmount, err)
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	if b > (math.MaxInt64-f)/SatangPerBaht {
		return 0, fmt.Errorf("%w: %s baht is out of range", ErrInvalidAmount, whole)
	}

	total := b*SatangPerBaht + f
	if neg {
		total = -total
	}
	return total, nil
}

// ungroup strips thousands separators from a run of digits, rejecting
// misplaced commas such as "1,2,3" or "12,34".
func ungroup(whole string) (string, bool) {
	if !strings.Contains(whole, ",") {
		return whole, allDigits(whole)
	}
	groups := strings.Split(whole, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 || !allDigits(groups[0]) {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !allDigits(g) {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
