package utils

import "strings"

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateThaiIDCard checks the 13-digit national ID, ignoring dashes and
// spaces. The last digit is (11 - Σ d[i]*(13-i) mod 11) mod 10.
func ValidateThaiIDCard(id string) bool {
	d := digitsOnly(id)
	if len(d) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := d[i]
		if c < '0' || c > '9' {
			return false
		}
		if i < 12 {
			sum += int(c-'0') * (13 - i)
		}
	}
	check := (11 - sum%11) % 10
	return check == int(d[12]-'0')
}

// FormatThaiIDCard renders 1-2345-67890-12-3. Input that is not 13 digits
// long is returned as given.
func FormatThaiIDCard(id string) string {
	d := digitsOnly(id)
	if len(d) != 13 {
		return id
	}
	return d[0:1] + "-" + d[1:5] + "-" + d[5:10] + "-" + d[10:12] + "-" + d[12:]
}

// MaskThaiIDCard keeps the first five and the last digit: 1-2345-XXXXX-XX-3.
func MaskThaiIDCard(id string) string {
	d := digitsOnly(id)
	if len(d) != 13 {
		return ""
	}
	return d[0:1] + "-" + d[1:5] + "-XXXXX-XX-" + d[12:]
}
