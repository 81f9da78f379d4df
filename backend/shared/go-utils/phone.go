package utils

import (
	"regexp"
	"strings"
)

var (
	thaiMobileRe   = regexp.MustCompile(`^0[689]\d{8}$`)
	thaiLandlineRe = regexp.MustCompile(`^0[2-7]\d{7}$`)
	phoneNoiseRe   = regexp.MustCompile(`[\s\-().]`)
)

// NormalizeThaiPhone strips separators and converts +66/66 prefixes to the
// national leading zero. It does not validate.
func NormalizeThaiPhone(phone string) string {
	p := phoneNoiseRe.ReplaceAllString(strings.TrimSpace(phone), "")
	switch {
	case strings.HasPrefix(p, ThaiDialingPrefix):
		p = "0" + strings.TrimPrefix(p, ThaiDialingPrefix)
	case strings.HasPrefix(p, "66") && len(p) >= 10:
		p = "0" + strings.TrimPrefix(p, "66")
	}
	return p
}

func IsThaiMobile(phone string) bool {
	return thaiMobileRe.MatchString(NormalizeThaiPhone(phone))
}

// ValidateThaiPhone accepts mobile (0[689] + 8 digits) and landline
// (0[2-7] + 7 digits) numbers in local or international form.
func ValidateThaiPhone(phone string) bool {
	p := NormalizeThaiPhone(phone)
	return thaiMobileRe.MatchString(p) || thaiLandlineRe.MatchString(p)
}

// FormatThaiPhone renders 081-234-5678 or 02-123-4567. Invalid input is
// returned unchanged.
func FormatThaiPhone(phone string) string {
	p := NormalizeThaiPhone(phone)
	switch {
	case thaiMobileRe.MatchString(p):
		return p[:3] + "-" + p[3:6] + "-" + p[6:]
	case thaiLandlineRe.MatchString(p):
		if strings.HasPrefix(p, "02") {
			return p[:2] + "-" + p[2:5] + "-" + p[5:]
		}
		return p[:3] + "-" + p[3:6] + "-" + p[6:]
	default:
		return phone
	}
}

// ThaiPhoneToE164 converts a valid Thai number to +66 form for SMS delivery.
func ThaiPhoneToE164(phone string) (string, bool) {
	if !ValidateThaiPhone(phone) {
		return "", false
	}
	return ThaiDialingPrefix + NormalizeThaiPhone(phone)[1:], true
}
