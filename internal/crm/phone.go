package crm

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone formats a phone-like contact handle as E.164. Handles that
// are not valid numbers for region (room numbers, group ids, social handles)
// are returned trimmed but otherwise untouched.
func NormalizePhone(handle string, region string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" || !looksLikePhone(handle) {
		return handle
	}
	if region == "" {
		region = "TH"
	}

	num, err := libphonenumber.Parse(handle, strings.ToUpper(region))
	if err != nil {
		return handle
	}
	if !libphonenumber.IsValidNumber(num) {
		return handle
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}

func looksLikePhone(handle string) bool {
	digits := 0
	for _, r := range handle {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 6
}
