package utils

import "strings"

const maskText = "***"

// MaskEmail hides the middle of the local part and keeps the domain.
// Without an "@" only the first three characters are kept.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return firstRunes(email, 3) + maskText
	}
	r := []rune(local)
	if len(r) > 5 {
		return string(r[:2]) + maskText + string(r[len(r)-2:]) + "@" + domain
	}
	return firstRunes(local, 1) + maskText + "@" + domain
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		n = len(r)
	}
	return string(r[:n])
}
