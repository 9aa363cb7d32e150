package models

import (
	"regexp"
	"strings"
)

// MACPattern matches six two-digit hexadecimal octets in either case, each
// separated by a colon or a hyphen.
const MACPattern = `^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`

var macRegexp = regexp.MustCompile(MACPattern)

// ValidMAC reports whether s is a MAC address in the canonical pattern.
func ValidMAC(s string) bool {
	return macRegexp.MatchString(s)
}

// NormalizeMAC returns the lower-case, colon-separated form of a MAC address.
// Values that do not match MACPattern are returned unchanged.
func NormalizeMAC(s string) string {
	if !ValidMAC(s) {
		return s
	}
	return strings.ToLower(strings.ReplaceAll(s, "-", ":"))
}
