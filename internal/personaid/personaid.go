// Package personaid canonicalizes persona identifiers so clusters, persona
// records and conversations can be joined on a single key.
package personaid

import (
	"regexp"
	"strings"
)

var compactID = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

// Normalize rewrites "C-01", "R1" and "P001" style IDs into the
// {Prefix}{3-digit number} form. Anything else is returned unchanged.
// A numeric part that does not parse is treated as 0.
func Normalize(id string) string {
	if id == "" {
		return id
	}

	if strings.Contains(id, "-") {
		parts := strings.Split(id, "-")
		num := "0"
		if len(parts) > 1 && parts[1] != "" {
			num = parts[1]
		}
		return parts[0] + pad(leadingDigits(num))
	}

	if m := compactID.FindStringSubmatch(id); m != nil {
		return m[1] + pad(m[2])
	}

	return id
}

// leadingDigits mirrors integer parsing of a prefix: "07x" -> "07", "x" -> "".
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// pad strips leading zeros and left-pads to three digits. Empty input is 0.
func pad(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return digits
}
