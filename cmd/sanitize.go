package cmd

import "strings"

// sanitizeText replaces control characters (runes < 0x20 or == 0x7F) with '?'
// before story text or handler values reach human-readable output.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '?'
		}
		return r
	}, s)
}
