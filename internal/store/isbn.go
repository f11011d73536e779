package store

import "strings"

// NormalizeISBN strips separators so the same ISBN written with or without
// hyphens is stored once. A lowercase check digit x becomes X.
func NormalizeISBN(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == 'x' || r == 'X':
			return 'X'
		default:
			return -1
		}
	}, s)
}
