// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans free text so it can sit in a delimiter-separated
// table without quoting surprises.
package normalize

import (
	"strings"
	"unicode"
)

// Normalize removes every rune that is not a letter, a number, or
// whitespace. Whitespace is kept exactly as it appears, so word boundaries
// survive. Normalize is idempotent.
func Normalize(s string) string {
	return strings.Map(keep, s)
}

func keep(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
		return r
	}
	return -1
}
