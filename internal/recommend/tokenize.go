// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the shortest token kept, in runes.
const minTokenLen = 2

// Tokenize lowercases text and splits it into runs of letters and digits.
// Tokens shorter than two runes are dropped.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := raw[:0]
	for _, t := range raw {
		if utf8.RuneCountInString(t) >= minTokenLen {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
