// Package tokens splits free text into lower-cased word tokens the same way
// for queries and candidate documents, so term counts line up.
package tokens

import (
	"strings"
	"unicode"
)

// Split lower-cases s and breaks it on word boundaries. '+', '#', '.', '-'
// and '_' stay inside tokens so c++, c#, node.js and front-end survive;
// trailing dots and dashes are trimmed.
func Split(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isTokenRune(r)
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimRight(f, ".-_")
		f = strings.TrimLeft(f, "-_")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isTokenRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '+', '#', '.', '-', '_':
		return true
	}
	return false
}

// Count returns how many times phrase occurs in text as a contiguous token run.
func Count(text, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(text) {
		return 0
	}
	n := 0
	for i := 0; i+len(phrase) <= len(text); i++ {
		if matchAt(text, phrase, i) {
			n++
		}
	}
	return n
}

// Contains reports whether phrase occurs in text.
func Contains(text, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(text) {
		return false
	}
	for i := 0; i+len(phrase) <= len(text); i++ {
		if matchAt(text, phrase, i) {
			return true
		}
	}
	return false
}

func matchAt(text, phrase []string, i int) bool {
	for j, p := range phrase {
		if text[i+j] != p {
			return false
		}
	}
	return true
}
