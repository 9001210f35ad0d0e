package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsJoiner reports whether r may appear inside a word without splitting it,
// as in "don't", "well-known" or "snake_case".
func IsJoiner(r rune) bool {
	return r == '\'' || r == '-' || r == '_'
}

// isWordRune checks if a rune belongs to a word
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || IsJoiner(r)
}

// SplitWords splits a line into words. Anything that is not a letter, digit,
// mark or joiner separates words; joiners at either end of a word are dropped.
func SplitWords(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool { return !isWordRune(r) })
	words := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, IsJoiner)
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsRepetitive checks if a string is one character repeated 3+ times ("aaa")
func IsRepetitive(s string) bool {
	if utf8.RuneCountInString(s) <= 2 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}

// WordFilter decides which words are worth remembering.
// A zero MaxLen means no upper bound.
type WordFilter struct {
	MinLen int
	MaxLen int
}

// Accept returns false for words outside the length bounds, words that are
// only numbers and repetitive runs like "zzzz"
func (f WordFilter) Accept(word string) bool {
	n := utf8.RuneCountInString(word)
	if n == 0 || n < f.MinLen {
		return false
	}
	if f.MaxLen > 0 && n > f.MaxLen {
		return false
	}
	if IsOnlyNumbers(word) || IsRepetitive(word) {
		return false
	}
	return true
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var b strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(char)
	}
	return b.String()
}
