// Package phone normalizes and validates E.164-style destination numbers.
package phone

import "strings"

// MinDigits is the smallest digit count accepted for a dialable number.
const MinDigits = 10

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// Normalize strips spaces, dashes and parentheses. Other characters are kept,
// so "+1 (626) 463-8602" becomes "+16264638602".
func Normalize(s string) string {
	return separators.Replace(s)
}

// Clean keeps only digits and '+', matching what the call widget accepts as input.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s starts with '+' and contains at least MinDigits digits.
func Valid(s string) bool {
	if !strings.HasPrefix(s, "+") {
		return false
	}
	return countDigits(s) >= MinDigits
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
