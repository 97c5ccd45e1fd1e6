// Package normalize converts raw captured field strings into typed values
// and validates the assembled statement for cross-field consistency.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cardparse/internal/domain"
)

// dateLayouts are tried in order. US month-first layouts come before
// day-first ones, so an ambiguous date like 03/04/2024 resolves as March 4.
var dateLayouts = []string{
	"1/2/06",
	"1/2/2006",
	"2/1/06",
	"2/1/2006",
	"Jan 2 2006",
	"January 2 2006",
	"2006-1-2",
	"2-1-2006",
}

var nonDigit = regexp.MustCompile(`\D`)

// ParseDate parses a raw date string against the known statement layouts.
// Dots and trailing punctuation are tolerated. Returns false when no layout
// matches.
func ParseDate(raw string) (domain.Date, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return domain.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return domain.Date{}, false
}

// ParseAmount parses a raw monetary string into a float rounded to cents.
// Currency symbols, thousands separators and surrounding whitespace are
// stripped. Returns false when the remainder is not a valid number.
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Round(2).InexactFloat64(), true
}

// CardDigits reduces a raw capture to the last four digits of the card
// number. A capture with fewer than four digits is returned as-is and left
// for Validate to flag. Returns false only when no digits are present.
func CardDigits(raw string) (string, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	if digits == "" {
		return "", false
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return digits, true
}
