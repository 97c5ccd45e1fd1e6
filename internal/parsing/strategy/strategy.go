// Package strategy implements per-issuer field extraction. All issuers share
// one cascade (anchored regex, then keyword proximity, then pseudo-table
// lookup) and differ only in their field configuration tables.
package strategy

import (
	"log"
	"regexp"
	"strings"

	"cardparse/internal/domain"
	"cardparse/internal/parsing/normalize"
)

// Confidence tiers reported per field, keyed to which cascade stage
// produced the value.
const (
	ConfidenceRegex     = 0.95
	ConfidenceProximity = 0.85
	ConfidenceTable     = 0.75
	ConfidenceAbsent    = 0.0
)

const extractionMethod = "hybrid_multi_strategy"

// Extractor extracts statement fields for one provider.
type Extractor struct {
	provider domain.Provider
	fields   []FieldSpec
	window   int
}

// New returns the extractor registered for the provider, or false when the
// provider has no field configuration.
func New(provider domain.Provider, proximityWindow int) (*Extractor, bool) {
	fields, ok := ForProvider(provider)
	if !ok {
		return nil, false
	}
	if proximityWindow <= 0 {
		proximityWindow = 150
	}
	return &Extractor{provider: provider, fields: fields, window: proximityWindow}, true
}

// Provider returns the provider this extractor serves.
func (e *Extractor) Provider() domain.Provider { return e.provider }

// Extract runs the cascade over the statement text and returns typed data
// with per-field confidence scores. Missing fields are left nil with a zero
// confidence; Extract itself never fails.
func (e *Extractor) Extract(text string) *domain.StatementData {
	r := &run{
		extractor: e,
		text:      text,
		lower:     strings.ToLower(text),
	}

	raw := make(map[string]string, len(e.fields))
	scores := make(map[string]float64, len(e.fields))
	for _, field := range e.fields {
		value, confidence := r.extractField(field)
		raw[field.Name] = value
		scores[field.Name] = confidence
		if value != "" {
			log.Printf("strategy: [%s] extracted %s=%q (confidence %.2f)", e.provider, field.Name, value, confidence)
		} else {
			log.Printf("strategy: [%s] no match for %s", e.provider, field.Name)
		}
	}

	data := &domain.StatementData{}
	if d, ok := normalize.ParseDate(raw[FieldStatementEndDate]); ok {
		data.StatementEndDate = &d
	}
	if d, ok := normalize.ParseDate(raw[FieldPaymentDueDate]); ok {
		data.PaymentDueDate = &d
	}
	if v, ok := normalize.ParseAmount(raw[FieldTotalBalance]); ok {
		data.TotalBalance = &v
	}
	if v, ok := normalize.ParseAmount(raw[FieldMinPaymentDue]); ok {
		data.MinPaymentDue = &v
	}
	if digits, ok := normalize.CardDigits(raw[FieldCardLast4]); ok {
		data.CardLast4 = &digits
	}

	data.Metadata = &domain.StatementMetadata{
		Provider:         string(e.provider),
		ConfidenceScores: scores,
		ExtractionMethod: extractionMethod,
		Warnings:         normalize.Validate(data),
	}
	for _, w := range data.Metadata.Warnings {
		log.Printf("strategy: [%s] validation: %s", e.provider, w)
	}
	return data
}

// run holds the per-document state of one extraction.
type run struct {
	extractor *Extractor
	text      string
	lower     string

	tableOnce bool
	table     map[string]string
}

func (r *run) extractField(field FieldSpec) (string, float64) {
	// Stage 1: anchored regex patterns.
	for _, re := range field.Patterns {
		if v := firstGroup(re, r.text); v != "" {
			return v, ConfidenceRegex
		}
	}

	// Stage 2: keyword proximity search.
	for _, keyword := range field.Keywords {
		var v string
		switch field.Kind {
		case KindDate:
			v = r.findNearKeyword(keyword, datePattern, field.SearchBackward)
		case KindAmount:
			v = r.findNearKeyword(keyword, amountPattern, field.SearchBackward)
		case KindCard:
			v = r.findCardLast4()
		}
		if v != "" {
			return v, ConfidenceProximity
		}
	}

	// Stage 3: pseudo-table lookup.
	tbl := r.tableData()
	for _, key := range field.TableKeys {
		if v := tbl[titleCase(key)]; v != "" {
			return v, ConfidenceTable
		}
	}

	return "", ConfidenceAbsent
}

// findNearKeyword looks for the pattern in a character window next to the
// first occurrence of the keyword, after it by default or before it for
// fields marked SearchBackward.
func (r *run) findNearKeyword(keyword string, re *regexp.Regexp, backward bool) string {
	idx := strings.Index(r.lower, strings.ToLower(keyword))
	if idx < 0 {
		return ""
	}
	var start, end int
	if backward {
		end = idx
		start = end - r.extractor.window
		if start < 0 {
			start = 0
		}
	} else {
		start = idx + len(keyword)
		end = start + r.extractor.window
		if end > len(r.text) {
			end = len(r.text)
		}
	}
	return firstGroup(re, r.text[start:end])
}

// findCardLast4 searches the whole document for a card number in any of the
// known phrasings and reduces it to the last four digits.
func (r *run) findCardLast4() string {
	for _, re := range cardPatterns {
		if v := firstGroup(re, r.text); v != "" {
			if digits, ok := normalize.CardDigits(v); ok {
				return digits
			}
		}
	}
	return ""
}

// tableData lazily extracts the pseudo-table, once per document.
func (r *run) tableData() map[string]string {
	if !r.tableOnce {
		r.table = extractTable(r.text)
		r.tableOnce = true
	}
	return r.table
}
