package strategy

import (
	"regexp"
	"strings"
)

// Shared patterns used by proximity search and card extraction. Compiled
// once at package load.
var (
	// amountPattern captures values like $1,234.56 and 1234.56.
	amountPattern = regexp.MustCompile(`(?is)\$?\s*([\d,]+\.\d{2})`)

	// datePattern matches numeric, written-month and ISO date forms.
	datePattern = regexp.MustCompile(`(?is)(\d{1,2}/\d{1,2}/\d{2,4})|(\w+\.?\s+\d{1,2},?\s+\d{4})|(\d{4}-\d{2}-\d{2})`)

	// maskedCardPattern matches masked numbers like ****1234 and xxxx-1234.
	maskedCardPattern = regexp.MustCompile(`(?is)[\*xX\.]{4,}[\s\-]?(\d{4})`)
)

// cardPatterns are tried in order when a field falls back to the dedicated
// card-number search. Phrasing variants come before the generic mask.
var cardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Account\s+Ending\s*(?:in\s+)?-?\s*(\d{4,5})`),
	regexp.MustCompile(`(?is)Card\s+(?:Number\s+)?Ending\s*(?:in\s+)?[:\-]?\s*(\d{4,5})`),
	regexp.MustCompile(`(?is)Account\s*(?:#|Number)\s*[\*xX\.]+[\s\-]?(\d{4})`),
	regexp.MustCompile(`(?is)Card\s*(?:#|Number)?\s*[\*xX\.]+[\s\-]?(\d{4})`),
	maskedCardPattern,
}

// firstGroup runs the pattern against text and returns the first non-empty
// capture group, trimmed.
func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return strings.TrimSpace(g)
		}
	}
	return ""
}
