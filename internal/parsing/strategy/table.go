package strategy

import (
	"regexp"
	"strings"
)

// tableLinePatterns capture "Label    Value" lines where the label and value
// are separated by two or more spaces, as rendered by statement summary
// boxes.
var tableLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(New Balance|Total Balance|Balance Due)\s{2,}(.+)$`),
	regexp.MustCompile(`(?i)^(Payment Due Date|Due Date)\s{2,}(.+)$`),
	regexp.MustCompile(`(?i)^(Minimum Payment Due|Minimum Payment|Min Payment)\s{2,}(.+)$`),
	regexp.MustCompile(`(?i)^(Closing Date|Statement Date|Statement End Date)\s{2,}(.+)$`),
	regexp.MustCompile(`(?i)^(Account Ending|Card Ending)\s{2,}(.+)$`),
}

// extractTable scans the text line by line for pseudo-table rows and returns
// label to value pairs. Labels are title-cased so lookups are
// case-insensitive; the first occurrence of a label wins.
func extractTable(text string) map[string]string {
	table := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, re := range tableLinePatterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			key := titleCase(strings.TrimSpace(m[1]))
			if _, seen := table[key]; !seen {
				table[key] = strings.TrimSpace(m[2])
			}
		}
	}
	return table
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
