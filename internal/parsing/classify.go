package parsing

import (
	"strings"

	"cardparse/internal/domain"
)

// providerKeywords maps lowercase marker phrases to providers. Order matters:
// more specific phrases come before their generic variants, and the first
// match wins, so "american express" is checked before "amex" and so on.
var providerKeywords = []struct {
	keyword  string
	provider domain.Provider
}{
	{"american express", domain.ProviderAmex},
	{"amex", domain.ProviderAmex},
	{"chase", domain.ProviderChase},
	{"citi", domain.ProviderCiti},
	{"citibank", domain.ProviderCiti},
	{"capital one", domain.ProviderCapitalOne},
	{"bank of america", domain.ProviderBofA},
	{"bofa", domain.ProviderBofA},
}

// Classifier identifies the issuing provider of a statement from its text.
type Classifier struct {
	window int
}

// NewClassifier returns a classifier that inspects at most window characters
// from the start of the document.
func NewClassifier(window int) *Classifier {
	if window <= 0 {
		window = 3000
	}
	return &Classifier{window: window}
}

// Classify scans the head of the text for a provider marker phrase. It
// returns false when no supported provider is recognized.
func (c *Classifier) Classify(text string) (domain.Provider, bool) {
	head := text
	if len(head) > c.window {
		head = head[:c.window]
	}
	head = strings.ToLower(head)

	for _, pk := range providerKeywords {
		if strings.Contains(head, pk.keyword) {
			return pk.provider, true
		}
	}
	return "", false
}
