package parsing

import (
	"errors"
	"fmt"
	"strings"

	"cardparse/internal/domain"
)

// Sentinel errors for the parsing pipeline. Callers distinguish them with
// errors.Is and map them to failure kinds via FailureKindOf.
var (
	// ErrTextExtraction indicates the document could not be read at all.
	ErrTextExtraction = errors.New("failed to extract text from document")

	// ErrNoExtractableText indicates extraction ran but produced no usable
	// text, even after the OCR fallback.
	ErrNoExtractableText = errors.New("no extractable text found in document")

	// ErrProviderNotIdentified indicates no supported issuer was recognized.
	ErrProviderNotIdentified = fmt.Errorf(
		"could not identify statement provider; supported providers: %s",
		strings.Join(providerNames(), ", "),
	)

	// ErrStrategyMissing indicates a provider was classified but no
	// extraction strategy is registered for it.
	ErrStrategyMissing = errors.New("no extraction strategy registered for provider")
)

func providerNames() []string {
	names := make([]string, 0, len(domain.SupportedProviders))
	for _, p := range domain.SupportedProviders {
		names = append(names, string(p))
	}
	return names
}

// FailureKindOf classifies a pipeline error into a stable failure kind for
// persistence. Unknown errors are reported as unexpected.
func FailureKindOf(err error) domain.FailureKind {
	switch {
	case errors.Is(err, ErrTextExtraction):
		return domain.FailureTextExtraction
	case errors.Is(err, ErrNoExtractableText):
		return domain.FailureNoExtractableText
	case errors.Is(err, ErrProviderNotIdentified):
		return domain.FailureProviderUnknown
	case errors.Is(err, ErrStrategyMissing):
		return domain.FailureStrategyMissing
	default:
		return domain.FailureUnexpected
	}
}
