// Package parsing orchestrates the statement parsing pipeline: text
// acquisition, provider classification, and per-issuer field extraction.
package parsing

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cardparse/internal/domain"
	"cardparse/internal/parsing/strategy"
)

// TextExtractor produces plain text from raw document bytes.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte) (string, error)
}

// Result is the outcome of a successful parse.
type Result struct {
	Provider domain.Provider
	Data     *domain.StatementData
}

// Engine runs the full parsing pipeline. It is stateless across documents
// and safe for concurrent use.
type Engine struct {
	extractor       TextExtractor
	classifier      *Classifier
	proximityWindow int
}

// NewEngine builds a parsing engine. classifyWindow bounds how far into the
// text provider classification looks; proximityWindow bounds keyword
// proximity search inside extraction strategies.
func NewEngine(extractor TextExtractor, classifyWindow, proximityWindow int) *Engine {
	return &Engine{
		extractor:       extractor,
		classifier:      NewClassifier(classifyWindow),
		proximityWindow: proximityWindow,
	}
}

// Parse runs the pipeline over a document. taskID is used only for log
// correlation. Failures are reported as the package's sentinel errors;
// panics from document handling are contained and surface as an unexpected
// error.
func (e *Engine) Parse(ctx context.Context, content []byte, taskID string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("parsing: [task %s] recovered from panic: %v", taskID, r)
			result = nil
			err = fmt.Errorf("unexpected parsing error: %v", r)
		}
	}()

	text, extractErr := e.extractor.Extract(ctx, content)
	if extractErr != nil {
		log.Printf("parsing: [task %s] text extraction failed: %v", taskID, extractErr)
		return nil, fmt.Errorf("%w: %v", ErrTextExtraction, extractErr)
	}
	log.Printf("parsing: [task %s] extracted %d characters", taskID, len(text))

	if strings.TrimSpace(text) == "" {
		return nil, ErrNoExtractableText
	}

	provider, ok := e.classifier.Classify(text)
	if !ok {
		log.Printf("parsing: [task %s] provider not identified", taskID)
		return nil, ErrProviderNotIdentified
	}
	log.Printf("parsing: [task %s] provider identified: %s", taskID, provider)

	extractor, ok := strategy.New(provider, e.proximityWindow)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyMissing, provider)
	}

	data := extractor.Extract(text)
	return &Result{Provider: provider, Data: data}, nil
}
