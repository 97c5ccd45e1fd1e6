// Package textextract acquires plain text from PDF documents, preferring
// the embedded text layer and falling back to OCR for scanned files.
package textextract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// OCRFallback produces text from a scanned document. Implementations render
// pages to images and run a recognition engine over them.
type OCRFallback interface {
	Text(ctx context.Context, content []byte) (string, error)
}

// Extractor reads the PDF text layer and, when it is empty, hands the
// document to the OCR fallback. A nil fallback disables OCR.
type Extractor struct {
	ocr OCRFallback
}

func New(ocr OCRFallback) *Extractor {
	return &Extractor{ocr: ocr}
}

// Extract returns the document's plain text, one page per line group joined
// with newlines. A document whose text layer is empty and whose OCR pass
// yields nothing returns an empty string with a nil error; the caller
// decides whether that is fatal.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	text, err := nativeText(content)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	if e.ocr == nil {
		log.Printf("textextract: text layer empty and OCR disabled")
		return text, nil
	}

	log.Printf("textextract: text layer empty, running OCR fallback")
	ocrText, ocrErr := e.ocr.Text(ctx, content)
	if ocrErr != nil {
		// OCR failure is not fatal on its own; the empty result is
		// reported downstream as a no-text condition.
		log.Printf("textextract: OCR fallback failed: %v", ocrErr)
		return "", nil
	}
	return ocrText, nil
}

// nativeText reads the embedded text layer. The pdf library panics on some
// malformed files, so the whole read is wrapped in a recover.
func nativeText(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			log.Printf("textextract: page %d unreadable: %v", i, err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}
