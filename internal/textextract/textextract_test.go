package textextract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingOCR struct {
	calls int
	text  string
}

func (c *countingOCR) Text(ctx context.Context, content []byte) (string, error) {
	c.calls++
	return c.text, nil
}

func TestExtract_MalformedDocument(t *testing.T) {
	ocr := &countingOCR{text: "should not be used"}
	e := New(ocr)

	_, err := e.Extract(context.Background(), []byte("not a pdf at all"))
	assert.Error(t, err)
	// OCR is a fallback for empty text layers, not for unreadable files.
	assert.Zero(t, ocr.calls)
}

func TestExtract_EmptyInput(t *testing.T) {
	e := New(nil)
	_, err := e.Extract(context.Background(), nil)
	assert.Error(t, err)
}
