// Package ocr recognizes text in scanned PDFs by rendering pages to images
// with pdftoppm, enhancing them, and running them through tesseract.
package ocr

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

// Config holds the OCR pipeline settings. Language and PSM are passed to
// tesseract unchanged.
type Config struct {
	TesseractPath string
	PdftoppmPath  string
	Language      string
	PSM           string
	DPI           int
	MaxPages      int
}

// Extractor renders and recognizes scanned documents.
type Extractor struct {
	cfg    Config
	runner Runner
}

// NewExtractor builds an extractor, filling in binary names and defaults
// where the config leaves them empty.
func NewExtractor(cfg Config) *Extractor {
	if cfg.TesseractPath == "" {
		cfg.TesseractPath = "tesseract"
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PSM == "" {
		cfg.PSM = "6"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	return &Extractor{cfg: cfg, runner: execRunner{}}
}

// Text renders the first pages of the PDF, preprocesses each and runs the
// recognition engine. A page that fails contributes an empty string; pages
// are joined with newlines in order.
func (e *Extractor) Text(ctx context.Context, content []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "cardparse-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			log.Printf("ocr: failed to remove temp dir %s: %v", tmpDir, err)
		}
	}()

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, content, 0o600); err != nil {
		return "", fmt.Errorf("writing temp pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png input.pdf <tmp>/page
	_, errb, err := e.runner.Run(ctx, e.cfg.PdftoppmPath, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("rendering pdf pages: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page images")
	}

	texts := make([]string, 0, len(matches))
	for i, imgPath := range matches {
		txt, err := e.recognizePage(ctx, imgPath)
		if err != nil {
			log.Printf("ocr: page %d failed: %v", i+1, err)
			texts = append(texts, "")
			continue
		}
		texts = append(texts, txt)
	}

	result := strings.Join(texts, "\n")
	log.Printf("ocr: recognized %d characters across %d pages", len(result), len(matches))
	return result, nil
}

func (e *Extractor) recognizePage(ctx context.Context, imgPath string) (string, error) {
	img, err := imaging.Open(imgPath)
	if err != nil {
		return "", fmt.Errorf("opening page image: %w", err)
	}

	processed := Preprocess(img)
	processedPath := strings.TrimSuffix(imgPath, ".png") + "-pre.png"
	if err := imaging.Save(processed, processedPath); err != nil {
		return "", fmt.Errorf("saving preprocessed image: %w", err)
	}

	// tesseract <image> stdout -l <lang> --psm <psm>
	out, errb, err := e.runner.Run(ctx, e.cfg.TesseractPath, processedPath, "stdout", "-l", e.cfg.Language, "--psm", e.cfg.PSM)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
