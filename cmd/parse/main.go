// Command parse runs the extraction pipeline over a local PDF and prints
// the result as JSON. Useful for trying out statements without the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"cardparse/internal/config"
	"cardparse/internal/ocr"
	"cardparse/internal/parsing"
	"cardparse/internal/textextract"
)

func main() {
	noOCR := flag.Bool("no-ocr", false, "disable the OCR fallback")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: parse [-no-ocr] <statement.pdf>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}

	var fallback textextract.OCRFallback
	if cfg.OCR.Enabled && !*noOCR {
		fallback = ocr.NewExtractor(ocr.Config{
			TesseractPath: cfg.OCR.TesseractPath,
			PdftoppmPath:  cfg.OCR.PdftoppmPath,
			Language:      cfg.OCR.Language,
			PSM:           cfg.OCR.PSM,
			DPI:           cfg.OCR.DPI,
			MaxPages:      cfg.OCR.MaxPages,
		})
	}

	engine := parsing.NewEngine(textextract.New(fallback), cfg.Parse.ClassifyWindow, cfg.Parse.ProximityWindow)
	result, err := engine.Parse(context.Background(), content, "local")
	if err != nil {
		log.Fatalf("parse failed: %v", err)
	}

	out, err := json.MarshalIndent(struct {
		Provider string      `json:"provider"`
		Data     interface{} `json:"data"`
	}{string(result.Provider), result.Data}, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}
