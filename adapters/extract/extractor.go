package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nuanswers/internal"
	"nuanswers/internal/errors"
	"nuanswers/ports"
)

// parseFunc reads a staged file and returns its text
type parseFunc func(path string) (string, error)

// Extractor stages uploads to a temporary file and dispatches on extension
type Extractor struct {
	tempDir string
	parsers map[string]parseFunc
	logger  *internal.Logger
}

var _ ports.TextExtractor = (*Extractor)(nil)

// New creates an extractor staging files in tempDir ("" uses the OS default)
func New(tempDir string, logger *internal.Logger) *Extractor {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Extractor{
		tempDir: tempDir,
		logger:  logger,
		parsers: map[string]parseFunc{
			".pdf":  parsePDF,
			".docx": parseDOCX,
			".txt":  parseTXT,
			".pptx": parsePPTX,
			".csv":  parseCSV,
			".xls":  parseSpreadsheet,
			".xlsx": parseSpreadsheet,
		},
	}
}

// Extensions lists the supported extensions in sorted order
func (e *Extractor) Extensions() []string {
	out := make([]string, 0, len(e.parsers))
	for ext := range e.parsers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether filename has a known text format
func (e *Extractor) Supports(filename string) bool {
	_, ok := e.parsers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extract returns the plain text of data. The staged copy is removed before
// returning, whatever the outcome.
func (e *Extractor) Extract(filename string, data []byte) (text string, err error) {
	ext := strings.ToLower(filepath.Ext(filename))

	path, err := e.stage(ext, data)
	if err != nil {
		return "", errors.Extraction(filename, err)
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.Warn("[Extractor] failed to remove staged file %s: %v", path, rmErr)
		}
	}()

	parse, ok := e.parsers[ext]
	if !ok {
		return "", errors.UnsupportedFormat(ext)
	}

	// parsers for binary formats can panic on malformed input
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errors.Extraction(filename, fmt.Errorf("parser panic: %v", r))
		}
	}()

	text, err = parse(path)
	if err != nil {
		e.logger.Debug("[Extractor] %s: %v", filename, err)
		return "", errors.Extraction(filename, err)
	}
	return text, nil
}

func (e *Extractor) stage(ext string, data []byte) (string, error) {
	f, err := os.CreateTemp(e.tempDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return path, nil
}
