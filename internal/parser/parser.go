package parser

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/deckchat/internal/pptx"
)

var (
	// ErrUnsupportedOrCorrupt means the bytes could not be parsed as the
	// format the filename declares.
	ErrUnsupportedOrCorrupt = errors.New("unsupported or corrupt document")
	// ErrEncoding means a text payload is not valid UTF-8.
	ErrEncoding = errors.New("invalid utf-8 text")
)

// Parser converts raw document bytes into plain text.
type Parser interface {
	Parse(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions accepted for upload.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".pptx":     true,
}

// ForFile returns the appropriate parser for a filename. Unknown extensions
// get a lenient text parser.
func ForFile(filename string, log *slog.Logger) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md", ".markdown":
		return &TextParser{}
	case ".pptx":
		return &PPTXParser{Reader: pptx.NewReader(log), log: log}
	default:
		return &TextParser{Lenient: true}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extractor turns uploaded bytes into document text.
type Extractor struct {
	log *slog.Logger
}

func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Extractor{log: log}
}

// Extract dispatches on the filename extension. On failure it returns "" and
// an error wrapping ErrUnsupportedOrCorrupt or ErrEncoding.
func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	text, err := ForFile(filename, e.log).Parse(bytes.NewReader(data), filename)
	if err != nil {
		e.log.Warn("document extraction failed", "filename", filename, "bytes", len(data), "error", err)
		return "", err
	}
	return text, nil
}

// Extract runs a default Extractor that discards logs.
func Extract(data []byte, filename string) (string, error) {
	return NewExtractor(nil).Extract(data, filename)
}
