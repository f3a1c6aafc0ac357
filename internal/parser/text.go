package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// TextParser handles plain text and markdown files, returned verbatim.
// Lenient mode replaces invalid byte sequences instead of failing.
type TextParser struct {
	Lenient bool
}

func (p *TextParser) Parse(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	if p.Lenient {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
	}
	return "", fmt.Errorf("%s: %w", filename, ErrEncoding)
}
