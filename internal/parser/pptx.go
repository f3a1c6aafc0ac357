package parser

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/deckchat/internal/deck"
	"github.com/dgallion1/deckchat/internal/pptx"
)

// PPTXParser handles .pptx slide decks.
type PPTXParser struct {
	Reader *pptx.Reader
	log    *slog.Logger
}

func (p *PPTXParser) Parse(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	reader := p.Reader
	if reader == nil {
		reader = pptx.NewReader(p.log)
	}
	d, err := reader.Read(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", filename, ErrUnsupportedOrCorrupt, err)
	}
	text, stats := deck.DocumentText(d)
	if p.log != nil {
		p.log.Info("presentation extracted",
			"filename", filename,
			"total_slides", stats.TotalSlides,
			"content_slides", stats.ContentSlides,
		)
	}
	return text, nil
}
