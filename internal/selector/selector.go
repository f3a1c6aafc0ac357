// Package selector decides how much of an extracted document is forwarded
// to the chat model for a given query.
package selector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/deckchat/internal/deck"
)

// RemainingHeader introduces the one-line summaries in reduced mode.
const RemainingHeader = "SUMMARY OF REMAINING SLIDES:"

var slideRefRe = regexp.MustCompile(`(?i)slide\s+(\d+)`)

// Config holds the selection heuristics.
type Config struct {
	TokenBudget    int
	CharsPerToken  int
	VerbatimSlides int
	MaxKeyPoints   int
	SnippetChars   int
}

func DefaultConfig() Config {
	return Config{
		TokenBudget:    12000,
		CharsPerToken:  4,
		VerbatimSlides: 5,
		MaxKeyPoints:   3,
		SnippetChars:   100,
	}
}

// Selector applies a Config. The zero value is not usable; call New.
type Selector struct {
	cfg Config
}

// New returns a Selector. Non-positive fields fall back to DefaultConfig.
func New(cfg Config) *Selector {
	def := DefaultConfig()
	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = def.TokenBudget
	}
	if cfg.CharsPerToken <= 0 {
		cfg.CharsPerToken = def.CharsPerToken
	}
	if cfg.VerbatimSlides <= 0 {
		cfg.VerbatimSlides = def.VerbatimSlides
	}
	if cfg.MaxKeyPoints <= 0 {
		cfg.MaxKeyPoints = def.MaxKeyPoints
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = def.SnippetChars
	}
	return &Selector{cfg: cfg}
}

func (s *Selector) Config() Config { return s.cfg }

// WithinBudget reports whether the whole document fits the token budget.
func (s *Selector) WithinBudget(document string) bool {
	return EstimateTokens(document, s.cfg.CharsPerToken) <= s.cfg.TokenBudget
}

// Select returns the document unchanged when it fits the budget. Otherwise it
// returns the slides the query names, or the first slides verbatim followed
// by summaries of the rest.
//
// The summary block always starts after VerbatimSlides blocks, independent
// of which slides the query referenced.
func (s *Selector) Select(document, query string) string {
	if s.WithinBudget(document) {
		return document
	}
	blocks := SplitSlides(document)

	if refs := SlideRefs(query); len(refs) > 0 {
		var picked []string
		for _, n := range refs {
			if n >= 1 && n <= len(blocks) {
				picked = append(picked, deck.SlideMarker+blocks[n-1])
			}
		}
		if len(picked) > 0 {
			return strings.Join(picked, "\n\n")
		}
	}

	if len(blocks) == 0 {
		return document
	}
	verbatim := min(s.cfg.VerbatimSlides, len(blocks))
	parts := make([]string, 0, verbatim+1)
	for _, b := range blocks[:verbatim] {
		parts = append(parts, deck.SlideMarker+b)
	}
	if len(blocks) > verbatim {
		summaries := s.summarize(blocks)
		parts = append(parts, "\n"+RemainingHeader+"\n"+strings.Join(summaries[verbatim:], "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// SplitSlides returns the text following each slide marker, in order. Text
// before the first marker (the overview header) is not a block.
func SplitSlides(document string) []string {
	parts := strings.Split(document, deck.SlideMarker)
	return parts[1:]
}

// SlideRefs returns every "slide N" number mentioned in query, in order of
// appearance. Numbers that do not fit an int are skipped.
func SlideRefs(query string) []int {
	var refs []int
	for _, m := range slideRefRe.FindAllStringSubmatch(query, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		refs = append(refs, n)
	}
	return refs
}

// Summaries returns one line per slide block of document.
func (s *Selector) Summaries(document string) []string {
	return s.summarize(SplitSlides(document))
}

func (s *Selector) summarize(blocks []string) []string {
	summaries := make([]string, 0, len(blocks))
	for i, block := range blocks {
		var title string
		var points []string
		for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
			switch {
			case strings.HasPrefix(line, "TITLE:"):
				title = strings.TrimSpace(strings.ReplaceAll(line, "TITLE:", ""))
			case strings.HasPrefix(line, "CONTENT:"), strings.HasPrefix(line, "TEXT:"):
				_, rest, _ := strings.Cut(line, ":")
				points = append(points, s.snippet(strings.TrimSpace(rest)))
			case strings.HasPrefix(line, "TABLE:"):
				points = append(points, "Contains table data")
			}
		}

		summary := fmt.Sprintf("Slide %d", i+1)
		if title != "" {
			summary += ": " + title
		}
		if len(points) > 0 {
			if len(points) > s.cfg.MaxKeyPoints {
				points = points[:s.cfg.MaxKeyPoints]
			}
			summary += " - Key points: " + strings.Join(points, "; ")
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (s *Selector) snippet(text string) string {
	if utf8.RuneCountInString(text) <= s.cfg.SnippetChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:s.cfg.SnippetChars]) + "..."
}

var defaultSelector = New(DefaultConfig())

// Select applies the default configuration.
func Select(document, query string) string {
	return defaultSelector.Select(document, query)
}
