package deck

import (
	"fmt"
	"strings"
)

// NoContentMessage is returned for a deck where no slide yields any text.
const NoContentMessage = "No text content found in the PowerPoint file."

// SlideMarker starts every slide block in extracted text.
const SlideMarker = "=== SLIDE"

// fallbackAttrs are generic attribute names probed after every other strategy.
var fallbackAttrs = []string{"text", "content", "value"}

// shapeStrategy yields the text fragments one source contributes for a shape.
type shapeStrategy func(Shape) []string

// shapeStrategies run in order; their non-empty results are concatenated.
// Filled in init because groupText recurses through ShapeText.
var shapeStrategies []shapeStrategy

func init() {
	shapeStrategies = []shapeStrategy{
		directText,
		frameText,
		tableText,
		groupText,
		attrText,
	}
}

// ShapeText extracts all text a shape carries. A strategy that panics on a
// malformed shape contributes nothing; the remaining strategies still run.
func ShapeText(s Shape) string {
	if s == nil {
		return ""
	}
	var fragments []string
	seen := make(map[string]bool)
	for _, strategy := range shapeStrategies {
		for _, text := range safeApply(strategy, s) {
			text = strings.TrimSpace(text)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			fragments = append(fragments, text)
		}
	}
	return strings.Join(fragments, " ")
}

func safeApply(strategy shapeStrategy, s Shape) (fragments []string) {
	defer func() {
		if recover() != nil {
			fragments = nil
		}
	}()
	return strategy(s)
}

func directText(s Shape) []string {
	if t, ok := s.(Texter); ok {
		return []string{t.Text()}
	}
	return nil
}

// frameText renders paragraphs in order, indenting bulleted levels, then
// appends any run text the paragraph text did not already contain.
func frameText(s Shape) []string {
	tf, ok := s.(TextFramer)
	if !ok || tf.TextFrame() == nil {
		return nil
	}
	var lines []string
	for _, p := range tf.TextFrame().Paragraphs {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if p.Level > 0 {
			text = strings.Repeat("  ", p.Level) + "• " + text
		}
		lines = append(lines, text)
	}
	collected := strings.Join(lines, "\n")
	for _, p := range tf.TextFrame().Paragraphs {
		for _, run := range p.Runs {
			run = strings.TrimSpace(run)
			if run == "" || strings.Contains(collected, run) {
				continue
			}
			lines = append(lines, run)
			collected = strings.Join(lines, "\n")
		}
	}
	return []string{collected}
}

func tableText(s Shape) []string {
	t, ok := s.(Tabler)
	if !ok || t.Table() == nil {
		return nil
	}
	var rows []string
	for _, row := range t.Table().Rows {
		var cells []string
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return []string{"TABLE:\n" + strings.Join(rows, "\n")}
}

func groupText(s Shape) []string {
	g, ok := s.(Grouper)
	if !ok {
		return nil
	}
	var parts []string
	for _, child := range g.Shapes() {
		if text := ShapeText(child); text != "" {
			parts = append(parts, text)
		}
	}
	return []string{strings.Join(parts, " ")}
}

func attrText(s Shape) []string {
	a, ok := s.(Attributer)
	if !ok {
		return nil
	}
	var values []string
	for _, name := range fallbackAttrs {
		if v, ok := a.Attr(name); ok {
			values = append(values, v)
		}
	}
	return values
}

// ContentType labels a shape for the slide listing: TITLE, CONTENT, TABLE,
// TEXT, or "" when nothing applies.
func ContentType(s Shape) string {
	name := strings.ToLower(s.Name())
	role := RoleNone
	if p, ok := s.(Placeholder); ok {
		role = p.PlaceholderRole()
	}
	switch {
	case role == RoleTitle || strings.Contains(name, "title"):
		return "TITLE"
	case role == RoleBody || strings.Contains(name, "content") || strings.Contains(name, "body"):
		return "CONTENT"
	}
	if t, ok := s.(Tabler); ok && t.Table() != nil {
		return "TABLE"
	}
	if tf, ok := s.(TextFramer); ok && tf.TextFrame() != nil {
		return "TEXT"
	}
	return ""
}

// SlideText renders one slide as a block headed "=== SLIDE n ===". It reports
// false when the slide has nothing beyond that header.
func SlideText(slide *Slide, n int) (string, bool) {
	if slide == nil {
		return "", false
	}
	lines := []string{fmt.Sprintf("%s %d ===", SlideMarker, n)}
	if notes := strings.TrimSpace(slide.Notes); notes != "" {
		lines = append(lines, "NOTES: "+notes)
	}
	for _, s := range slide.Shapes {
		text := ShapeText(s)
		if text == "" {
			continue
		}
		if kind := contentTypeOf(s); kind != "" {
			lines = append(lines, kind+": "+text)
		} else {
			lines = append(lines, text)
		}
	}
	if len(lines) == 1 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

func contentTypeOf(s Shape) (kind string) {
	defer func() {
		if recover() != nil {
			kind = ""
		}
	}()
	return ContentType(s)
}

// Stats describes what DocumentText produced.
type Stats struct {
	TotalSlides   int
	ContentSlides int
}

// DocumentText renders a whole deck: an overview header followed by every
// slide block that has content, separated by blank lines.
func DocumentText(d *Deck) (string, Stats) {
	var stats Stats
	if d == nil {
		return NoContentMessage, stats
	}
	stats.TotalSlides = len(d.Slides)
	var blocks []string
	for i, slide := range d.Slides {
		if text, ok := SlideText(slide, i+1); ok {
			blocks = append(blocks, text)
		}
	}
	stats.ContentSlides = len(blocks)
	if len(blocks) == 0 {
		return NoContentMessage, stats
	}
	header := fmt.Sprintf("PRESENTATION OVERVIEW:\nTotal Slides: %d\nContent Extracted: %d slides\n\n",
		stats.TotalSlides, stats.ContentSlides)
	return header + strings.Join(blocks, "\n\n"), stats
}
