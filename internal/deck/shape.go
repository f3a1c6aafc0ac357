package deck

import "strings"

// Shape is a visual element on a slide. What a shape can contribute as text is
// expressed through the optional capability interfaces below; extractors probe
// for them instead of switching on concrete types.
type Shape interface {
	Name() string
}

// Texter is implemented by shapes that carry a direct text property.
type Texter interface {
	Text() string
}

// TextFramer is implemented by shapes that own a text frame.
type TextFramer interface {
	TextFrame() *TextFrame
}

// Tabler is implemented by shapes that carry a table.
type Tabler interface {
	Table() *Table
}

// Grouper is implemented by group shapes.
type Grouper interface {
	Shapes() []Shape
}

// Placeholder is implemented by shapes that may fill a layout placeholder.
type Placeholder interface {
	PlaceholderRole() Role
}

// Attributer exposes generic named attributes used as a last-resort text source.
type Attributer interface {
	Attr(name string) (string, bool)
}

// Role is the semantic purpose of a placeholder shape.
type Role int

const (
	RoleNone Role = iota
	RoleTitle
	RoleBody
	RoleOther
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleBody:
		return "body"
	case RoleOther:
		return "other"
	}
	return "none"
}

// Paragraph is one paragraph of a text frame. Text is the paragraph as the
// parser assembled it; Runs holds the individual run texts, which may disagree
// with Text for some producers.
type Paragraph struct {
	Level int
	Text  string
	Runs  []string
}

// TextFrame is an ordered list of paragraphs.
type TextFrame struct {
	Paragraphs []Paragraph
}

// Text joins paragraph texts with newlines.
func (f *TextFrame) Text() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(f.Paragraphs))
	for _, p := range f.Paragraphs {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// Table holds cell texts row by row.
type Table struct {
	Rows [][]string
}

// TextShape is a shape that only has a direct text property.
type TextShape struct {
	ShapeName string
	Value     string
	Attrs     map[string]string
}

func (s *TextShape) Name() string { return s.ShapeName }
func (s *TextShape) Text() string { return s.Value }

func (s *TextShape) Attr(name string) (string, bool) {
	v, ok := s.Attrs[name]
	return v, ok
}

// FrameShape is an auto shape or placeholder with a text frame.
type FrameShape struct {
	ShapeName string
	Role      Role
	Frame     *TextFrame
	Attrs     map[string]string
}

func (s *FrameShape) Name() string { return s.ShapeName }
func (s *FrameShape) TextFrame() *TextFrame { return s.Frame }
func (s *FrameShape) PlaceholderRole() Role { return s.Role }

func (s *FrameShape) Attr(name string) (string, bool) {
	v, ok := s.Attrs[name]
	return v, ok
}

// TableShape is a graphic frame holding a table.
type TableShape struct {
	ShapeName string
	Role      Role
	Grid      *Table
}

func (s *TableShape) Name() string { return s.ShapeName }
func (s *TableShape) Table() *Table { return s.Grid }
func (s *TableShape) PlaceholderRole() Role { return s.Role }

// GroupShape owns nested shapes.
type GroupShape struct {
	ShapeName string
	Children  []Shape
}

func (s *GroupShape) Name() string { return s.ShapeName }
func (s *GroupShape) Shapes() []Shape { return s.Children }

// BareShape is a shape with no text capability (pictures, connectors, charts).
type BareShape struct {
	ShapeName string
}

func (s *BareShape) Name() string { return s.ShapeName }

// Slide is one slide of a deck. Number is the 1-based position in the deck.
type Slide struct {
	Number int
	Shapes []Shape
	Notes  string
}

// Deck is a parsed presentation.
type Deck struct {
	Slides []*Slide
}
