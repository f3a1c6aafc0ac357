package pptx

import (
	"strings"

	"github.com/dgallion1/deckchat/internal/deck"
)

// shapeTree converts the children of a p:spTree (or p:grpSp) into shapes in
// document order.
func shapeTree(container *element) []deck.Shape {
	var shapes []deck.Shape
	for _, c := range container.children {
		shapes = append(shapes, shapesOf(c)...)
	}
	return shapes
}

func shapesOf(e *element) []deck.Shape {
	switch e.name {
	case "sp":
		return []deck.Shape{autoShape(e)}
	case "grpSp":
		return []deck.Shape{&deck.GroupShape{
			ShapeName: shapeName(e.child("nvGrpSpPr")),
			Children:  shapeTree(e),
		}}
	case "graphicFrame":
		return []deck.Shape{graphicFrame(e)}
	case "pic":
		return []deck.Shape{&deck.BareShape{ShapeName: shapeName(e.child("nvPicPr"))}}
	case "cxnSp":
		return []deck.Shape{&deck.BareShape{ShapeName: shapeName(e.child("nvCxnSpPr"))}}
	case "AlternateContent":
		for _, choice := range e.all("Choice") {
			if shapes := shapeTree(choice); len(shapes) > 0 {
				return shapes
			}
		}
		return shapeTreeOrNil(e.child("Fallback"))
	}
	return nil
}

func shapeTreeOrNil(e *element) []deck.Shape {
	if e == nil {
		return nil
	}
	return shapeTree(e)
}

func autoShape(e *element) deck.Shape {
	nv := e.child("nvSpPr")
	name := shapeName(nv)
	body := e.child("txBody")
	if body == nil {
		return &deck.BareShape{ShapeName: name}
	}
	return &deck.FrameShape{
		ShapeName: name,
		Role:      placeholderRole(nv),
		Frame:     textFrame(body),
	}
}

func graphicFrame(e *element) deck.Shape {
	nv := e.child("nvGraphicFramePr")
	name := shapeName(nv)
	tbl := e.path("graphic", "graphicData", "tbl")
	if tbl == nil {
		return &deck.BareShape{ShapeName: name}
	}
	t := &deck.Table{}
	for _, tr := range tbl.all("tr") {
		var row []string
		for _, tc := range tr.all("tc") {
			row = append(row, cellText(tc))
		}
		t.Rows = append(t.Rows, row)
	}
	return &deck.TableShape{
		ShapeName: name,
		Role:      placeholderRole(nv),
		Grid:      t,
	}
}

func cellText(tc *element) string {
	body := tc.child("txBody")
	if body == nil {
		return ""
	}
	return textFrame(body).Text()
}

// shapeName reads cNvPr@name from a non-visual properties element.
func shapeName(nv *element) string {
	name, _ := nv.child("cNvPr").attr("name")
	return name
}

func placeholderRole(nv *element) deck.Role {
	ph := nv.path("nvPr", "ph")
	if ph == nil {
		return deck.RoleNone
	}
	typ, _ := ph.attr("type")
	switch typ {
	case "title":
		return deck.RoleTitle
	case "body":
		return deck.RoleBody
	}
	return deck.RoleOther
}

func textFrame(body *element) *deck.TextFrame {
	tf := &deck.TextFrame{}
	for _, p := range body.all("p") {
		tf.Paragraphs = append(tf.Paragraphs, paragraph(p))
	}
	return tf
}

// paragraph concatenates a:r, a:fld and a:br children in order. Line breaks
// become newlines in the paragraph text.
func paragraph(p *element) deck.Paragraph {
	para := deck.Paragraph{Level: p.child("pPr").intAttr("lvl")}
	var sb strings.Builder
	for _, c := range p.children {
		switch c.name {
		case "r", "fld":
			text := c.child("t").textOrEmpty()
			sb.WriteString(text)
			para.Runs = append(para.Runs, text)
		case "br":
			sb.WriteString("\n")
		}
	}
	para.Text = sb.String()
	return para
}

func (e *element) textOrEmpty() string {
	if e == nil {
		return ""
	}
	return e.text
}
