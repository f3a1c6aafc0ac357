package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/deckchat/internal/deck"
)

const (
	nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	relsDecl  = `xmlns="http://schemas.openxmlformats.org/package/2006/relationships"`
	slideType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	notesType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
)

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func slideXML(shapes string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld ` + nsDecl + `><p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		shapes + `</p:spTree></p:cSld></p:sld>`
}

func textBox(name, ph string, paras ...string) string {
	nvPr := "<p:nvPr/>"
	if ph != "" {
		nvPr = "<p:nvPr>" + ph + "</p:nvPr>"
	}
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="` + name + `"/><p:cNvSpPr/>` + nvPr + `</p:nvSpPr>` +
		`<p:spPr/><p:txBody><a:bodyPr/>` + strings.Join(paras, "") + `</p:txBody></p:sp>`
}

func para(text string) string {
	return `<a:p><a:r><a:t>` + text + `</a:t></a:r></a:p>`
}

func presentation(t *testing.T, slides []string, extra map[string]string) []byte {
	t.Helper()
	parts := map[string]string{}
	var ids, rels strings.Builder
	for i, s := range slides {
		n := i + 1
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", n)] = s
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, n, slideType, n)
	}
	parts["ppt/presentation.xml"] = `<p:presentation ` + nsDecl + `><p:sldIdLst>` + ids.String() + `</p:sldIdLst></p:presentation>`
	parts["ppt/_rels/presentation.xml.rels"] = `<Relationships ` + relsDecl + `>` + rels.String() + `</Relationships>`
	for k, v := range extra {
		parts[k] = v
	}
	return buildZip(t, parts)
}

func TestRead_SingleTextBox(t *testing.T) {
	data := presentation(t, []string{slideXML(textBox("TextBox 1", "", para("Hello")))}, nil)
	d, err := NewReader(nil).Read(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Slides) != 1 {
		t.Fatalf("expected 1 slide, got %d", len(d.Slides))
	}
	got, stats := deck.DocumentText(d)
	if !strings.Contains(got, "=== SLIDE 1 ===\nTEXT: Hello") {
		t.Errorf("expected text box in output, got %q", got)
	}
	if stats.TotalSlides != 1 {
		t.Errorf("expected 1 total slide, got %d", stats.TotalSlides)
	}
}

func TestRead_PlaceholdersAndBullets(t *testing.T) {
	shapes := textBox("Title 1", `<p:ph type="title"/>`, para("Quarterly Review")) +
		textBox("Content Placeholder 2", `<p:ph idx="1"/>`,
			para("Revenue"),
			`<a:p><a:pPr lvl="1"/><a:r><a:t>Up </a:t></a:r><a:r><a:t>12%</a:t></a:r></a:p>`)
	d, err := NewReader(nil).Read(presentation(t, []string{slideXML(shapes)}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := d.Slides[0]
	if len(s.Shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(s.Shapes))
	}
	title, ok := s.Shapes[0].(*deck.FrameShape)
	if !ok || title.Role != deck.RoleTitle {
		t.Fatalf("expected title frame shape, got %#v", s.Shapes[0])
	}
	body := s.Shapes[1].(*deck.FrameShape)
	if body.Role != deck.RoleOther {
		t.Errorf("expected untyped placeholder to be RoleOther, got %v", body.Role)
	}
	if got := deck.ShapeText(body); got != "Revenue\n  • Up 12%" {
		t.Errorf("unexpected body text %q", got)
	}
	text, _ := deck.SlideText(s, 1)
	if !strings.Contains(text, "TITLE: Quarterly Review") || !strings.Contains(text, "CONTENT: Revenue") {
		t.Errorf("unexpected slide text %q", text)
	}
}

func TestRead_Table(t *testing.T) {
	table := `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="4" name="Table 3"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>` +
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>` +
		`<a:tr><a:tc><a:txBody>` + para("A") + `</a:txBody></a:tc><a:tc><a:txBody>` + para("B") + `</a:txBody></a:tc></a:tr>` +
		`<a:tr><a:tc><a:txBody>` + para("C") + `</a:txBody></a:tc><a:tc><a:txBody>` + para("D") + `</a:txBody></a:tc></a:tr>` +
		`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
	d, err := NewReader(nil).Read(presentation(t, []string{slideXML(table)}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := deck.ShapeText(d.Slides[0].Shapes[0]); got != "TABLE:\nA | B\nC | D" {
		t.Errorf("unexpected table text %q", got)
	}
}

func TestRead_GroupsAndPictures(t *testing.T) {
	group := `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="5" name="Group 4"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		textBox("TextBox 6", "", para("left")) +
		`<p:pic><p:nvPicPr><p:cNvPr id="7" name="Picture 7"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr></p:pic>` +
		textBox("TextBox 8", "", para("right")) +
		`</p:grpSp>`
	d, err := NewReader(nil).Read(presentation(t, []string{slideXML(group)}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, ok := d.Slides[0].Shapes[0].(*deck.GroupShape)
	if !ok {
		t.Fatalf("expected group shape, got %#v", d.Slides[0].Shapes[0])
	}
	if g.Name() != "Group 4" || len(g.Children) != 3 {
		t.Fatalf("unexpected group %q with %d children", g.Name(), len(g.Children))
	}
	if got := deck.ShapeText(g); got != "left right" {
		t.Errorf("expected %q, got %q", "left right", got)
	}
}

func TestRead_NotesFromBodyPlaceholder(t *testing.T) {
	notes := `<p:notes ` + nsDecl + `><p:cSld><p:spTree>` +
		textBox("Slide Image Placeholder 1", `<p:ph type="sldImg"/>`) +
		textBox("Notes Placeholder 2", `<p:ph type="body" idx="1"/>`, para("Mention the pilot")) +
		textBox("Slide Number Placeholder 3", `<p:ph type="sldNum" idx="5"/>`, para("1")) +
		`</p:spTree></p:cSld></p:notes>`
	extra := map[string]string{
		"ppt/slides/_rels/slide1.xml.rels": `<Relationships ` + relsDecl + `>` +
			`<Relationship Id="rId2" Type="` + notesType + `" Target="../notesSlides/notesSlide1.xml"/></Relationships>`,
		"ppt/notesSlides/notesSlide1.xml": notes,
	}
	d, err := NewReader(nil).Read(presentation(t, []string{slideXML(textBox("TextBox 1", "", para("Hi")))}, extra))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Slides[0].Notes != "Mention the pilot" {
		t.Errorf("expected notes %q, got %q", "Mention the pilot", d.Slides[0].Notes)
	}
}

func TestRead_OrderFollowsPresentation(t *testing.T) {
	parts := map[string]string{
		"ppt/slides/slide1.xml": slideXML(textBox("TextBox 1", "", para("first part"))),
		"ppt/slides/slide2.xml": slideXML(textBox("TextBox 1", "", para("second part"))),
		"ppt/presentation.xml": `<p:presentation ` + nsDecl + `><p:sldIdLst>` +
			`<p:sldId id="256" r:id="rId9"/><p:sldId id="257" r:id="rId3"/></p:sldIdLst></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": `<Relationships ` + relsDecl + `>` +
			`<Relationship Id="rId3" Type="` + slideType + `" Target="slides/slide1.xml"/>` +
			`<Relationship Id="rId9" Type="` + slideType + `" Target="/ppt/slides/slide2.xml"/></Relationships>`,
	}
	d, err := NewReader(nil).Read(buildZip(t, parts))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(d.Slides))
	}
	if got := deck.ShapeText(d.Slides[0].Shapes[0]); got != "second part" {
		t.Errorf("expected slide 2 part first, got %q", got)
	}
	if d.Slides[1].Number != 2 {
		t.Errorf("expected second slide numbered 2, got %d", d.Slides[1].Number)
	}
}

func TestRead_FallbackToPartNames(t *testing.T) {
	parts := map[string]string{
		"ppt/slides/slide10.xml": slideXML(textBox("TextBox 1", "", para("ten"))),
		"ppt/slides/slide2.xml":  slideXML(textBox("TextBox 1", "", para("two"))),
	}
	d, err := NewReader(nil).Read(buildZip(t, parts))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(d.Slides))
	}
	if got := deck.ShapeText(d.Slides[0].Shapes[0]); got != "two" {
		t.Errorf("expected numeric ordering, got %q first", got)
	}
}

func TestRead_BrokenSlideKeptEmpty(t *testing.T) {
	slides := []string{
		slideXML(textBox("TextBox 1", "", para("ok"))),
		`<p:sld ` + nsDecl + `><p:cSld><p:spTree>`,
	}
	d, err := NewReader(nil).Read(presentation(t, slides, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Slides) != 2 {
		t.Fatalf("expected broken slide to be counted, got %d slides", len(d.Slides))
	}
	if len(d.Slides[1].Shapes) != 0 {
		t.Errorf("expected broken slide to be empty, got %d shapes", len(d.Slides[1].Shapes))
	}
	got, stats := deck.DocumentText(d)
	if stats.TotalSlides != 2 || stats.ContentSlides != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if strings.Count(got, deck.SlideMarker) != 1 {
		t.Errorf("expected one slide block, got %q", got)
	}
}

func TestRead_AlternateContent(t *testing.T) {
	alt := `<mc:AlternateContent xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">` +
		`<mc:Choice Requires="p14"></mc:Choice>` +
		`<mc:Fallback>` + textBox("TextBox 2", "", para("fallback text")) + `</mc:Fallback></mc:AlternateContent>`
	d, err := NewReader(nil).Read(presentation(t, []string{slideXML(alt)}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Slides[0].Shapes) != 1 || deck.ShapeText(d.Slides[0].Shapes[0]) != "fallback text" {
		t.Errorf("expected fallback shape, got %#v", d.Slides[0].Shapes)
	}
}

func TestRead_LineBreaksAndFields(t *testing.T) {
	p := `<a:p><a:r><a:t>Line one</a:t></a:r><a:br/><a:r><a:t>Line two</a:t></a:r>` +
		`<a:fld id="{1}" type="slidenum"><a:t>3</a:t></a:fld></a:p>`
	d, err := NewReader(nil).Read(presentation(t, []string{slideXML(textBox("TextBox 1", "", p))}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frame := d.Slides[0].Shapes[0].(*deck.FrameShape).Frame
	if got := frame.Paragraphs[0].Text; got != "Line one\nLine two3" {
		t.Errorf("unexpected paragraph text %q", got)
	}
	if len(frame.Paragraphs[0].Runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(frame.Paragraphs[0].Runs))
	}
}

func TestRead_NotAZip(t *testing.T) {
	if _, err := NewReader(nil).Read([]byte("plain text, not a container")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestRead_ZipWithoutSlides(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": "<w:document/>"})
	_, err := NewReader(nil).Read(data)
	if !errors.Is(err, ErrNotPresentation) {
		t.Fatalf("expected ErrNotPresentation, got %v", err)
	}
}

func TestRead_LatinCharsetPart(t *testing.T) {
	s := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		`<p:sld ` + nsDecl + `><p:cSld><p:spTree>` + textBox("TextBox 1", "", para("caf\xe9")) +
		`</p:spTree></p:cSld></p:sld>`
	d, err := NewReader(nil).Read(presentation(t, []string{s}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := deck.ShapeText(d.Slides[0].Shapes[0]); got != "café" {
		t.Errorf("expected decoded latin-1 text, got %q", got)
	}
}
