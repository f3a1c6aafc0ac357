// Package pptx reads Office Open XML presentations into the deck model.
package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/deckchat/internal/deck"
)

// ErrNotPresentation is returned when a zip container holds no presentation parts.
var ErrNotPresentation = errors.New("not a presentation")

const (
	presentationPart = "ppt/presentation.xml"
	maxPartBytes     = 64 << 20

	relTypeSlide      = "/slide"
	relTypeNotesSlide = "/notesSlide"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Reader parses .pptx bytes. Per-slide failures are logged and the slide is
// kept empty so slide counts stay true to the deck.
type Reader struct {
	log *slog.Logger
}

func NewReader(log *slog.Logger) *Reader {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Reader{log: log}
}

type container struct {
	parts map[string]*zip.File
}

// Read parses a presentation container into a deck with slides in
// presentation order.
func (r *Reader) Read(data []byte) (*deck.Deck, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	c := &container{parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		c.parts[strings.TrimPrefix(f.Name, "/")] = f
	}

	slidePaths, err := r.slideOrder(c)
	if err != nil {
		return nil, err
	}

	d := &deck.Deck{}
	for i, p := range slidePaths {
		slide, err := r.readSlide(c, p)
		if err != nil {
			r.log.Warn("slide unreadable, keeping it empty", "slide", i+1, "part", p, "error", err)
			slide = &deck.Slide{}
		}
		slide.Number = i + 1
		d.Slides = append(d.Slides, slide)
	}
	return d, nil
}

// slideOrder resolves slides through presentation.xml's sldIdLst, falling
// back to numbered slide parts when the list is missing or unusable.
func (r *Reader) slideOrder(c *container) ([]string, error) {
	ordered, err := orderFromPresentation(c)
	if err != nil {
		r.log.Debug("presentation slide list unusable, using part names", "error", err)
	}
	if len(ordered) > 0 {
		return ordered, nil
	}

	type numbered struct {
		n    int
		path string
	}
	var found []numbered
	for name := range c.parts {
		m := slidePartRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{n: n, path: name})
	}
	if len(found) == 0 {
		if _, ok := c.parts[presentationPart]; ok {
			return nil, nil
		}
		return nil, ErrNotPresentation
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}

func orderFromPresentation(c *container) ([]string, error) {
	if _, ok := c.parts[presentationPart]; !ok {
		return nil, nil
	}
	pres, err := c.parseXML(presentationPart)
	if err != nil {
		return nil, err
	}
	rels, err := c.relationships(presentationPart)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, id := range pres.path("sldIdLst").all("sldId") {
		rid, ok := id.nsAttr(relNS, "id")
		if !ok {
			continue
		}
		rel, ok := rels[rid]
		if !ok || !strings.HasSuffix(rel.typ, relTypeSlide) {
			continue
		}
		paths = append(paths, rel.target)
	}
	return paths, nil
}

func (r *Reader) readSlide(c *container, part string) (*deck.Slide, error) {
	root, err := c.parseXML(part)
	if err != nil {
		return nil, err
	}
	slide := &deck.Slide{}
	if tree := root.path("cSld", "spTree"); tree != nil {
		slide.Shapes = shapeTree(tree)
	}

	rels, err := c.relationships(part)
	if err != nil {
		r.log.Debug("slide relationships unreadable", "part", part, "error", err)
		return slide, nil
	}
	for _, rel := range rels {
		if !strings.HasSuffix(rel.typ, relTypeNotesSlide) {
			continue
		}
		notes, err := c.notesText(rel.target)
		if err != nil {
			r.log.Debug("notes unreadable", "part", rel.target, "error", err)
			continue
		}
		slide.Notes = notes
		break
	}
	return slide, nil
}

// notesText collects text from the body placeholders of a notes slide. The
// slide image and header/footer placeholders are ignored.
func (c *container) notesText(part string) (string, error) {
	root, err := c.parseXML(part)
	if err != nil {
		return "", err
	}
	tree := root.path("cSld", "spTree")
	if tree == nil {
		return "", nil
	}
	var parts []string
	for _, s := range shapeTree(tree) {
		f, ok := s.(*deck.FrameShape)
		if !ok || f.Role != deck.RoleBody {
			continue
		}
		if text := deck.ShapeText(f); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

func (c *container) read(part string) ([]byte, error) {
	f, ok := c.parts[part]
	if !ok {
		return nil, fmt.Errorf("part %s not found", part)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", part, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxPartBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", part, err)
	}
	if len(data) > maxPartBytes {
		return nil, fmt.Errorf("part %s exceeds %d bytes", part, maxPartBytes)
	}
	return data, nil
}

func (c *container) parseXML(part string) (*element, error) {
	data, err := c.read(part)
	if err != nil {
		return nil, err
	}
	root, err := parseXML(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", part, err)
	}
	return root, nil
}

type relationship struct {
	typ    string
	target string
}

// relationships loads the .rels part that belongs to part, with targets
// resolved to container paths. A part without relationships yields an empty map.
func (c *container) relationships(part string) (map[string]relationship, error) {
	dir, file := path.Split(part)
	relsPart := dir + "_rels/" + file + ".rels"
	if _, ok := c.parts[relsPart]; !ok {
		return map[string]relationship{}, nil
	}
	root, err := c.parseXML(relsPart)
	if err != nil {
		return nil, err
	}
	rels := make(map[string]relationship)
	for _, rel := range root.all("Relationship") {
		if mode, _ := rel.attr("TargetMode"); strings.EqualFold(mode, "External") {
			continue
		}
		id, _ := rel.attr("Id")
		typ, _ := rel.attr("Type")
		target, _ := rel.attr("Target")
		if id == "" || target == "" {
			continue
		}
		rels[id] = relationship{typ: typ, target: resolveTarget(dir, target)}
	}
	return rels, nil
}

func resolveTarget(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Clean(path.Join(dir, target)), "/")
}
