// Package pptx opens PowerPoint (.pptx) files into the deck model.
// A .pptx file is a zip of OOXML parts; this adapter reads only what
// the pipeline consumes: slide order, layout names, title placeholders,
// shape text, shape geometry and outline colors. It is not a general
// OOXML library.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/loadshare/brain/pkg/brain/deck"
)

// Open reads a .pptx file and returns its document model.
func Open(filePath string) (*deck.Document, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer zr.Close()

	parts := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		parts[f.Name] = data
	}

	return build(parts)
}

// Opener returns Open as a deck.Opener.
func Opener() deck.Opener {
	return deck.OpenerFunc(Open)
}

func build(parts map[string][]byte) (*deck.Document, error) {
	slidePaths, err := slideOrder(parts)
	if err != nil {
		return nil, err
	}

	doc := &deck.Document{Slides: make([]deck.Slide, 0, len(slidePaths))}
	for _, sp := range slidePaths {
		data, ok := parts[sp]
		if !ok {
			return nil, fmt.Errorf("missing slide part %s", sp)
		}

		slide, err := parseSlide(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", sp, err)
		}

		slide.LayoutName = layoutName(parts, sp)
		doc.Slides = append(doc.Slides, slide)
	}

	return doc, nil
}

// relationships is the shared shape of .rels parts.
type relationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func parseRels(data []byte) (relationships, error) {
	var rels relationships
	err := xml.Unmarshal(data, &rels)
	return rels, err
}

// slideOrder resolves the presentation's slide parts in deck order by
// walking the sldIdLst and the presentation relationships.
func slideOrder(parts map[string][]byte) ([]string, error) {
	pres, ok := parts["ppt/presentation.xml"]
	if !ok {
		return nil, fmt.Errorf("missing ppt/presentation.xml")
	}
	relsData, ok := parts["ppt/_rels/presentation.xml.rels"]
	if !ok {
		return nil, fmt.Errorf("missing presentation rels")
	}

	rels, err := parseRels(relsData)
	if err != nil {
		return nil, fmt.Errorf("parse presentation rels: %w", err)
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		targets[r.ID] = resolveTarget("ppt", r.Target)
	}

	var order []string
	dec := xml.NewDecoder(bytes.NewReader(pres))
	inList := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse presentation.xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sldIdLst":
				inList = true
			case "sldId":
				if !inList {
					continue
				}
				// sldId carries two "id" attributes: the numeric slide
				// id (no namespace) and the relationship r:id.
				for _, a := range el.Attr {
					if a.Name.Local == "id" && a.Name.Space != "" {
						if target, ok := targets[a.Value]; ok {
							order = append(order, target)
						}
					}
				}
			}
		case xml.EndElement:
			if el.Name.Local == "sldIdLst" {
				inList = false
			}
		}
	}

	return order, nil
}

// layoutName returns the cSld name of the slide's layout, or "" when
// the layout cannot be resolved. A missing layout is not an error; it
// just means the slide can never be a divider.
func layoutName(parts map[string][]byte, slidePath string) string {
	relsPath := path.Join(path.Dir(slidePath), "_rels", path.Base(slidePath)+".rels")
	relsData, ok := parts[relsPath]
	if !ok {
		return ""
	}
	rels, err := parseRels(relsData)
	if err != nil {
		return ""
	}

	layoutPath := ""
	for _, r := range rels.Rels {
		if strings.HasSuffix(r.Type, "/slideLayout") {
			layoutPath = resolveTarget(path.Dir(slidePath), r.Target)
			break
		}
	}
	if layoutPath == "" {
		return ""
	}

	data, ok := parts[layoutPath]
	if !ok {
		return ""
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "cSld" {
			for _, a := range el.Attr {
				if a.Name.Local == "name" {
					return a.Value
				}
			}
			return ""
		}
	}
}

// shapeState accumulates one shape while walking slide XML.
type shapeState struct {
	isPicture  bool
	isTitle    bool
	havePos    bool
	box        deck.Box
	outline    *deck.RGB
	paragraphs []string
	current    strings.Builder
}

// parseSlide walks one slide part and collects its shapes. Text runs
// within a shape join paragraph-wise with newlines, matching how the
// slides were authored (multi-line callout labels).
func parseSlide(data []byte) (deck.Slide, error) {
	var slide deck.Slide

	var stack []*shapeState
	inLine := false // inside <a:ln>, where srgbClr means outline color

	finish := func(st *shapeState) {
		text := strings.Join(st.paragraphs, "\n")
		shape := deck.Shape{
			Text:      text,
			Outline:   st.outline,
			Box:       st.box,
			IsPicture: st.isPicture,
		}
		slide.Shapes = append(slide.Shapes, shape)

		if st.isTitle {
			slide.Title = strings.TrimSpace(text)
			slide.HasTitle = true
		}
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return deck.Slide{}, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sp":
				stack = append(stack, &shapeState{})
			case "pic":
				stack = append(stack, &shapeState{isPicture: true})
			case "ph":
				if st := top(stack); st != nil {
					for _, a := range el.Attr {
						if a.Name.Local == "type" && (a.Value == "title" || a.Value == "ctrTitle") {
							st.isTitle = true
						}
					}
				}
			case "off":
				if st := top(stack); st != nil && !st.havePos {
					st.havePos = true
					for _, a := range el.Attr {
						v, err := strconv.ParseInt(a.Value, 10, 64)
						if err != nil {
							continue
						}
						switch a.Name.Local {
						case "x":
							st.box.Left = v
						case "y":
							st.box.Top = v
						}
					}
				}
			case "ln":
				inLine = true
			case "srgbClr":
				if st := top(stack); st != nil && inLine && st.outline == nil {
					for _, a := range el.Attr {
						if a.Name.Local == "val" {
							if rgb, ok := parseHexColor(a.Value); ok {
								st.outline = &rgb
							}
						}
					}
				}
			case "t":
				if st := top(stack); st != nil {
					var text string
					if err := dec.DecodeElement(&text, &el); err != nil {
						return deck.Slide{}, err
					}
					st.current.WriteString(text)
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "sp", "pic":
				if st := top(stack); st != nil {
					if st.current.Len() > 0 {
						st.paragraphs = append(st.paragraphs, st.current.String())
						st.current.Reset()
					}
					finish(st)
					stack = stack[:len(stack)-1]
				}
			case "p":
				if st := top(stack); st != nil && st.current.Len() > 0 {
					st.paragraphs = append(st.paragraphs, st.current.String())
					st.current.Reset()
				}
			case "ln":
				inLine = false
			}
		}
	}

	return slide, nil
}

func top(stack []*shapeState) *shapeState {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// parseHexColor decodes an RRGGBB hex color.
func parseHexColor(s string) (deck.RGB, bool) {
	if len(s) != 6 {
		return deck.RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return deck.RGB{}, false
	}
	return deck.RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, true
}

// resolveTarget resolves a relationship target against its base dir.
func resolveTarget(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(base, target))
}
