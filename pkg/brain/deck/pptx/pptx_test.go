package pptx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loadshare/brain/pkg/brain/deck"
)

const presentationXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
                xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>
    <p:sldId id="256" r:id="rId1"/>
    <p:sldId id="257" r:id="rId2"/>
  </p:sldIdLst>
</p:presentation>`

// Relationship entries deliberately appear in reverse file order: the
// deck order must come from sldIdLst, not from the rels part.
const presentationRels = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
</Relationships>`

const slide1XML = `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:sp>
        <p:nvSpPr><p:nvPr><p:ph type="ctrTitle"/></p:nvPr></p:nvSpPr>
        <p:spPr><a:xfrm><a:off x="100" y="200"/></a:xfrm></p:spPr>
        <p:txBody>
          <a:p><a:r><a:t>RTO Bagging Training</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sld>`

const slide2XML = `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:sp>
        <p:spPr>
          <a:xfrm><a:off x="914400" y="457200"/></a:xfrm>
          <a:ln><a:solidFill><a:srgbClr val="FF0000"/></a:solidFill></a:ln>
        </p:spPr>
        <p:txBody>
          <a:p><a:r><a:t>Go to </a:t></a:r><a:r><a:t>RTO(1)</a:t></a:r></a:p>
          <a:p><a:r><a:t>as shown below</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
      <p:pic>
        <p:spPr><a:xfrm><a:off x="5000" y="6000"/></a:xfrm></p:spPr>
      </p:pic>
    </p:spTree>
  </p:cSld>
</p:sld>`

const slideRelsTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/%LAYOUT%"/>
</Relationships>`

const titleLayoutXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld name="Title Slide"/>
</p:sldLayout>`

const customLayoutXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld name="Custom Layout"/>
</p:sldLayout>`

func slideRels(layout string) string {
	return strings.ReplaceAll(slideRelsTemplate, "%LAYOUT%", layout)
}

func writeFixture(t *testing.T, parts map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func fixtureParts() map[string]string {
	return map[string]string{
		"ppt/presentation.xml":              presentationXML,
		"ppt/_rels/presentation.xml.rels":   presentationRels,
		"ppt/slides/slide1.xml":             slide1XML,
		"ppt/slides/slide2.xml":             slide2XML,
		"ppt/slides/_rels/slide1.xml.rels":  slideRels("slideLayout1.xml"),
		"ppt/slides/_rels/slide2.xml.rels":  slideRels("slideLayout2.xml"),
		"ppt/slideLayouts/slideLayout1.xml": titleLayoutXML,
		"ppt/slideLayouts/slideLayout2.xml": customLayoutXML,
	}
}

func TestOpen(t *testing.T) {
	path := writeFixture(t, fixtureParts())

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if doc.SlideCount() != 2 {
		t.Fatalf("Expected 2 slides, got %d", doc.SlideCount())
	}

	first := doc.Slides[0]
	if first.LayoutName != "Title Slide" {
		t.Errorf("Slide 1 layout = %q, want %q", first.LayoutName, "Title Slide")
	}
	if !first.HasTitle || first.Title != "RTO Bagging Training" {
		t.Errorf("Slide 1 title = %q (hasTitle=%v)", first.Title, first.HasTitle)
	}
	if len(first.Shapes) != 1 {
		t.Fatalf("Slide 1 shapes = %d, want 1", len(first.Shapes))
	}
	if first.Shapes[0].Box.Left != 100 || first.Shapes[0].Box.Top != 200 {
		t.Errorf("Slide 1 shape box = %+v", first.Shapes[0].Box)
	}

	second := doc.Slides[1]
	if second.LayoutName != "Custom Layout" {
		t.Errorf("Slide 2 layout = %q, want %q", second.LayoutName, "Custom Layout")
	}
	if second.HasTitle {
		t.Error("Slide 2 must not have a title")
	}
	if len(second.Shapes) != 2 {
		t.Fatalf("Slide 2 shapes = %d, want 2", len(second.Shapes))
	}

	callout := second.Shapes[0]
	if callout.Text != "Go to RTO(1)\nas shown below" {
		t.Errorf("Runs must join within a paragraph and paragraphs with newlines, got %q", callout.Text)
	}
	if callout.Outline == nil {
		t.Fatal("Slide 2 callout must carry an outline color")
	}
	if *callout.Outline != (deck.RGB{R: 255, G: 0, B: 0}) {
		t.Errorf("Outline = %+v, want red", *callout.Outline)
	}
	if callout.Box.Left != 914400 || callout.Box.Top != 457200 {
		t.Errorf("Callout box = %+v", callout.Box)
	}
	if callout.IsPicture {
		t.Error("Text shape flagged as picture")
	}

	pic := second.Shapes[1]
	if !pic.IsPicture {
		t.Error("Picture shape not flagged")
	}
	if pic.Box.Left != 5000 || pic.Box.Top != 6000 {
		t.Errorf("Picture box = %+v", pic.Box)
	}
}

func TestOpenOrderFollowsSlideIDList(t *testing.T) {
	parts := fixtureParts()
	// Swap the listed order; the parts themselves do not move.
	swapped := strings.ReplaceAll(presentationXML, `r:id="rId1"`, `r:id="rIdX"`)
	swapped = strings.ReplaceAll(swapped, `r:id="rId2"`, `r:id="rId1"`)
	swapped = strings.ReplaceAll(swapped, `r:id="rIdX"`, `r:id="rId2"`)
	parts["ppt/presentation.xml"] = swapped

	path := writeFixture(t, parts)
	doc, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Slides[0].LayoutName != "Custom Layout" {
		t.Errorf("Deck order must follow sldIdLst, got first layout %q", doc.Slides[0].LayoutName)
	}
}

func TestOpenMissingLayoutIsNotAnError(t *testing.T) {
	parts := fixtureParts()
	delete(parts, "ppt/slides/_rels/slide2.xml.rels")
	delete(parts, "ppt/slideLayouts/slideLayout2.xml")

	path := writeFixture(t, parts)
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Missing layout must not fail the open: %v", err)
	}
	if doc.Slides[1].LayoutName != "" {
		t.Errorf("Expected empty layout name, got %q", doc.Slides[1].LayoutName)
	}
}

func TestOpenMissingPresentationPart(t *testing.T) {
	parts := fixtureParts()
	delete(parts, "ppt/presentation.xml")

	path := writeFixture(t, parts)
	if _, err := Open(path); err == nil {
		t.Error("Expected an error for a deck without presentation.xml")
	}
}

func TestOpenNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-deck.pptx")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Expected an error for a non-zip file")
	}
}
