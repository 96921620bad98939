// Package deck defines the slide-deck document model consumed by the
// process-map pipeline. Parsing a concrete file format into this model
// is the job of an adapter (see the pptx subpackage); every stage of
// the pipeline operates on these plain values only.
package deck

// RGB is a shape outline color.
type RGB struct {
	R, G, B uint8
}

// Box is a shape's top-left corner offset in EMU (English Metric Units,
// the native PowerPoint coordinate unit).
type Box struct {
	Left int64
	Top  int64
}

// Shape is a single drawable element on a slide.
type Shape struct {
	Text      string // empty when the shape carries no text frame
	Outline   *RGB   // nil when no explicit outline color is set
	Box       Box
	IsPicture bool
}

// Slide is one slide in presentation order.
type Slide struct {
	LayoutName string
	Title      string
	HasTitle   bool // distinguishes a missing title placeholder from an empty one
	Shapes     []Shape
}

// Document is an ordered sequence of slides.
type Document struct {
	Slides []Slide
}

// SlideCount returns the number of slides in the document.
func (d *Document) SlideCount() int {
	return len(d.Slides)
}

// Opener materializes a Document from a file on disk.
type Opener interface {
	Open(path string) (*Document, error)
}

// OpenerFunc adapts a plain function to the Opener interface.
type OpenerFunc func(path string) (*Document, error)

// Open calls f.
func (f OpenerFunc) Open(path string) (*Document, error) {
	return f(path)
}
