// Package segment partitions a deck into contiguous process segments.
// Divider slides open a new segment; every other titled or untitled
// slide is folded into the segment that is currently open.
package segment

import (
	"strings"

	"github.com/loadshare/brain/pkg/brain/deck"
)

// Layout names that mark a slide as a divider.
var dividerKeywords = []string{"title", "divider", "section"}

// Title fragments that mark a divider-layout slide as a closing slide.
// Closing slides never open a segment, otherwise every deck would end
// with a spurious empty "Thank You" process.
var closingKeywords = []string{"thank", "questions", "q&a", "end", "conclusion"}

// Segment is one contiguous run of slides representing a single
// end-to-end business process. Slides holds the indices of the content
// slides that follow StartSlide; it never contains the start slide of
// another segment.
type Segment struct {
	Name       string
	StartSlide int
	Slides     []int
}

// IsDivider reports whether a slide opens a new process segment.
// The layout name decides; the title text vetoes closing slides.
func IsDivider(s deck.Slide) bool {
	layout := strings.ToLower(s.LayoutName)

	divider := false
	for _, kw := range dividerKeywords {
		if strings.Contains(layout, kw) {
			divider = true
			break
		}
	}
	if !divider {
		return false
	}

	if s.HasTitle {
		title := strings.ToLower(s.Title)
		for _, kw := range closingKeywords {
			if strings.Contains(title, kw) {
				return false
			}
		}
	}

	return true
}

// Split walks the deck in slide order and returns the detected
// segments, each internally in slide order. A deck with no divider
// slides yields no segments; callers treat that as "no processes
// found", not as an error.
func Split(doc *deck.Document) []Segment {
	var segments []Segment
	var current *Segment

	for idx, slide := range doc.Slides {
		// Untitled slides belong to the open segment, or to nothing.
		if !slide.HasTitle {
			if current != nil {
				current.Slides = append(current.Slides, idx)
			}
			continue
		}

		if IsDivider(slide) {
			if current != nil {
				segments = append(segments, *current)
			}
			current = &Segment{
				Name:       strings.TrimSpace(slide.Title),
				StartSlide: idx,
			}
			continue
		}

		// A titled content slide is not a division point.
		if current != nil {
			current.Slides = append(current.Slides, idx)
		}
	}

	if current != nil {
		segments = append(segments, *current)
	}

	return segments
}
