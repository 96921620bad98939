// Package steps extracts the ordered tab sequence a Log10 process
// visits. Two independent detectors run over every slide of a segment:
// the instruction-text detector parses numbered tab references out of
// long instruction sentences, and the red-outline detector falls back
// to the label nearest each red callout box. A non-empty instruction
// sequence is authoritative; the red-outline list is only used when no
// instruction text parsed anywhere in the segment.
package steps

import (
	"regexp"
	"strings"

	"github.com/loadshare/brain/pkg/brain/deck"
)

// instructionMarkers qualify a long text shape as instruction text.
var instructionMarkers = []string{"go to", "click on", "click", "then", "select"}

// tabRefPattern matches "Label(2)" style tab references: a run of
// letters and spaces immediately followed by a parenthesized integer.
var tabRefPattern = regexp.MustCompile(`([A-Za-z][A-Za-z\s]+)\(\d+\)`)

// Extractor holds the detection thresholds. The zero value is not
// usable; construct with NewExtractor.
type Extractor struct {
	// MinInstructionLen is the minimum text length for a shape to be
	// considered instruction text.
	MinInstructionLen int
	// MaxNeighborTextLen excludes long paragraphs from being picked as
	// the label of a red callout box.
	MaxNeighborTextLen int
	// MaxNeighborDistance is the Manhattan-distance ceiling, in EMU,
	// between a red box and its label.
	MaxNeighborDistance int64
	// RedMin, GreenMax and BlueMax define the red-outline threshold.
	RedMin   uint8
	GreenMax uint8
	BlueMax  uint8
}

// NewExtractor returns an extractor with the calibrated defaults.
func NewExtractor() *Extractor {
	return &Extractor{
		MinInstructionLen:   50,
		MaxNeighborTextLen:  100,
		MaxNeighborDistance: 2_000_000,
		RedMin:              150,
		GreenMax:            100,
		BlueMax:             100,
	}
}

// Extract derives the start tab and step sequence for one segment.
// Returns ("", nil) when neither detector produced anything; the
// orchestrator applies the Dashboard default in that case.
func (e *Extractor) Extract(slides []int, doc *deck.Document) (startTab string, steps []string) {
	var instruction []string
	var outlined []string

	for _, idx := range slides {
		if idx < 0 || idx >= len(doc.Slides) {
			continue
		}
		slide := doc.Slides[idx]

		if text := e.instructionText(slide); text != "" {
			for _, step := range parseInstructionSequence(text) {
				instruction = appendUnique(instruction, step)
			}
		}

		for i, shape := range slide.Shapes {
			if !e.isRedOutlined(shape) {
				continue
			}
			if label := e.nearestText(slide, i); label != "" {
				if cleaned := CleanTabName(label); cleaned != "" {
					outlined = appendUnique(outlined, cleaned)
				}
			}
		}
	}

	if len(instruction) > 0 {
		return instruction[0], instruction
	}
	if len(outlined) > 0 {
		return outlined[0], outlined
	}
	return "", nil
}

// instructionText returns the first shape text on the slide that is
// long enough and contains an instruction marker. Later shapes on the
// same slide are not consulted.
func (e *Extractor) instructionText(slide deck.Slide) string {
	for _, shape := range slide.Shapes {
		text := strings.TrimSpace(shape.Text)
		if len(text) <= e.MinInstructionLen {
			continue
		}
		lower := strings.ToLower(text)
		for _, marker := range instructionMarkers {
			if strings.Contains(lower, marker) {
				return text
			}
		}
	}
	return ""
}

// parseInstructionSequence pulls the ordered tab labels out of an
// instruction sentence like "Go to RTO(1). Click on RTO Manifest(2)".
func parseInstructionSequence(text string) []string {
	var seq []string
	for _, m := range tabRefPattern.FindAllStringSubmatch(text, -1) {
		if cleaned := CleanTabName(m[1]); cleaned != "" {
			seq = appendUnique(seq, cleaned)
		}
	}
	return seq
}

// isRedOutlined applies the red-callout color threshold.
func (e *Extractor) isRedOutlined(shape deck.Shape) bool {
	c := shape.Outline
	if c == nil {
		return false
	}
	return c.R >= e.RedMin && c.G < e.GreenMax && c.B < e.BlueMax
}

// nearestText finds the text of the shape closest to slide.Shapes[ref]
// by Manhattan distance between top-left corners. Shapes without text,
// with text longer than MaxNeighborTextLen, or farther away than
// MaxNeighborDistance are skipped.
func (e *Extractor) nearestText(slide deck.Slide, ref int) string {
	refBox := slide.Shapes[ref].Box

	best := ""
	minDist := e.MaxNeighborDistance

	for i, shape := range slide.Shapes {
		if i == ref {
			continue
		}
		text := strings.TrimSpace(shape.Text)
		if text == "" || len(text) > e.MaxNeighborTextLen {
			continue
		}

		dist := abs64(shape.Box.Left-refBox.Left) + abs64(shape.Box.Top-refBox.Top)
		if dist < minDist {
			minDist = dist
			best = text
		}
	}

	return best
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
