// Package platform classifies a process segment by the software
// platform its slides demonstrate. Classification is a pure function
// over an immutable keyword table: count distinct keyword hits for the
// target platform and for each known external platform, then apply a
// fixed threshold rule.
package platform

import (
	"strings"

	"github.com/loadshare/brain/pkg/brain/deck"
	"github.com/loadshare/brain/pkg/brain/segment"
)

// Well-known labels.
const (
	Log10   = "log10"
	Unknown = "unknown"
)

// DefaultTargetKeywords are the Log10 platform indicators. Matching is
// case-insensitive substring containment over the segment corpus.
var DefaultTargetKeywords = []string{
	"log10", "log 10", "log-10",
	"trips", "manifest", "bagging", "rto",
	"shipment", "awb", "hub",
	"inbound", "outbound", "inventory",
	"forward", "reverse", "pickup", "delivery",
	"scan", "barcode", "courier",
	"loadshare",
}

// External declares one competing platform and its indicator keywords.
type External struct {
	Name     string
	Keywords []string
}

// DefaultExternals lists the known non-Log10 platforms. Order matters:
// when two externals score the same, the one declared first wins.
var DefaultExternals = []External{
	{Name: "euphoria", Keywords: []string{"euphoria", "order consumables", "buy now", "add to cart", "valmo"}},
	{Name: "ticketing", Keywords: []string{"ticket", "kapture", "support portal", "raise ticket"}},
	{Name: "email", Keywords: []string{"outlook", "gmail", "email", "pre-alert", "mail"}},
	{Name: "excel", Keywords: []string{"excel", "spreadsheet", "csv", "worksheet"}},
}

// Classifier scores segment text against its keyword table.
type Classifier struct {
	target    []string
	externals []External
}

// NewClassifier builds a classifier over the given keyword table.
// Keywords are normalized to lowercase once, up front.
func NewClassifier(target []string, externals []External) *Classifier {
	c := &Classifier{
		target:    lowerAll(target),
		externals: make([]External, len(externals)),
	}
	for i, ext := range externals {
		c.externals[i] = External{
			Name:     ext.Name,
			Keywords: lowerAll(ext.Keywords),
		}
	}
	return c
}

// Default returns a classifier over the compiled-in keyword table.
func Default() *Classifier {
	return NewClassifier(DefaultTargetKeywords, DefaultExternals)
}

// Classify returns the platform label for one segment. Decision order:
//
//  1. two or more target keywords           → Log10
//  2. two or more keywords of one external  → that external
//  3. one target keyword                    → Log10
//  4. otherwise                             → Unknown
//
// The weak-signal fallback in step 3 deliberately biases ambiguous
// segments toward Log10: missing a Log10 process costs more than
// extracting steps from a misclassified one.
func (c *Classifier) Classify(seg segment.Segment, doc *deck.Document) string {
	corpus := CorpusText(seg, doc)

	targetScore := countHits(corpus, c.target)

	externalScore := 0
	externalName := ""
	for _, ext := range c.externals {
		if score := countHits(corpus, ext.Keywords); score > externalScore {
			externalScore = score
			externalName = ext.Name
		}
	}

	switch {
	case targetScore >= 2:
		return Log10
	case externalScore >= 2:
		return externalName
	case targetScore >= 1:
		return Log10
	default:
		return Unknown
	}
}

// CorpusText assembles the lowercase text corpus for a segment: the
// segment name plus the text of every shape on every slide in the
// segment. Slide indices outside the deck are skipped silently.
func CorpusText(seg segment.Segment, doc *deck.Document) string {
	parts := []string{seg.Name}

	for _, idx := range seg.Slides {
		if idx < 0 || idx >= len(doc.Slides) {
			continue
		}
		for _, shape := range doc.Slides[idx].Shapes {
			if shape.Text != "" {
				parts = append(parts, shape.Text)
			}
		}
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// countHits counts how many distinct keywords occur in the corpus.
func countHits(corpus string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(corpus, kw) {
			hits++
		}
	}
	return hits
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
