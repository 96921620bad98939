// Package brain turns slide-deck training material into a structured
// process map: it segments a deck into business processes, classifies
// each process by platform, and for Log10 processes extracts the
// ordered tab sequence and resolves the start tab to a URL module.
package brain

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/loadshare/brain/pkg/brain/deck"
	"github.com/loadshare/brain/pkg/brain/platform"
	"github.com/loadshare/brain/pkg/brain/segment"
	"github.com/loadshare/brain/pkg/brain/steps"
	"github.com/loadshare/brain/pkg/brain/tabmap"
)

// DefaultStartTab is the safe landing tab used when extraction cannot
// determine where a process starts.
const DefaultStartTab = "Dashboard"

// ProcessRecord is the final output unit for a Log10 process. Records
// are created once and never mutated.
type ProcessRecord struct {
	ID          string   `json:"-"`
	ProcessName string   `json:"process_name"`
	Platform    string   `json:"platform"`
	StartTab    string   `json:"start_tab"`
	URLModule   string   `json:"url_module,omitempty"`
	Steps       []string `json:"steps"`
	VideoLink   string   `json:"video_link"`
	NeedsReview bool     `json:"needs_review,omitempty"`
}

// ExternalRecord registers a non-Log10 process for reference. No step
// extraction is attempted for these.
type ExternalRecord struct {
	ID          string `json:"-"`
	ProcessName string `json:"process_name"`
	Platform    string `json:"platform"`
	VideoLink   string `json:"video_link"`
	UseCase     string `json:"use_case"`
}

// Result collects the two output sets for one document.
type Result struct {
	Log10    []ProcessRecord
	External []ExternalRecord
}

// Options configures a Brain instance. Nil fields get defaults.
type Options struct {
	Classifier *platform.Classifier
	Extractor  *steps.Extractor
	TabMap     *tabmap.Map
	Logger     *zap.Logger
}

// Brain is the pipeline orchestrator facade.
type Brain struct {
	classifier *platform.Classifier
	extractor  *steps.Extractor
	tabs       *tabmap.Map
	logger     *zap.Logger
	entropy    *ulid.MonotonicEntropy
}

// New creates a Brain with the given components.
func New(opts Options) *Brain {
	b := &Brain{
		classifier: opts.Classifier,
		extractor:  opts.Extractor,
		tabs:       opts.TabMap,
		logger:     opts.Logger,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	if b.classifier == nil {
		b.classifier = platform.Default()
	}
	if b.extractor == nil {
		b.extractor = steps.NewExtractor()
	}
	if b.tabs == nil {
		b.tabs = tabmap.Build(nil, "")
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// BuildProcessMap runs the full pipeline over one document. Every
// segment produces exactly one output record: Log10 segments whose
// extraction is inconclusive still get a flagged Dashboard fallback
// rather than being dropped.
func (b *Brain) BuildProcessMap(doc *deck.Document, videoLink string) Result {
	var result Result

	segments := segment.Split(doc)
	if len(segments) == 0 {
		b.logger.Warn("no processes detected in deck")
		return result
	}

	for _, seg := range segments {
		label := b.classifier.Classify(seg, doc)
		name := steps.CleanProcessName(seg.Name)

		b.logger.Info("analyzing process",
			zap.String("process", name),
			zap.String("platform", label))

		if label == platform.Log10 {
			rec := b.extractLog10(seg, doc, name, videoLink)
			result.Log10 = append(result.Log10, rec)
			continue
		}

		if label == platform.Unknown {
			label = "external"
		}
		result.External = append(result.External, ExternalRecord{
			ID:          b.newID(),
			ProcessName: name,
			Platform:    label,
			VideoLink:   videoLink,
			UseCase:     "training_only",
		})
	}

	return result
}

// extractLog10 builds the record for one Log10 segment. A panic from
// malformed shape data is confined here: the segment still yields a
// flagged fallback record and the run continues.
func (b *Brain) extractLog10(seg segment.Segment, doc *deck.Document, name, videoLink string) (rec ProcessRecord) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("step extraction failed",
				zap.String("process", name),
				zap.Any("panic", r))
			rec = b.fallback(name, videoLink)
		}
	}()

	startTab, stepSeq := b.extractor.Extract(seg.Slides, doc)
	if startTab == "" {
		b.logger.Warn("could not extract start tab",
			zap.String("process", name))
		return b.fallback(name, videoLink)
	}

	module, resolved := b.tabs.Resolve(startTab)
	if !resolved {
		b.logger.Warn("could not resolve url module",
			zap.String("process", name),
			zap.String("start_tab", startTab))
	}

	return ProcessRecord{
		ID:          b.newID(),
		ProcessName: name,
		Platform:    platform.Log10,
		StartTab:    startTab,
		URLModule:   module,
		Steps:       stepSeq,
		VideoLink:   videoLink,
		NeedsReview: !resolved,
	}
}

// fallback is the record used when no start tab could be extracted.
func (b *Brain) fallback(name, videoLink string) ProcessRecord {
	module, _ := b.tabs.Resolve(DefaultStartTab)
	return ProcessRecord{
		ID:          b.newID(),
		ProcessName: name,
		Platform:    platform.Log10,
		StartTab:    DefaultStartTab,
		URLModule:   module,
		Steps:       []string{},
		VideoLink:   videoLink,
		NeedsReview: true,
	}
}

func (b *Brain) newID() string {
	return ulid.MustNew(ulid.Now(), b.entropy).String()
}
