package config

import (
	"fmt"

	"github.com/loadshare/brain/pkg/brain/platform"
	"github.com/loadshare/brain/pkg/brain/steps"
	"github.com/loadshare/brain/pkg/brain/tabmap"
)

// Loader loads configuration files and constructs pipeline components.
// Empty paths fall back to the compiled-in defaults, so a zero Loader
// is a valid way to build a default pipeline.
type Loader struct {
	ConfigPath string // combined YAML config (optional)
	TabMapPath string // overrides the config file's csv_path (optional)
}

// Components holds the constructed pipeline components.
type Components struct {
	Classifier *platform.Classifier
	Extractor  *steps.Extractor
	TabMap     *tabmap.Map
}

// Load reads configuration and returns initialized components.
func (l *Loader) Load() (*Components, error) {
	var file *File
	if l.ConfigPath != "" {
		loaded, err := LoadFile(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		file = loaded
	} else {
		file = &File{}
	}

	comp := &Components{}

	if file.Platforms != nil {
		externals := make([]platform.External, len(file.Platforms.Externals))
		for i, ext := range file.Platforms.Externals {
			externals[i] = platform.External{Name: ext.Name, Keywords: ext.Keywords}
		}
		comp.Classifier = platform.NewClassifier(file.Platforms.Target, externals)
	} else {
		comp.Classifier = platform.Default()
	}

	comp.Extractor = steps.NewExtractor()
	if file.Extraction.MinInstructionLen > 0 {
		comp.Extractor.MinInstructionLen = file.Extraction.MinInstructionLen
	}
	if file.Extraction.MaxNeighborTextLen > 0 {
		comp.Extractor.MaxNeighborTextLen = file.Extraction.MaxNeighborTextLen
	}
	if file.Extraction.MaxNeighborDistance > 0 {
		comp.Extractor.MaxNeighborDistance = file.Extraction.MaxNeighborDistance
	}

	csvPath := file.TabMap.CSVPath
	if l.TabMapPath != "" {
		csvPath = l.TabMapPath
	}

	var rows []tabmap.Row
	if csvPath != "" {
		loaded, err := tabmap.LoadCSV(csvPath)
		if err != nil {
			return nil, fmt.Errorf("load tab map: %w", err)
		}
		rows = loaded
	}
	comp.TabMap = tabmap.Build(rows, file.TabMap.Anchor)

	return comp, nil
}
