package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/loadshare/brain/pkg/brain/internalerr"
)

// Platforms is the keyword-table configuration for the platform
// classifier. Externals is a sequence, not a mapping: declaration
// order is the tie-break between equally scoring platforms.
type Platforms struct {
	Target    []string   `yaml:"target"`
	Externals []External `yaml:"externals"`
}

// External is one named external platform with its keyword set.
type External struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Extraction holds step-extractor thresholds. Zero fields fall back to
// the compiled-in defaults when the extractor is built.
type Extraction struct {
	MinInstructionLen   int   `yaml:"min_instruction_len"`
	MaxNeighborTextLen  int   `yaml:"max_neighbor_text_len"`
	MaxNeighborDistance int64 `yaml:"max_neighbor_distance"`
}

// TabMap points at the (tab, url) reference table and names the URL
// anchor segment that precedes the module segment.
type TabMap struct {
	CSVPath string `yaml:"csv_path"`
	Anchor  string `yaml:"anchor"`
}

// File is the top-level brain configuration file.
type File struct {
	Platforms  *Platforms `yaml:"platforms"`
	Extraction Extraction `yaml:"extraction"`
	TabMap     TabMap     `yaml:"tab_map"`
}

// LoadFile loads the combined configuration from a YAML file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &f, nil
}
