// Package output writes the process map to the JSON files the browser
// extension consumes.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loadshare/brain/pkg/brain"
)

// File names inside the output directory.
const (
	Log10File    = "log10_processes.json"
	ExternalFile = "external_processes.json"
	LegacyFile   = "process_map.json"
)

// WriteMaps writes the Log10 and external process collections plus the
// combined legacy file. The external file is only written when there
// is something to put in it; the other two always exist after a run.
func WriteMaps(dir string, result brain.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	log10 := result.Log10
	if log10 == nil {
		log10 = []brain.ProcessRecord{}
	}
	if err := writeJSON(filepath.Join(dir, Log10File), log10); err != nil {
		return err
	}

	if len(result.External) > 0 {
		if err := writeJSON(filepath.Join(dir, ExternalFile), result.External); err != nil {
			return err
		}
	}

	// Legacy combined format, kept for older extension builds.
	legacy := make([]interface{}, 0, len(result.Log10)+len(result.External))
	for _, p := range result.Log10 {
		legacy = append(legacy, p)
	}
	for _, e := range result.External {
		legacy = append(legacy, e)
	}
	return writeJSON(filepath.Join(dir, LegacyFile), legacy)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
