package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/loadshare/brain/pkg/brain"
)

func sampleResult() brain.Result {
	return brain.Result{
		Log10: []brain.ProcessRecord{{
			ID:          "01TEST",
			ProcessName: "RTO Bagging",
			Platform:    "log10",
			StartTab:    "RTO",
			URLModule:   "rto",
			Steps:       []string{"RTO", "RTO Manifest"},
			VideoLink:   "https://videos/rto",
		}},
		External: []brain.ExternalRecord{{
			ID:          "01EXT",
			ProcessName: "Order Consumables",
			Platform:    "euphoria",
			VideoLink:   "https://videos/consumables",
			UseCase:     "training_only",
		}},
	}
}

func TestWriteMaps(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMaps(dir, sampleResult()); err != nil {
		t.Fatalf("WriteMaps failed: %v", err)
	}

	var log10 []map[string]interface{}
	readJSON(t, filepath.Join(dir, Log10File), &log10)
	if len(log10) != 1 {
		t.Fatalf("Expected 1 Log10 record, got %d", len(log10))
	}
	rec := log10[0]
	if rec["process_name"] != "RTO Bagging" || rec["start_tab"] != "RTO" {
		t.Errorf("Unexpected record: %v", rec)
	}
	if _, ok := rec["id"]; ok {
		t.Error("Internal id must not be serialized")
	}
	if _, ok := rec["needs_review"]; ok {
		t.Error("needs_review must be omitted when false")
	}

	var external []map[string]interface{}
	readJSON(t, filepath.Join(dir, ExternalFile), &external)
	if len(external) != 1 || external[0]["use_case"] != "training_only" {
		t.Errorf("Unexpected external records: %v", external)
	}

	var legacy []map[string]interface{}
	readJSON(t, filepath.Join(dir, LegacyFile), &legacy)
	if len(legacy) != 2 {
		t.Errorf("Legacy file should combine both sets, got %d records", len(legacy))
	}
}

func TestWriteMapsEmptyResult(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMaps(dir, brain.Result{}); err != nil {
		t.Fatalf("WriteMaps failed: %v", err)
	}

	var log10 []map[string]interface{}
	readJSON(t, filepath.Join(dir, Log10File), &log10)
	if len(log10) != 0 {
		t.Errorf("Expected an empty array, got %v", log10)
	}

	if _, err := os.Stat(filepath.Join(dir, ExternalFile)); !os.IsNotExist(err) {
		t.Error("External file must not exist when there are no external processes")
	}

	var legacy []map[string]interface{}
	readJSON(t, filepath.Join(dir, LegacyFile), &legacy)
	if len(legacy) != 0 {
		t.Errorf("Expected an empty legacy array, got %v", legacy)
	}
}

func TestWriteMapsNeedsReviewSerialized(t *testing.T) {
	dir := t.TempDir()
	result := brain.Result{
		Log10: []brain.ProcessRecord{{
			ProcessName: "Inbound Scan",
			Platform:    "log10",
			StartTab:    "Dashboard",
			Steps:       []string{},
			NeedsReview: true,
		}},
	}
	if err := WriteMaps(dir, result); err != nil {
		t.Fatal(err)
	}

	var log10 []map[string]interface{}
	readJSON(t, filepath.Join(dir, Log10File), &log10)
	if v, ok := log10[0]["needs_review"]; !ok || v != true {
		t.Errorf("needs_review missing or wrong: %v", log10[0])
	}
	if steps, ok := log10[0]["steps"].([]interface{}); !ok || len(steps) != 0 {
		t.Errorf("Empty steps must serialize as an empty array, got %v", log10[0]["steps"])
	}
}

func TestWriteMapsCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := WriteMaps(dir, brain.Result{}); err != nil {
		t.Fatalf("WriteMaps should create the output directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, Log10File)); err != nil {
		t.Errorf("Output file missing: %v", err)
	}
}

func readJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}
