package tabmap

import (
	"os"
	"path/filepath"
	"testing"
)

func referenceRows() []Row {
	return []Row{
		{Tab: "RTO", URL: "https://log10-atlas.loadshare.net/appv2/rto/dashboard/waybill"},
		{Tab: "SC-Ops Dashboard", URL: "https://log10-atlas.loadshare.net/appv2/sc-ops/home"},
		{Tab: "Tracking", URL: "https://log10-atlas.loadshare.net/appv2/tracking"},
	}
}

func TestBuild(t *testing.T) {
	m := Build(referenceRows(), "")
	if m.Len() != 3 {
		t.Fatalf("Expected 3 mappings, got %d", m.Len())
	}

	module, ok := m.Resolve("rto")
	if !ok || module != "rto" {
		t.Errorf("Resolve(rto) = %q, %v", module, ok)
	}
}

func TestBuildDropsRowsWithoutAnchor(t *testing.T) {
	rows := []Row{
		{Tab: "Somewhere", URL: "https://example.com/no/anchor/here"},
		{Tab: "Trips", URL: "https://log10-atlas.loadshare.net/appv2/trips"},
		{Tab: "Dangling", URL: "https://log10-atlas.loadshare.net/appv2"},
	}

	m := Build(rows, "")
	if m.Len() != 1 {
		t.Errorf("Expected 1 mapping, got %d", m.Len())
	}
	if _, ok := m.Resolve("Somewhere"); ok {
		t.Error("Row without anchor should have been dropped")
	}
}

func TestBuildDuplicateTabOverwrites(t *testing.T) {
	rows := []Row{
		{Tab: "Trips", URL: "https://log10-atlas.loadshare.net/appv2/old"},
		{Tab: "trips ", URL: "https://log10-atlas.loadshare.net/appv2/new"},
	}

	m := Build(rows, "")
	if m.Len() != 1 {
		t.Fatalf("Expected 1 mapping after overwrite, got %d", m.Len())
	}
	if module, _ := m.Resolve("Trips"); module != "new" {
		t.Errorf("Later row should overwrite earlier, got %q", module)
	}
}

func TestBuildCustomAnchor(t *testing.T) {
	rows := []Row{
		{Tab: "RTO", URL: "https://log10-atlas.loadshare.net/operations/rto/dashboard"},
	}

	m := Build(rows, "operations")
	if module, ok := m.Resolve("RTO"); !ok || module != "rto" {
		t.Errorf("Resolve with custom anchor = %q, %v", module, ok)
	}
}

func TestBuildIgnoresQueryString(t *testing.T) {
	rows := []Row{
		{Tab: "Trips", URL: "https://log10-atlas.loadshare.net/appv2/trips?view=list"},
	}

	m := Build(rows, "")
	if module, _ := m.Resolve("Trips"); module != "trips" {
		t.Errorf("Query string must not leak into the module, got %q", module)
	}
}

func TestResolveExactBeatsSubstring(t *testing.T) {
	m := Build([]Row{
		{Tab: "rto", URL: "https://x/appv2/rto"},
		{Tab: "sc-ops dashboard", URL: "https://x/appv2/sc-ops"},
	}, "")

	// "rto" is also a substring of nothing else here, but the point is
	// the exact key must win before any fuzzy tier runs.
	if module, _ := m.Resolve("RTO"); module != "rto" {
		t.Errorf("Exact match must win, got %q", module)
	}
}

func TestResolveNeedleInsideKey(t *testing.T) {
	m := Build([]Row{
		{Tab: "sc-ops dashboard", URL: "https://x/appv2/sc-ops"},
	}, "")

	if module, ok := m.Resolve("Dashboard"); !ok || module != "sc-ops" {
		t.Errorf("Resolve(Dashboard) = %q, %v; want sc-ops", module, ok)
	}
}

func TestResolveNeedleInsideKeyLongestWins(t *testing.T) {
	m := Build([]Row{
		{Tab: "ops view", URL: "https://x/appv2/short"},
		{Tab: "sc-ops view extended", URL: "https://x/appv2/long"},
	}, "")

	if module, _ := m.Resolve("ops view"); module != "short" {
		t.Errorf("Exact match should have fired first, got %q", module)
	}
	if module, _ := m.Resolve("ops vie"); module != "long" {
		t.Errorf("Longest containing key must win, got %q", module)
	}
}

func TestResolveKeyInsideNeedle(t *testing.T) {
	m := Build([]Row{
		{Tab: "rto", URL: "https://x/appv2/rto"},
	}, "")

	if module, ok := m.Resolve("Go straight to the RTO section"); !ok || module != "rto" {
		t.Errorf("Key-inside-needle fallback failed: %q, %v", module, ok)
	}
}

func TestResolveNoMatch(t *testing.T) {
	m := Build(referenceRows(), "")
	if module, ok := m.Resolve("Completely Unrelated"); ok {
		t.Errorf("Expected no match, got %q", module)
	}
	if _, ok := m.Resolve(""); ok {
		t.Error("Empty label must not resolve")
	}
}

func TestRoundTrip(t *testing.T) {
	rows := referenceRows()
	m := Build(rows, "")

	want := map[string]string{
		"RTO":              "rto",
		"SC-Ops Dashboard": "sc-ops",
		"Tracking":         "tracking",
	}
	for tab, module := range want {
		got, ok := m.Resolve(tab)
		if !ok || got != module {
			t.Errorf("Resolve(%q) = %q, %v; want %q", tab, got, ok, module)
		}
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	rows, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil {
		t.Fatalf("Missing file must not be an error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.csv")
	content := "tab,url\nRTO,https://log10-atlas.loadshare.net/appv2/rto/dashboard\nTrips,https://log10-atlas.loadshare.net/appv2/trips\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Tab != "RTO" {
		t.Errorf("First tab = %q", rows[0].Tab)
	}

	m := Build(rows, "")
	if module, _ := m.Resolve("trips"); module != "trips" {
		t.Errorf("Resolve(trips) = %q", module)
	}
}

func TestLoadCSVColumnOrderFree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.csv")
	content := "url,tab\nhttps://log10-atlas.loadshare.net/appv2/hub,Hub\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	m := Build(rows, "")
	if module, _ := m.Resolve("Hub"); module != "hub" {
		t.Errorf("Resolve(Hub) = %q", module)
	}
}
