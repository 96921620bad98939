// Package tabmap resolves free-text tab labels to canonical Log10 URL
// modules. The map is built once per run from a (tab, url) reference
// table and is read-only afterwards, so it is safe to share across
// documents without synchronization.
package tabmap

import (
	"encoding/csv"
	"io"
	"os"
	"strings"
)

// DefaultAnchor is the URL path segment that precedes the module
// segment in Log10 URLs, e.g.
//
//	https://log10-atlas.loadshare.net/appv2/rto/dashboard/waybill
//	                                  ^^^^^ ^^^
//	                                  anchor module
const DefaultAnchor = "appv2"

// Row is one reference-table entry.
type Row struct {
	Tab string
	URL string
}

// Map is the tab→module lookup. Keys are lowercase and trimmed, and
// iteration order is insertion order so that equal-length substring
// candidates resolve deterministically.
type Map struct {
	keys    []string
	modules map[string]string
}

// Build derives a Map from reference rows. Rows whose URL does not
// contain the anchor segment are dropped; a later row with a duplicate
// tab overwrites the earlier module but keeps the original position.
func Build(rows []Row, anchor string) *Map {
	if anchor == "" {
		anchor = DefaultAnchor
	}

	m := &Map{modules: make(map[string]string, len(rows))}
	for _, row := range rows {
		tab := strings.ToLower(strings.TrimSpace(row.Tab))
		module, ok := moduleFromURL(strings.TrimSpace(row.URL), anchor)
		if tab == "" || !ok {
			continue
		}
		if _, seen := m.modules[tab]; !seen {
			m.keys = append(m.keys, tab)
		}
		m.modules[tab] = module
	}
	return m
}

// Len returns the number of mappings.
func (m *Map) Len() int {
	return len(m.keys)
}

// Resolve maps a free-text label to its URL module. Match order:
//
//  1. exact match on the lowercased, trimmed label
//  2. label is a substring of a map key (longest key wins)
//  3. a map key is a substring of the label (longest key wins)
//
// Exact match is the reliable case; needle-in-key catches abbreviated
// labels inside fuller dashboard names; key-in-needle is the last
// resort for verbose labels that embed a known short key.
func (m *Map) Resolve(label string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(label))
	if needle == "" {
		return "", false
	}

	if module, ok := m.modules[needle]; ok {
		return module, true
	}

	if key := m.longestMatch(func(k string) bool { return strings.Contains(k, needle) }); key != "" {
		return m.modules[key], true
	}

	if key := m.longestMatch(func(k string) bool { return strings.Contains(needle, k) }); key != "" {
		return m.modules[key], true
	}

	return "", false
}

// longestMatch returns the longest key satisfying the predicate.
// Ties keep the earlier-inserted key.
func (m *Map) longestMatch(pred func(string) bool) string {
	best := ""
	for _, key := range m.keys {
		if pred(key) && len(key) > len(best) {
			best = key
		}
	}
	return best
}

// moduleFromURL pulls the path segment immediately after the anchor.
func moduleFromURL(url, anchor string) (string, bool) {
	path := url
	if q := strings.IndexByte(path, '?'); q >= 0 {
		path = path[:q]
	}

	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	for i, p := range parts {
		if p == anchor && i+1 < len(parts) {
			return parts[i+1], true
		}
	}
	return "", false
}

// LoadCSV reads (tab, url) rows from a two-column CSV file with a
// header row. A missing file yields no rows and no error: the pipeline
// degrades to unresolved modules instead of failing the run.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return readRows(f)
}

// readRows parses header-mapped CSV rows. Column order is free as long
// as "tab" and "url" headers are present.
func readRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tabCol, urlCol := -1, -1
	for i, name := range header {
		// Sheets exports prepend a UTF-8 BOM to the first header cell.
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "tab":
			tabCol = i
		case "url":
			urlCol = i
		}
	}
	if tabCol < 0 || urlCol < 0 {
		return nil, nil
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if tabCol >= len(record) || urlCol >= len(record) {
			continue
		}
		rows = append(rows, Row{Tab: record[tabCol], URL: record[urlCol]})
	}
	return rows, nil
}
