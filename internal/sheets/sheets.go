// Package sheets is the remote row source and write-back sink. Input
// rows come from a published-CSV spreadsheet URL; results go back into
// a named worksheet through the Sheets API.
package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/loadshare/brain/pkg/brain"
	"github.com/loadshare/brain/pkg/brain/internalerr"
)

// InputRow is one training-material entry from the input worksheet.
type InputRow struct {
	ProcessName string
	PPTLink     string
	VideoLink   string
}

// FetchRows downloads and parses the published-CSV input worksheet.
// Columns are matched by header name, so column order in the sheet is
// free. A nil client uses http.DefaultClient. An empty worksheet is
// reported as internalerr.ErrNoRows.
func FetchRows(ctx context.Context, client *http.Client, csvURL string) ([]InputRow, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch input rows: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch input rows: unexpected status %s", resp.Status)
	}

	rows, err := parseRows(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internalerr.ErrNoRows
	}
	return rows, nil
}

// parseRows maps header-named CSV columns onto InputRow fields.
func parseRows(r io.Reader) ([]InputRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[key] = i
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []InputRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, InputRow{
			ProcessName: field(record, "process_name"),
			PPTLink:     field(record, "ppt_link"),
			VideoLink:   field(record, "video_link"),
		})
	}
	return rows, nil
}

// resultHeader is the fixed output column order.
var resultHeader = []interface{}{
	"Process_Name", "URL_Module", "Start_Tab", "Video_Link", "Platform", "Active",
}

// Writer upserts extraction results into a worksheet.
type Writer struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewWriter builds a Writer authenticated with service-account JSON.
func NewWriter(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*Writer, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &Writer{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// WriteProcesses clears the worksheet and rewrites it completely with
// the fixed header plus one row per process. Rewriting from scratch
// keeps the operation idempotent across runs.
func (w *Writer) WriteProcesses(ctx context.Context, worksheet string, procs []brain.ProcessRecord) error {
	if err := w.ensureWorksheet(ctx, worksheet); err != nil {
		return err
	}

	values := [][]interface{}{resultHeader}
	for _, p := range procs {
		values = append(values, []interface{}{
			p.ProcessName,
			p.URLModule,
			p.StartTab,
			p.VideoLink,
			p.Platform,
			"TRUE",
		})
	}

	if _, err := w.svc.Spreadsheets.Values.
		Clear(w.spreadsheetID, worksheet, &gsheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear worksheet %q: %w", worksheet, err)
	}

	vr := &gsheets.ValueRange{Values: values}
	if _, err := w.svc.Spreadsheets.Values.
		Update(w.spreadsheetID, worksheet+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("update worksheet %q: %w", worksheet, err)
	}

	return nil
}

// ensureWorksheet adds the worksheet when it does not exist yet.
func (w *Writer) ensureWorksheet(ctx context.Context, worksheet string) error {
	meta, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == worksheet {
			return nil
		}
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: worksheet},
			},
		}},
	}
	if _, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add worksheet %q: %w", worksheet, err)
	}
	return nil
}
