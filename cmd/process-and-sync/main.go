// Command process-and-sync runs the full remote pipeline: it reads
// training-material rows from the published input worksheet, downloads
// each deck from Drive, extracts the process map, and writes the
// results back to the output worksheet and the local JSON files.
//
// Configuration comes from the environment (a .env file is honored):
//
//	SHEET_ID                     spreadsheet to write results into
//	SHEET_INPUT_CSV_URL          published CSV URL of the input worksheet
//	GOOGLE_SERVICE_ACCOUNT_JSON  service-account credentials (JSON body)
//
// A fetch failure or an empty input sheet aborts the run before any
// output is produced. A failure on a single row is logged and recorded;
// the run continues and exits non-zero at the end.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/loadshare/brain/internal/drive"
	"github.com/loadshare/brain/internal/output"
	"github.com/loadshare/brain/internal/sheets"
	"github.com/loadshare/brain/pkg/brain"
	"github.com/loadshare/brain/pkg/brain/config"
	"github.com/loadshare/brain/pkg/brain/deck"
	"github.com/loadshare/brain/pkg/brain/deck/pptx"
	"github.com/loadshare/brain/pkg/brain/store"
	"github.com/loadshare/brain/pkg/brain/store/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "Brain YAML config (optional)")
		tabMapPath = flag.String("tabmap", "data/log10_tab_url_map.csv", "Tab→URL reference CSV")
		outDir     = flag.String("out", "data/output", "JSON output directory")
		dbPath     = flag.String("db", "", "SQLite store path (optional)")
		worksheet  = flag.String("worksheet", "Training_Videos", "Output worksheet name")
		skipSheets = flag.Bool("skip-sheets", false, "Skip the Sheets write-back")
	)
	flag.Parse()

	// .env is a local convenience; in CI the variables are injected.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	inputURL := os.Getenv("SHEET_INPUT_CSV_URL")
	if inputURL == "" {
		logger.Fatal("SHEET_INPUT_CSV_URL not set")
	}

	ctx := context.Background()

	loader := config.Loader{ConfigPath: *configPath, TabMapPath: *tabMapPath}
	components, err := loader.Load()
	if err != nil {
		logger.Fatal("load configuration", zap.Error(err))
	}
	logger.Info("tab map loaded", zap.Int("mappings", components.TabMap.Len()))

	b := brain.New(brain.Options{
		Classifier: components.Classifier,
		Extractor:  components.Extractor,
		TabMap:     components.TabMap,
		Logger:     logger,
	})

	rows, err := sheets.FetchRows(ctx, http.DefaultClient, inputURL)
	if err != nil {
		logger.Fatal("fetch input rows", zap.Error(err))
	}
	logger.Info("input rows fetched", zap.Int("rows", len(rows)))

	downloader := drive.NewDownloader(nil)
	opener := pptx.Opener()

	var result brain.Result
	rowErrors := 0

	for i, row := range rows {
		rowNum := i + 1

		if row.PPTLink == "" {
			logger.Warn("skipping row without deck link", zap.Int("row", rowNum))
			continue
		}

		name := row.ProcessName
		if name == "" {
			name = fmt.Sprintf("Process_%d", rowNum)
		}
		logger.Info("processing row", zap.Int("row", rowNum), zap.String("process", name))

		docResult, err := processRow(ctx, logger, downloader, opener, b, row)
		if err != nil {
			logger.Error("row failed", zap.Int("row", rowNum),
				zap.String("process", name), zap.Error(err))
			rowErrors++
			continue
		}

		result.Log10 = append(result.Log10, docResult.Log10...)
		result.External = append(result.External, docResult.External...)
	}

	if err := output.WriteMaps(*outDir, result); err != nil {
		logger.Fatal("write output", zap.Error(err))
	}

	if *dbPath != "" {
		if err := persist(ctx, *dbPath, result); err != nil {
			logger.Fatal("persist results", zap.Error(err))
		}
	}

	if !*skipSheets {
		if err := writeBack(ctx, *worksheet, result.Log10); err != nil {
			logger.Fatal("write back to sheet", zap.Error(err))
		}
	}

	logger.Info("run complete",
		zap.Int("log10_processes", len(result.Log10)),
		zap.Int("external_processes", len(result.External)),
		zap.Int("row_errors", rowErrors))

	if rowErrors > 0 {
		os.Exit(1)
	}
}

// processRow downloads one deck to a temporary file, runs the pipeline
// over it, and removes the file on every exit path.
func processRow(ctx context.Context, logger *zap.Logger, downloader *drive.Downloader,
	opener deck.Opener, b *brain.Brain, row sheets.InputRow) (brain.Result, error) {

	tmp, err := os.CreateTemp("", "deck-*.pptx")
	if err != nil {
		return brain.Result{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	defer func() {
		// Cleanup failure is logged, never escalated.
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("remove temp file", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	if err := downloader.Download(ctx, row.PPTLink, tmpPath); err != nil {
		return brain.Result{}, fmt.Errorf("download deck: %w", err)
	}

	doc, err := opener.Open(tmpPath)
	if err != nil {
		return brain.Result{}, fmt.Errorf("open deck: %w", err)
	}

	return b.BuildProcessMap(doc, row.VideoLink), nil
}

// persist upserts the run's records into the SQLite store.
func persist(ctx context.Context, dbPath string, result brain.Result) error {
	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, p := range result.Log10 {
		if err := st.UpsertProcess(ctx, store.Process{
			ID:          p.ID,
			ProcessName: p.ProcessName,
			Platform:    p.Platform,
			StartTab:    p.StartTab,
			URLModule:   p.URLModule,
			Steps:       p.Steps,
			VideoLink:   p.VideoLink,
			NeedsReview: p.NeedsReview,
		}); err != nil {
			return err
		}
	}
	for _, e := range result.External {
		if err := st.UpsertExternal(ctx, store.External{
			ID:          e.ID,
			ProcessName: e.ProcessName,
			Platform:    e.Platform,
			VideoLink:   e.VideoLink,
			UseCase:     e.UseCase,
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeBack pushes the Log10 records into the output worksheet.
func writeBack(ctx context.Context, worksheet string, procs []brain.ProcessRecord) error {
	sheetID := os.Getenv("SHEET_ID")
	creds := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	if sheetID == "" || creds == "" {
		return fmt.Errorf("SHEET_ID and GOOGLE_SERVICE_ACCOUNT_JSON must be set (or pass -skip-sheets)")
	}

	writer, err := sheets.NewWriter(ctx, []byte(creds), sheetID)
	if err != nil {
		return err
	}
	return writer.WriteProcesses(ctx, worksheet, procs)
}
