// Command build-map runs the extraction pipeline over a local
// directory of .pptx files and writes the process-map JSON files.
// Useful for testing decks before they are published to the sheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/loadshare/brain/internal/output"
	"github.com/loadshare/brain/pkg/brain"
	"github.com/loadshare/brain/pkg/brain/config"
	"github.com/loadshare/brain/pkg/brain/deck/pptx"
	"github.com/loadshare/brain/pkg/brain/store"
	"github.com/loadshare/brain/pkg/brain/store/sqlite"
)

func main() {
	var (
		pptDir     = flag.String("ppts", "data/ppts", "Directory of .pptx files")
		outDir     = flag.String("out", "data/output", "JSON output directory")
		configPath = flag.String("config", "", "Brain YAML config (optional)")
		tabMapPath = flag.String("tabmap", "data/log10_tab_url_map.csv", "Tab→URL reference CSV")
		dbPath     = flag.String("db", "", "SQLite store path (optional)")
		videoLink  = flag.String("video", "demo://placeholder_video", "Video link recorded on every process")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loader := config.Loader{ConfigPath: *configPath, TabMapPath: *tabMapPath}
	components, err := loader.Load()
	if err != nil {
		logger.Fatal("load configuration", zap.Error(err))
	}

	b := brain.New(brain.Options{
		Classifier: components.Classifier,
		Extractor:  components.Extractor,
		TabMap:     components.TabMap,
		Logger:     logger,
	})

	entries, err := os.ReadDir(*pptDir)
	if err != nil {
		logger.Fatal("read deck directory", zap.String("dir", *pptDir), zap.Error(err))
	}

	var result brain.Result
	processed := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pptx") {
			continue
		}
		path := filepath.Join(*pptDir, entry.Name())

		doc, err := pptx.Open(path)
		if err != nil {
			logger.Error("open deck", zap.String("path", path), zap.Error(err))
			continue
		}

		docResult := b.BuildProcessMap(doc, *videoLink)
		result.Log10 = append(result.Log10, docResult.Log10...)
		result.External = append(result.External, docResult.External...)
		processed++
	}

	if processed == 0 {
		logger.Fatal("no decks found", zap.String("dir", *pptDir))
	}

	if err := output.WriteMaps(*outDir, result); err != nil {
		logger.Fatal("write output", zap.Error(err))
	}

	if *dbPath != "" {
		ctx := context.Background()
		st, err := sqlite.Open(ctx, *dbPath)
		if err != nil {
			logger.Fatal("open store", zap.Error(err))
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
				logger.Fatal("store process", zap.Error(err))
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
				logger.Fatal("store external", zap.Error(err))
			}
		}
	}

	logger.Info("done",
		zap.Int("decks", processed),
		zap.Int("log10_processes", len(result.Log10)),
		zap.Int("external_processes", len(result.External)))
}
