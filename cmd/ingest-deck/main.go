// Command ingest-deck registers the .pptx files in a directory into
// the ingestion manifest: first-slide title, slide count, video link
// and timestamp. The manifest feeds review tooling; extraction itself
// happens in build-map / process-and-sync.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/loadshare/brain/pkg/brain/deck/pptx"
	"github.com/loadshare/brain/pkg/brain/store"
	"github.com/loadshare/brain/pkg/brain/store/sqlite"
)

func main() {
	var (
		pptDir    = flag.String("ppts", "data/ppts", "Directory of .pptx files")
		dbPath    = flag.String("db", "data/output/brain.db", "SQLite store path")
		videoLink = flag.String("video", "demo://placeholder_video", "Video link recorded for each deck")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		logger.Fatal("create store directory", zap.Error(err))
	}

	ctx := context.Background()
	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	entries, err := os.ReadDir(*pptDir)
	if err != nil {
		logger.Fatal("read deck directory", zap.String("dir", *pptDir), zap.Error(err))
	}

	ingested := 0
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

		title := "Unknown Process"
		if len(doc.Slides) > 0 && doc.Slides[0].HasTitle {
			if t := strings.TrimSpace(doc.Slides[0].Title); t != "" {
				title = t
			}
		}

		if err := st.RecordIngest(ctx, store.Ingest{
			Title:      title,
			Path:       path,
			VideoLink:  *videoLink,
			SlideCount: doc.SlideCount(),
			IngestedAt: time.Now().UTC(),
		}); err != nil {
			logger.Error("record ingest", zap.String("path", path), zap.Error(err))
			continue
		}

		logger.Info("ingested deck",
			zap.String("title", title),
			zap.Int("slides", doc.SlideCount()))
		ingested++
	}

	if ingested == 0 {
		logger.Fatal("no decks ingested", zap.String("dir", *pptDir))
	}
	logger.Info("manifest updated", zap.Int("decks", ingested), zap.String("db", *dbPath))
}
