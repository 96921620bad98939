// Command sync-extension keeps the browser extension's data file in
// step with the brain output: it copies log10_processes.json to the
// extension data directory once at startup, then re-copies it whenever
// the brain rewrites it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func main() {
	var (
		source = flag.String("source", "data/output/log10_processes.json", "Brain output file to watch")
		dest   = flag.String("dest", "unified-extension/data/log10_processes.json", "Extension data file to keep in sync")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := syncFile(*source, *dest); err != nil {
		logger.Warn("initial sync", zap.Error(err))
	} else {
		logger.Info("synced", zap.String("dest", *dest))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Fatal("create watcher", zap.Error(err))
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and the brain both
	// replace the file by rename, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(*source)); err != nil {
		logger.Fatal("watch directory", zap.Error(err))
	}

	logger.Info("watching", zap.String("source", *source))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(*source) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := syncFile(*source, *dest); err != nil {
				logger.Warn("sync failed", zap.Error(err))
				continue
			}
			logger.Info("synced", zap.String("dest", *dest))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// syncFile copies source over dest, creating dest's directory when
// needed.
func syncFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create dest: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
