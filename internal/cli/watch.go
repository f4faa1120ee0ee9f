package cli

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/sluice/internal/presentation/tui"
	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 100 * time.Millisecond

var errWatcherClosed = errors.New("watcher closed")

// RunWatch reruns the definition every time the file changes until ctx is done.
// A definition that fails to load is reported and the previous output stays on screen.
func RunWatch(ctx context.Context, opts RunOptions, logger *slog.Logger, w io.Writer) error {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultWatchDebounce
	}
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", opts.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often save by replacing the file, which drops a watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if !opts.Quiet && tui.IsTerminal(w) {
		tui.PrintBanner(w)
	}
	logger.Info("Starting Watcher", "path", path, "debounce", opts.Debounce)

	last := fingerprint(path)
	for {
		if err := runOnce(ctx, opts, logger, w); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("Run failed", "path", opts.Path, "error", err)
			printSystemMessage(w, "Error: %v", err)
		}
		printSystemMessage(w, "Waiting for changes in '%s'...", opts.Path)

		next, err := waitForChange(ctx, watcher, path, last, opts.Debounce, logger)
		if err != nil {
			logger.Info("Stopping watcher", "reason", err)
			return nil
		}
		last = next
		logger.Info("Change detected, reloading", "path", opts.Path)
		printSystemMessage(w, "Change detected in '%s'.", opts.Path)
	}
}

// waitForChange blocks until events for path have been quiet for debounce and
// the content differs from last.
func waitForChange(ctx context.Context, watcher *fsnotify.Watcher, path string, last [md5.Size]byte, debounce time.Duration, logger *slog.Logger) ([md5.Size]byte, error) {
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return last, errWatcherClosed
			}
			if filepath.Clean(ev.Name) != path || ev.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("Watch event", "op", ev.Op.String(), "path", ev.Name)
			settle = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return last, errWatcherClosed
			}
			logger.Warn("Watcher error", "error", err)
		case <-settle:
			settle = nil
			if cur := fingerprint(path); cur != last {
				return cur, nil
			}
		}
	}
}

// fingerprint hashes the file content. A missing file hashes to zero so its
// reappearance counts as a change.
func fingerprint(path string) [md5.Size]byte {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return md5.Sum([]byte(err.Error()))
		}
		return [md5.Size]byte{}
	}
	return md5.Sum(data)
}
