// Watches the configuration file for edits.

package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration at path whenever it is written and passes
// the result to onChange. Invalid edits are logged and skipped. The watch
// stops when ctx is canceled.
//
// The directory is watched rather than the file, since editors commonly
// replace the file on save.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				data, err := os.ReadFile(abs) //nolint:gosec // User-specified config path
				if err != nil || len(data) == 0 {
					// Truncated mid-save or already replaced; a later event follows.
					continue
				}
				cfg, err := Parse(data)
				if err != nil {
					slog.WarnContext(ctx, "Ignoring invalid config", "path", abs, "err", err)
					continue
				}
				slog.InfoContext(ctx, "Config reloaded", "path", abs)
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching config", "err", err)
			}
		}
	}()
	return nil
}
