package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher tails a feedback ledger file and feeds approved entries into the
// memory store as they appear. File change notifications trigger a scan;
// a periodic ticker backstops them for filesystems where notifications
// are unreliable (network mounts, editors that replace files).
type Watcher struct {
	path     string
	mem      Memory
	interval time.Duration
	logger   *zap.Logger
}

// WatcherConfig holds configuration for the ledger watcher.
type WatcherConfig struct {
	// Path is the ledger file to watch. Required; the file itself may
	// not exist yet, but its directory must.
	Path string

	// PollInterval is the backstop scan cadence. Defaults to 30s.
	PollInterval time.Duration
}

// NewWatcher creates a ledger watcher feeding the given memory store.
func NewWatcher(cfg WatcherConfig, mem Memory, logger *zap.Logger) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("ledger path is required")
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Watcher{
		path:     cfg.Path,
		mem:      mem,
		interval: interval,
		logger:   logger,
	}, nil
}

// Run watches the ledger until ctx is canceled. The enclosing directory is
// watched rather than the file so rename-style rewrites keep triggering
// scans. Scan errors are logged and retried on the next trigger; only a
// watch setup failure or context cancellation ends the loop.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("ledger directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fs watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.logger.Info("watching feedback ledger",
		zap.String("path", w.path),
		zap.Duration("poll_interval", w.interval),
	)

	// Catch up on whatever is already in the ledger before waiting.
	w.scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("fs watcher closed")
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scan(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("fs watcher closed")
			}
			w.logger.Warn("fs watcher error", zap.Error(err))

		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	added, err := Scan(ctx, w.path, w.mem, w.logger)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("ledger file not present yet", zap.String("path", w.path))
			return
		}
		w.logger.Warn("ledger scan failed", zap.Error(err))
		return
	}

	if added > 0 {
		w.logger.Info("stored approved posts from ledger", zap.Int("added", added))
	}
}
