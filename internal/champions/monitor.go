package champions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/watcher"
)

// Notice kinds reported when the champions file changes on disk.
const (
	NoticeUpdated = "champions-updated"
	NoticeInvalid = "champions-invalid"
	NoticeMissing = "champions-missing"
)

// Notifier receives a notice about the champions file.
type Notifier func(kind, message string)

// Monitor validates the champions file whenever it is edited, so a broken
// save is reported right away instead of at the next cycle. Cycles still
// load the file themselves; Monitor keeps no registry.
type Monitor struct {
	path    string
	watcher *watcher.Watcher
	notify  Notifier
	logger  *slog.Logger
}

// NewMonitor starts watching path. Its directory must exist.
func NewMonitor(path string, opts watcher.Options, notify Notifier, logger *slog.Logger) (*Monitor, error) {
	w, err := watcher.New(logger, opts)
	if err != nil {
		return nil, err
	}
	if err := w.WatchFile(path); err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("watch champions file: %w", err)
	}
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Monitor{path: path, watcher: w, notify: notify, logger: logger}, nil
}

// Run handles file events until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	go m.watcher.Start(ctx) //nolint:errcheck // Start only returns nil

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-m.watcher.Events():
			m.handle(event)
		case err := <-m.watcher.Errors():
			m.logger.Warn("champions watcher error", slog.String("error", err.Error()))
		}
	}
}

func (m *Monitor) handle(event watcher.Event) {
	switch event.Type {
	case watcher.EventRemoved:
		m.logger.Warn("champions file removed", slog.String("path", event.Path))
		m.notify(NoticeMissing, "Champions file was removed; badges will be missing until it is restored.")

	case watcher.EventWritten:
		registry, err := Load(event.Path)
		if err != nil {
			m.logger.Warn("champions file changed but is unreadable",
				slog.String("path", event.Path),
				slog.String("error", err.Error()))
			m.notify(NoticeInvalid, "Champions file changed but could not be read; badges may be missing.")
			return
		}
		m.logger.Info("champions file updated",
			slog.String("path", event.Path),
			slog.Int("players", len(registry)),
			slog.Int("past_champions", registry.Champions()))
		m.notify(NoticeUpdated, fmt.Sprintf("Champions list updated: %d past champions.", registry.Champions()))
	}
}

// Stop releases the file watch.
func (m *Monitor) Stop() error {
	return m.watcher.Stop()
}
