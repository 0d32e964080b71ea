package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/champions"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/config"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/logger"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/sse"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/watcher"
)

// ChampionsMonitorHandle wraps the champions file monitor with shutdown
// capability. Monitor is nil when watching is disabled or unavailable.
type ChampionsMonitorHandle struct {
	*champions.Monitor
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ChampionsMonitorHandle) Shutdown() error {
	if h.Monitor == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideChampionsMonitor watches the champions file and tells connected
// viewers when an edit breaks or fixes it.
func ProvideChampionsMonitor(i do.Injector) (*ChampionsMonitorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	if !cfg.Champions.Watch {
		log.Info("Champions file watching disabled by configuration")
		return &ChampionsMonitorHandle{}, nil
	}

	notify := func(kind, message string) {
		sseHandle.Emit(sse.NewNoticeEvent(kind, message))
	}

	monitor, err := champions.NewMonitor(cfg.Champions.Path, watcher.Options{}, notify, log.Component("champions"))
	if err != nil {
		// Non-fatal: cycles still read the file themselves.
		log.Warn("Champions file watcher unavailable",
			"dir", filepath.Dir(cfg.Champions.Path),
			"error", err,
		)
		return &ChampionsMonitorHandle{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := monitor.Run(ctx); err != nil {
			log.Error("Champions file monitor stopped", "error", err)
		}
	}()

	log.Info("Watching champions file", "path", cfg.Champions.Path)

	return &ChampionsMonitorHandle{Monitor: monitor, cancel: cancel}, nil
}
