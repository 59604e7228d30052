package registry

import (
	"time"

	"github.com/roadpeak/foolu/internal/infrastructure/logging"
)

// Sweeper periodically evicts empty parties that have been idle longer than
// the registry's expiry. It is a no-op loop when the registry has no expiry
// configured.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	logger   logging.Logger
	done     chan struct{}
}

func NewSweeper(registry *Registry, interval time.Duration, logger logging.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Run blocks until Stop is called. Call it in a goroutine.
func (s *Sweeper) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := s.registry.EvictIdle(); evicted > 0 {
				s.logger.Info(logging.WatchParty, logging.Eviction, "evicted idle parties", map[logging.ExtraKey]any{
					"count": evicted,
				})
			}
		case <-s.done:
			return
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.done)
}
