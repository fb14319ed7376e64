// internal/sensor/runner.go
package sensor

import (
	"context"
	"log"
	"time"
)

// Run starts the sampler's ticker loop. One goroutine per producer;
// failed samples are logged and skipped, never retried.
func (s *TemperatureSampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SampleOnce(); err != nil {
				log.Printf("sensor: sample skipped: %v", err)
			}
		}
	}
}

// Run starts the watcher's poll loop at the debounce interval.
func (w *EdgeWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.CheckOnce(); err != nil {
				log.Printf("sensor: edge check skipped: %v", err)
			}
		}
	}
}
