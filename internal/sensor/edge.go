// internal/sensor/edge.go
package sensor

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/scheduler"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// LevelReader reports the current logic level of a digital input.
type LevelReader interface {
	Level() (bool, error)
}

// EdgeConfig is the edge watcher runtime config.
type EdgeConfig struct {
	Port       uint8
	Debounce   time.Duration
	Guaranteed bool
}

// EdgeWatcher polls a digital input at the debounce interval and
// enqueues a one-byte event for every level change that survives a
// full poll period. Bounces shorter than the period coalesce away.
type EdgeWatcher struct {
	cfg EdgeConfig
	in  LevelReader
	out Creator

	last   bool
	primed bool
}

func NewEdgeWatcher(cfg EdgeConfig, in LevelReader, out Creator) (*EdgeWatcher, error) {
	if in == nil {
		return nil, errors.New("sensor: level reader required")
	}
	if out == nil {
		return nil, errors.New("sensor: creator required")
	}
	if cfg.Debounce <= 0 {
		return nil, errors.New("sensor: debounce must be > 0")
	}
	return &EdgeWatcher{cfg: cfg, in: in, out: out}, nil
}

// CheckOnce samples the input once. The first sample only primes the
// reference level and never produces an event.
func (w *EdgeWatcher) CheckOnce() error {
	level, err := w.in.Level()
	if err != nil {
		return fmt.Errorf("sensor: level read: %w", err)
	}

	if !w.primed {
		w.primed = true
		w.last = level
		return nil
	}

	if level == w.last {
		return nil
	}
	w.last = level

	var b byte
	if level {
		b = 1
	}
	return w.out.Enqueue(scheduler.Request{
		Port:       w.cfg.Port,
		Type:       wire.TypeEdge,
		Content:    []byte{b},
		Guaranteed: w.cfg.Guaranteed,
	})
}

// GPIOValueFile reads a sysfs-style GPIO value file ("0" / "1").
type GPIOValueFile struct {
	Path string
}

func (g *GPIOValueFile) Level() (bool, error) {
	b, err := os.ReadFile(g.Path)
	if err != nil {
		return false, err
	}
	if len(b) == 0 {
		return false, errors.New("sensor: empty gpio value file")
	}
	return b[0] == '1', nil
}
