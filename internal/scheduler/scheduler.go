// internal/scheduler/scheduler.go
package scheduler

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/clock"
	"github.com/tamzrod/uplink-scheduler/internal/pool"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// ErrIntakeFull means a producer outran the pool. Like free-list
// exhaustion this has no backpressure path; the resetter has already
// been invoked when this is returned.
var ErrIntakeFull = errors.New("scheduler: intake full")

// Scheduler walks the pending list, transmits eligible entries, runs the
// downlink listen window after each successful uplink and applies
// acknowledgements and time deltas.
//
// Exactly one context may call Drain; entry scalar fields (send time)
// are mutated without locks under that single-writer rule.
type Scheduler struct {
	cfg   Config
	pool  *pool.Pool
	tr    Transport
	rtc   clock.RTC
	act   Actuator
	reset Resetter
	sync  DeltaApplier

	intake chan Request

	failures    int
	firstWindow bool

	now func() time.Time
}

// New wires a scheduler. The intake channel is bounded by the pool
// capacity: a full intake implies an exhausted pool.
func New(cfg Config, p *pool.Pool, tr Transport, rtc clock.RTC, act Actuator, reset Resetter, sync DeltaApplier) (*Scheduler, error) {
	if p == nil {
		return nil, errors.New("scheduler: pool required")
	}
	if tr == nil {
		return nil, errors.New("scheduler: transport required")
	}
	if reset == nil {
		return nil, errors.New("scheduler: resetter required")
	}
	if cfg.RetryTimeout <= 0 || cfg.ListenWindow <= 0 {
		return nil, errors.New("scheduler: retry timeout and listen window must be > 0")
	}
	if cfg.FailureThreshold <= 0 {
		return nil, errors.New("scheduler: failure threshold must be > 0")
	}

	return &Scheduler{
		cfg:         cfg,
		pool:        p,
		tr:          tr,
		rtc:         rtc,
		act:         act,
		reset:       reset,
		sync:        sync,
		intake:      make(chan Request, p.Capacity()),
		firstWindow: true,
		now:         time.Now,
	}, nil
}

// Enqueue hands a creation request to the scheduler context. It never
// blocks; a full intake is treated as pool exhaustion.
func (s *Scheduler) Enqueue(req Request) error {
	select {
	case s.intake <- req:
		return nil
	default:
		s.reset.Reset("message intake full")
		return ErrIntakeFull
	}
}

// Drain runs one scheduling pass: absorb queued creation requests, then
// transmit every eligible pending entry, listening for downlinks after
// each successful uplink.
//
// A transmit failure stops the pass and is returned so the caller can
// rejoin and retry; past the consecutive-failure threshold the device is
// reset instead.
func (s *Scheduler) Drain() error {
	s.drainIntake()

	handles := s.pool.PendingHandles()
	if len(handles) == 0 {
		// No uplink means no downlink opportunity on this link class.
		return nil
	}

	for _, h := range handles {
		e, ok := s.pool.Snapshot(h)
		if !ok {
			// Retired earlier in this pass by a correlating downlink.
			continue
		}

		now := s.now()

		if e.Guaranteed && !e.SendTime.IsZero() {
			if dt, err := s.rtcDOW(); err == nil && dt != e.DOW {
				log.Printf("scheduler: expiring stale guaranteed message (port=%d type=%d dow=%d)",
					e.Port, e.Type, e.DOW)
				s.pool.Retire(h)
				continue
			}
		}

		if !e.SendTime.IsZero() && now.Sub(e.SendTime) <= s.cfg.RetryTimeout {
			continue
		}

		if err := s.tr.SendUnconfirmed(s.pool.Frame(h), e.Port); err != nil {
			s.failures++
			if s.failures > s.cfg.FailureThreshold {
				s.reset.Reset(fmt.Sprintf(
					"transport stuck: %d consecutive transmit failures", s.failures))
			}
			return fmt.Errorf("scheduler: transmit failed (port=%d type=%d): %w",
				e.Port, e.Type, err)
		}

		s.failures = 0
		s.pool.SetSendTime(h, now)

		if !e.Guaranteed {
			s.pool.Retire(h)
		}

		s.listen()
	}

	return nil
}

// drainIntake moves queued creation requests into the pool. Exhaustion
// has already triggered the reset hook inside Create; the log line is
// for the post-mortem.
func (s *Scheduler) drainIntake() {
	for {
		select {
		case req := <-s.intake:
			if _, err := s.pool.Create(req.Port, req.Type, req.Content, req.Guaranteed); err != nil {
				log.Printf("scheduler: create failed (port=%d type=%d): %v",
					req.Port, req.Type, err)
			}
		default:
			return
		}
	}
}

// listen runs one downlink window. Every downlink of the very first
// window since process start is discarded: the network side may have a
// stale message queued from a previous session.
func (s *Scheduler) listen() {
	first := s.firstWindow
	s.firstWindow = false

	for s.tr.WaitForEvent(s.cfg.ListenWindow) {
		data, port, ok := s.tr.Receive()
		if !ok {
			// Event without a downlink ends the window.
			return
		}

		if first {
			log.Printf("scheduler: discarding stale downlink from previous session (%d bytes, port=%d)",
				len(data), port)
			continue
		}

		s.handleDownlink(data, port)
	}
}

func (s *Scheduler) handleDownlink(data []byte, port uint8) {
	hdr, err := wire.DecodeBytes(data)
	if err != nil {
		log.Printf("scheduler: dropping undecodable downlink (%d bytes, port=%d): %v",
			len(data), port, err)
		return
	}

	// Any downlink whose header matches a pending entry's correlation
	// key acknowledges that entry. A miss is not an error: unrelated
	// downlinks must not retire anything.
	if h := s.pool.FindByCorrelation(port, hdr.Guaranteed, hdr.Type, hdr.Timestamp()); h != pool.NoHandle {
		s.pool.Retire(h)
	}

	switch {
	case port == s.cfg.SyncPort && hdr.Type == wire.TypeTimeSync:
		if s.sync == nil {
			log.Printf("scheduler: no delta applier, dropping sync downlink")
			return
		}
		if err := s.sync.Apply(data); err != nil {
			log.Printf("scheduler: time delta rejected: %v", err)
		}

	case port == s.cfg.AppPort && hdr.Type == s.cfg.ControlType:
		if len(data) <= wire.HeaderSize {
			log.Printf("scheduler: control downlink without payload, dropped")
			return
		}
		if s.act == nil {
			return
		}
		if err := s.act.Set(data[wire.HeaderSize]); err != nil {
			log.Printf("scheduler: actuator set failed: %v", err)
		}

	default:
		log.Printf("scheduler: ignoring downlink (port=%d type=%d)", port, hdr.Type)
	}
}

// rtcDOW returns the current day of week for stale-entry expiry.
func (s *Scheduler) rtcDOW() (int, error) {
	if s.rtc == nil {
		return 0, errors.New("scheduler: no rtc")
	}
	dt, err := s.rtc.Now()
	if err != nil {
		return 0, err
	}
	return dt.DOW, nil
}
