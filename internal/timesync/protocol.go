// internal/timesync/protocol.go
package timesync

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/clock"
	"github.com/tamzrod/uplink-scheduler/internal/scheduler"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// Driver is the scheduler surface the protocol drives.
type Driver interface {
	Enqueue(scheduler.Request) error
	Drain() error
}

// Config is the sync protocol configuration.
type Config struct {
	SyncPort uint8

	// Settle covers downlink propagation plus server-side processing
	// between the bootstrap request and its follow-up.
	Settle time.Duration

	// MaxBootstrapAttempts bounds the bootstrap loop; 0 means retry
	// until the clock leaves the epoch.
	MaxBootstrapAttempts int

	// GuaranteedResync marks periodic re-sync requests for
	// retry-until-acknowledged delivery.
	GuaranteedResync bool
}

// Protocol implements clock bootstrap and periodic re-synchronization
// over the scheduler and wire protocol.
type Protocol struct {
	cfg    Config
	drv    Driver
	rtc    clock.RTC
	rejoin func() error

	sleep func(time.Duration)
}

func New(cfg Config, drv Driver, rtc clock.RTC, rejoin func() error) (*Protocol, error) {
	if drv == nil {
		return nil, errors.New("timesync: driver required")
	}
	if rtc == nil {
		return nil, errors.New("timesync: rtc required")
	}
	if cfg.Settle <= 0 {
		return nil, errors.New("timesync: settle must be > 0")
	}

	return &Protocol{
		cfg:    cfg,
		drv:    drv,
		rtc:    rtc,
		rejoin: rejoin,
		sleep:  time.Sleep,
	}, nil
}

// Bootstrap pins the clock to the epoch, then loops sync request +
// follow-up passes until a delta downlink moves the year off the epoch.
// Transport failures trigger a rejoin and another attempt.
func (p *Protocol) Bootstrap() error {
	if err := p.rtc.Set(Epoch); err != nil {
		return fmt.Errorf("timesync: epoch set: %w", err)
	}

	for attempt := 1; ; attempt++ {
		if p.cfg.MaxBootstrapAttempts > 0 && attempt > p.cfg.MaxBootstrapAttempts {
			return fmt.Errorf("timesync: bootstrap gave up after %d attempts",
				p.cfg.MaxBootstrapAttempts)
		}

		if err := p.pass(); err != nil {
			log.Printf("timesync: bootstrap attempt %d: %v", attempt, err)
			if p.rejoin != nil {
				if err := p.rejoin(); err != nil {
					log.Printf("timesync: rejoin failed: %v", err)
				}
			}
			continue
		}

		now, err := p.rtc.Now()
		if err != nil {
			return fmt.Errorf("timesync: clock read: %w", err)
		}
		if now.Year == Epoch.Year {
			// The correction did not land; ask again.
			log.Printf("timesync: clock still at epoch year after attempt %d", attempt)
			continue
		}

		log.Printf("timesync: bootstrap complete (%04d-%02d-%02d)",
			now.Year, now.Month, now.Day)
		return nil
	}
}

// pass sends one snapshot request, waits out the settle delay, then
// sends the zero follow-up that opens the listen window for the reply.
func (p *Protocol) pass() error {
	if err := p.enqueueSnapshot(false); err != nil {
		return err
	}
	if err := p.drv.Drain(); err != nil {
		return err
	}

	p.sleep(p.cfg.Settle)

	var nop [PayloadLen]byte
	if err := p.drv.Enqueue(scheduler.Request{
		Port:    p.cfg.SyncPort,
		Type:    wire.TypeTimeSync,
		Content: nop[:],
	}); err != nil {
		return err
	}
	return p.drv.Drain()
}

// Request enqueues one periodic re-sync request and returns without
// waiting: the next scheduling pass picks up any reply.
func (p *Protocol) Request() error {
	return p.enqueueSnapshot(p.cfg.GuaranteedResync)
}

func (p *Protocol) enqueueSnapshot(guaranteed bool) error {
	dt, err := p.rtc.Now()
	if err != nil {
		return fmt.Errorf("timesync: clock read: %w", err)
	}

	snap := Snapshot(dt)
	return p.drv.Enqueue(scheduler.Request{
		Port:       p.cfg.SyncPort,
		Type:       wire.TypeTimeSync,
		Content:    snap[:],
		Guaranteed: guaranteed,
	})
}
