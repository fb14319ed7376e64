// internal/timesync/timesync_test.go
package timesync

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/clock"
	"github.com/tamzrod/uplink-scheduler/internal/scheduler"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// ---- fakes ----

type fakeRTC struct {
	dt clock.DateTime
}

func (f *fakeRTC) Now() (clock.DateTime, error) { return f.dt, nil }
func (f *fakeRTC) Set(dt clock.DateTime) error  { f.dt = dt; return nil }

// fakeDriver records enqueued requests and can fail or step the clock
// on a chosen Drain call.
type fakeDriver struct {
	rtc       *fakeRTC
	requests  []scheduler.Request
	drains    int
	failUntil int             // Drain calls up to this index fail
	stepOn    int             // Drain call index that applies the correction
	stepTo    clock.DateTime
}

func (f *fakeDriver) Enqueue(req scheduler.Request) error {
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeDriver) Drain() error {
	f.drains++
	if f.drains <= f.failUntil {
		return errors.New("transmit failed")
	}
	if f.stepOn > 0 && f.drains == f.stepOn {
		f.rtc.dt = f.stepTo
	}
	return nil
}

func newProtocol(t *testing.T, drv *fakeDriver, rtc *fakeRTC, rejoin func() error) *Protocol {
	t.Helper()

	p, err := New(Config{
		SyncPort:             wire.DefaultSyncPort,
		Settle:               10 * time.Second,
		MaxBootstrapAttempts: 5,
	}, drv, rtc, rejoin)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	p.sleep = func(time.Duration) {}
	return p
}

// ---- codec tests ----

func TestSnapshot(t *testing.T) {
	dt := clock.DateTime{Year: 2023, Month: 2, Day: 26, Hour: 14, Min: 30, Sec: 45}

	got := Snapshot(dt)
	want := [PayloadLen]byte{20, 23, 2, 26, 14, 30, 45}
	if got != want {
		t.Fatalf("Snapshot = %v, want %v", got, want)
	}
}

func TestDecodeDeltas(t *testing.T) {
	hdr := wire.Header{Type: wire.TypeTimeSync}
	b := hdr.EncodeBytes()
	// +0 centuries +23 years, +1 month, -2 days, +3 hours, -4 min, +5 sec
	payload := append(b[:], 128, 128+23, 128+1, 128-2, 128+3, 128-4, 128+5)

	deltas, years, err := DecodeDeltas(payload)
	if err != nil {
		t.Fatalf("DecodeDeltas err=%v", err)
	}

	if years != 23 {
		t.Fatalf("years=%d, want 23", years)
	}
	want := [5]int{5, -4, 3, -2, 1} // sec, min, hour, day, month
	if deltas != want {
		t.Fatalf("deltas=%v, want %v", deltas, want)
	}
}

func TestDecodeDeltas_Short(t *testing.T) {
	if _, _, err := DecodeDeltas(make([]byte, 10)); err != ErrShortDelta {
		t.Fatalf("expected ErrShortDelta, got %v", err)
	}
}

func TestApplier_StepsClock(t *testing.T) {
	rtc := &fakeRTC{dt: Epoch}
	a := NewApplier(rtc)

	hdr := wire.Header{Type: wire.TypeTimeSync}
	b := hdr.EncodeBytes()
	// 2000-01-01 -> 2023-02-26 14:30:45
	payload := append(b[:], 128, 128+23, 128+1, 128+25, 128+14, 128+30, 128+45)

	if err := a.Apply(payload); err != nil {
		t.Fatalf("Apply err=%v", err)
	}

	want := clock.DateTime{Year: 2023, Month: 2, Day: 26, Hour: 14, Min: 30, Sec: 45}
	want.DOW = clock.DayOfWeek(26, 2, 2023)
	if rtc.dt != want {
		t.Fatalf("clock=%+v, want %+v", rtc.dt, want)
	}
}

func TestApplier_ShortPayloadRejected(t *testing.T) {
	rtc := &fakeRTC{dt: Epoch}
	a := NewApplier(rtc)

	if err := a.Apply([]byte{1, 2, 3, 4}); err == nil {
		t.Fatalf("expected error on short payload")
	}
	if rtc.dt != Epoch {
		t.Fatalf("clock must not move on a rejected delta")
	}
}

// ---- protocol tests ----

func TestBootstrap_CompletesWhenClockLeavesEpoch(t *testing.T) {
	rtc := &fakeRTC{}
	drv := &fakeDriver{
		rtc:    rtc,
		stepOn: 2, // the follow-up pass delivers the delta
		stepTo: clock.DateTime{Year: 2023, Month: 2, Day: 26},
	}

	p := newProtocol(t, drv, rtc, nil)
	if err := p.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap err=%v", err)
	}

	if len(drv.requests) != 2 {
		t.Fatalf("requests=%d, want 2 (snapshot + follow-up)", len(drv.requests))
	}

	// First request carries the epoch snapshot, non-guaranteed.
	first := drv.requests[0]
	if first.Port != wire.DefaultSyncPort || first.Type != wire.TypeTimeSync {
		t.Fatalf("first request misrouted: %+v", first)
	}
	if first.Guaranteed {
		t.Fatalf("bootstrap requests must not be guaranteed")
	}
	snap := Snapshot(Epoch)
	for i, b := range snap {
		if first.Content[i] != b {
			t.Fatalf("snapshot content mismatch at %d: %v", i, first.Content)
		}
	}

	// Follow-up is all zeros.
	for i, b := range drv.requests[1].Content {
		if b != 0 {
			t.Fatalf("follow-up byte %d = %d, want 0", i, b)
		}
	}
}

func TestBootstrap_RetriesWhileAtEpochYear(t *testing.T) {
	rtc := &fakeRTC{}
	drv := &fakeDriver{
		rtc:    rtc,
		stepOn: 4, // second attempt's follow-up succeeds
		stepTo: clock.DateTime{Year: 2023, Month: 2, Day: 26},
	}

	p := newProtocol(t, drv, rtc, nil)
	if err := p.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap err=%v", err)
	}

	if drv.drains != 4 {
		t.Fatalf("drains=%d, want 4 (two full attempts)", drv.drains)
	}
}

func TestBootstrap_RejoinsOnTransportFailure(t *testing.T) {
	rtc := &fakeRTC{}
	drv := &fakeDriver{
		rtc:       rtc,
		failUntil: 1, // first Drain fails
		stepOn:    3,
		stepTo:    clock.DateTime{Year: 2023, Month: 2, Day: 26},
	}

	rejoins := 0
	p := newProtocol(t, drv, rtc, func() error { rejoins++; return nil })
	if err := p.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap err=%v", err)
	}

	if rejoins != 1 {
		t.Fatalf("rejoins=%d, want 1", rejoins)
	}
}

func TestBootstrap_GivesUpAfterMaxAttempts(t *testing.T) {
	rtc := &fakeRTC{}
	drv := &fakeDriver{rtc: rtc} // clock never leaves the epoch

	p := newProtocol(t, drv, rtc, nil)
	if err := p.Bootstrap(); err == nil {
		t.Fatalf("expected bootstrap to give up")
	}
}

func TestRequest_EnqueuesWithoutDraining(t *testing.T) {
	rtc := &fakeRTC{dt: clock.DateTime{Year: 2023, Month: 6, Day: 1, Hour: 8}}
	drv := &fakeDriver{rtc: rtc}

	p := newProtocol(t, drv, rtc, nil)
	if err := p.Request(); err != nil {
		t.Fatalf("Request err=%v", err)
	}

	if len(drv.requests) != 1 {
		t.Fatalf("requests=%d, want 1", len(drv.requests))
	}
	if drv.drains != 0 {
		t.Fatalf("periodic re-sync must not block on a pass")
	}
	if drv.requests[0].Content[1] != 23 {
		t.Fatalf("snapshot year byte=%d, want 23", drv.requests[0].Content[1])
	}
}
