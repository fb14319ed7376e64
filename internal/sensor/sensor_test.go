// internal/sensor/sensor_test.go
package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/scheduler"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// ---- fakes ----

type fakeThermometer struct {
	c   float64
	err error
}

func (f *fakeThermometer) ReadTemperature() (float64, error) { return f.c, f.err }

type fakeCreator struct {
	requests []scheduler.Request
}

func (f *fakeCreator) Enqueue(req scheduler.Request) error {
	f.requests = append(f.requests, req)
	return nil
}

type fakeLevel struct {
	level bool
	err   error
}

func (f *fakeLevel) Level() (bool, error) { return f.level, f.err }

// ---- tests ----

func TestTemperatureSampler_SampleOnce(t *testing.T) {
	out := &fakeCreator{}
	s, err := NewTemperatureSampler(TemperatureConfig{
		Port:     2,
		Interval: time.Minute,
	}, &fakeThermometer{c: 21.7}, out)
	if err != nil {
		t.Fatalf("NewTemperatureSampler err=%v", err)
	}

	if err := s.SampleOnce(); err != nil {
		t.Fatalf("SampleOnce err=%v", err)
	}

	if len(out.requests) != 1 {
		t.Fatalf("requests=%d, want 1", len(out.requests))
	}
	req := out.requests[0]
	if req.Port != 2 || req.Type != wire.TypeTemperature {
		t.Fatalf("request misrouted: %+v", req)
	}
	if len(req.Content) != 1 || req.Content[0] != 21 {
		t.Fatalf("content=%v, want [21]", req.Content)
	}
}

func TestTemperatureSampler_ReadFailure(t *testing.T) {
	out := &fakeCreator{}
	s, _ := NewTemperatureSampler(TemperatureConfig{
		Port:     2,
		Interval: time.Minute,
	}, &fakeThermometer{err: errors.New("bus down")}, out)

	if err := s.SampleOnce(); err == nil {
		t.Fatalf("expected error")
	}
	if len(out.requests) != 0 {
		t.Fatalf("failed sample must not enqueue")
	}
}

func TestEncodeTemperature_Clamps(t *testing.T) {
	cases := []struct {
		in   float64
		want byte
	}{
		{-40, 0},
		{0, 0},
		{21.9, 21},
		{255, 255},
		{300, 255},
	}

	for _, c := range cases {
		if got := encodeTemperature(c.in); got != c.want {
			t.Fatalf("encodeTemperature(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestEdgeWatcher_PrimesWithoutEvent(t *testing.T) {
	out := &fakeCreator{}
	in := &fakeLevel{level: true}
	w, err := NewEdgeWatcher(EdgeConfig{Port: 2, Debounce: 50 * time.Millisecond, Guaranteed: true}, in, out)
	if err != nil {
		t.Fatalf("NewEdgeWatcher err=%v", err)
	}

	if err := w.CheckOnce(); err != nil {
		t.Fatalf("CheckOnce err=%v", err)
	}
	if len(out.requests) != 0 {
		t.Fatalf("priming sample must not enqueue")
	}
}

func TestEdgeWatcher_EmitsOnLevelChange(t *testing.T) {
	out := &fakeCreator{}
	in := &fakeLevel{level: false}
	w, _ := NewEdgeWatcher(EdgeConfig{Port: 2, Debounce: 50 * time.Millisecond, Guaranteed: true}, in, out)

	_ = w.CheckOnce() // prime at low

	in.level = true
	if err := w.CheckOnce(); err != nil {
		t.Fatalf("CheckOnce err=%v", err)
	}

	if len(out.requests) != 1 {
		t.Fatalf("requests=%d, want 1", len(out.requests))
	}
	req := out.requests[0]
	if req.Type != wire.TypeEdge || !req.Guaranteed {
		t.Fatalf("edge request wrong: %+v", req)
	}
	if req.Content[0] != 1 {
		t.Fatalf("rising edge content=%v, want [1]", req.Content)
	}

	// Stable level: no further events.
	_ = w.CheckOnce()
	if len(out.requests) != 1 {
		t.Fatalf("stable level must not enqueue")
	}

	// Falling edge.
	in.level = false
	_ = w.CheckOnce()
	if len(out.requests) != 2 || out.requests[1].Content[0] != 0 {
		t.Fatalf("falling edge not reported: %+v", out.requests)
	}
}
