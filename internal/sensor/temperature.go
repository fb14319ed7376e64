// internal/sensor/temperature.go
package sensor

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/scheduler"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// Creator is the message intake surface producers use. Producers never
// touch the pool; requests cross into the scheduler context.
type Creator interface {
	Enqueue(scheduler.Request) error
}

// Thermometer reads one temperature sample in degrees Celsius.
type Thermometer interface {
	ReadTemperature() (float64, error)
}

// TemperatureConfig is the sampler runtime config.
type TemperatureConfig struct {
	Port       uint8
	Interval   time.Duration
	Guaranteed bool
}

// TemperatureSampler is a dumb, clock-driven producer: read one sample,
// enqueue one uplink.
type TemperatureSampler struct {
	cfg TemperatureConfig
	th  Thermometer
	out Creator
}

func NewTemperatureSampler(cfg TemperatureConfig, th Thermometer, out Creator) (*TemperatureSampler, error) {
	if th == nil {
		return nil, errors.New("sensor: thermometer required")
	}
	if out == nil {
		return nil, errors.New("sensor: creator required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("sensor: interval must be > 0")
	}
	return &TemperatureSampler{cfg: cfg, th: th, out: out}, nil
}

// SampleOnce performs exactly one sample + enqueue cycle.
func (s *TemperatureSampler) SampleOnce() error {
	c, err := s.th.ReadTemperature()
	if err != nil {
		return fmt.Errorf("sensor: temperature read: %w", err)
	}

	return s.out.Enqueue(scheduler.Request{
		Port:       s.cfg.Port,
		Type:       wire.TypeTemperature,
		Content:    []byte{encodeTemperature(c)},
		Guaranteed: s.cfg.Guaranteed,
	})
}

// encodeTemperature squeezes a reading into the one-byte uplink format:
// whole degrees Celsius, clamped to 0..255.
func encodeTemperature(c float64) byte {
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return byte(c)
}
