// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// MODEM
	// ------------------------------------------------------------

	if cfg.Modem.Device == "" {
		return fmt.Errorf("modem: device required")
	}
	if cfg.Modem.BaudRate < 0 {
		return fmt.Errorf("modem: baud_rate must be >= 0, got %d", cfg.Modem.BaudRate)
	}

	// ------------------------------------------------------------
	// SCHEDULER
	// ------------------------------------------------------------

	s := cfg.Scheduler
	if s.PoolCapacity < 0 {
		return fmt.Errorf("scheduler: pool_capacity must be >= 0, got %d", s.PoolCapacity)
	}
	if s.RetryTimeoutS < 0 || s.ListenWindowS < 0 || s.PassIntervalS < 0 {
		return fmt.Errorf("scheduler: intervals must be >= 0")
	}
	if s.FailureThreshold < 0 {
		return fmt.Errorf("scheduler: failure_threshold must be >= 0, got %d", s.FailureThreshold)
	}

	// LoRaWAN application ports are 1..223.
	if s.SyncPort != nil && (*s.SyncPort < 1 || *s.SyncPort > 223) {
		return fmt.Errorf("scheduler: sync_port %d out of range 1..223", *s.SyncPort)
	}
	if s.AppPort != nil && (*s.AppPort < 1 || *s.AppPort > 223) {
		return fmt.Errorf("scheduler: app_port %d out of range 1..223", *s.AppPort)
	}
	if s.SyncPort != nil && s.AppPort != nil && *s.SyncPort == *s.AppPort {
		return fmt.Errorf("scheduler: sync_port and app_port must differ, both %d", *s.SyncPort)
	}

	// ------------------------------------------------------------
	// TIME SYNC
	// ------------------------------------------------------------

	if cfg.Sync.SettleS < 0 || cfg.Sync.ResyncIntervalH < 0 || cfg.Sync.MaxBootstrapAttempts < 0 {
		return fmt.Errorf("sync: intervals and attempts must be >= 0")
	}

	// ------------------------------------------------------------
	// PRODUCERS (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Sensor != nil {
		if cfg.Sensor.Endpoint == "" {
			return fmt.Errorf("sensor: endpoint required")
		}
		if cfg.Sensor.IntervalS < 0 || cfg.Sensor.TimeoutMs < 0 {
			return fmt.Errorf("sensor: intervals must be >= 0")
		}
		if cfg.Sensor.Scale < 0 {
			return fmt.Errorf("sensor: scale must be >= 0, got %v", cfg.Sensor.Scale)
		}
	}

	if cfg.Edge != nil {
		if cfg.Edge.Path == "" {
			return fmt.Errorf("edge: path required")
		}
		if cfg.Edge.DebounceMs < 0 {
			return fmt.Errorf("edge: debounce_ms must be >= 0, got %d", cfg.Edge.DebounceMs)
		}
	}

	if cfg.Actuator != nil && cfg.Actuator.Path == "" {
		return fmt.Errorf("actuator: path required")
	}

	return nil
}
