// internal/config/normalize.go
package config

import "github.com/tamzrod/uplink-scheduler/internal/wire"

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// SCHEDULER DEFAULTS
	// ------------------------------------------------------------

	s := &cfg.Scheduler
	if s.PoolCapacity == 0 {
		s.PoolCapacity = 8
	}
	if s.PassIntervalS == 0 {
		s.PassIntervalS = 60
	}
	if s.RetryTimeoutS == 0 {
		s.RetryTimeoutS = 600
	}
	if s.ListenWindowS == 0 {
		s.ListenWindowS = 30
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.SyncPort == nil {
		p := wire.DefaultSyncPort
		s.SyncPort = &p
	}
	if s.AppPort == nil {
		p := wire.DefaultAppPort
		s.AppPort = &p
	}

	// ------------------------------------------------------------
	// MODEM DEFAULTS
	// ------------------------------------------------------------

	if cfg.Modem.BaudRate == 0 {
		cfg.Modem.BaudRate = 115200
	}
	if cfg.Modem.CommandTimeoutMs == 0 {
		cfg.Modem.CommandTimeoutMs = 5000
	}
	if cfg.Modem.JoinTimeoutS == 0 {
		cfg.Modem.JoinTimeoutS = 120
	}

	// ------------------------------------------------------------
	// TIME SYNC DEFAULTS
	// ------------------------------------------------------------

	if cfg.Sync.SettleS == 0 {
		cfg.Sync.SettleS = 10
	}
	if cfg.Sync.ResyncIntervalH == 0 {
		cfg.Sync.ResyncIntervalH = 24
	}

	// ------------------------------------------------------------
	// PRODUCER DEFAULTS (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Sensor != nil {
		if cfg.Sensor.IntervalS == 0 {
			cfg.Sensor.IntervalS = 300
		}
		if cfg.Sensor.TimeoutMs == 0 {
			cfg.Sensor.TimeoutMs = 2000
		}
		if cfg.Sensor.Scale == 0 {
			cfg.Sensor.Scale = 10
		}
	}

	if cfg.Edge != nil {
		if cfg.Edge.DebounceMs == 0 {
			cfg.Edge.DebounceMs = 50
		}
		if cfg.Edge.Guaranteed == nil {
			g := true
			cfg.Edge.Guaranteed = &g
		}
	}
}
