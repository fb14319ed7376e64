// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Modem     ModemConfig     `yaml:"modem"`
	Sync      SyncConfig      `yaml:"sync"`

	// Producers and the actuator are opt-in.
	Sensor   *SensorConfig   `yaml:"sensor"`
	Edge     *EdgeConfig     `yaml:"edge"`
	Actuator *ActuatorConfig `yaml:"actuator"`
}

// ---- SCHEDULER ----

type SchedulerConfig struct {
	PoolCapacity     int `yaml:"pool_capacity"`
	PassIntervalS    int `yaml:"pass_interval_s"`
	RetryTimeoutS    int `yaml:"retry_timeout_s"`
	ListenWindowS    int `yaml:"listen_window_s"`
	FailureThreshold int `yaml:"failure_threshold"`

	SyncPort *uint8 `yaml:"sync_port"`
	AppPort  *uint8 `yaml:"app_port"`
}

// ---- MODEM ----

type ModemConfig struct {
	Device           string `yaml:"device"`
	BaudRate         int    `yaml:"baud_rate"`
	CommandTimeoutMs int    `yaml:"command_timeout_ms"`
	JoinTimeoutS     int    `yaml:"join_timeout_s"`
}

// ---- TIME SYNC ----

type SyncConfig struct {
	SettleS              int  `yaml:"settle_s"`
	ResyncIntervalH      int  `yaml:"resync_interval_h"`
	Guaranteed           bool `yaml:"guaranteed"`
	MaxBootstrapAttempts int  `yaml:"max_bootstrap_attempts"`
}

// ---- PRODUCERS ----

type SensorConfig struct {
	Endpoint   string  `yaml:"endpoint"`
	SlaveID    uint8   `yaml:"slave_id"`
	Register   uint16  `yaml:"register"`
	Scale      float64 `yaml:"scale"`
	TimeoutMs  int     `yaml:"timeout_ms"`
	IntervalS  int     `yaml:"interval_s"`
	Guaranteed bool    `yaml:"guaranteed"`
}

type EdgeConfig struct {
	Path       string `yaml:"path"`
	DebounceMs int    `yaml:"debounce_ms"`
	Guaranteed *bool  `yaml:"guaranteed"` // default true
}

// ---- ACTUATOR ----

type ActuatorConfig struct {
	Path string `yaml:"path"`
}

// Load reads and parses the YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
