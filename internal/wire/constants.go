// internal/wire/constants.go
package wire

// Message type values carried in the 4-bit header type field.
// These define the protocol and MUST NOT be configurable.

// ---- TYPES ----

// TypeTimeSync is a clock-synchronization message. Uplinks carry the
// device clock snapshot; downlinks carry bias-encoded deltas.
const TypeTimeSync uint8 = 0

// TypeTemperature is a one-byte temperature reading uplink.
const TypeTemperature uint8 = 1

// TypeControl is a downlink whose first payload byte sets the actuator.
const TypeControl uint8 = 2

// TypeEdge is a one-byte edge-event uplink (debounced input change).
const TypeEdge uint8 = 3

// ---- DEFAULT PORTS ----

// DefaultSyncPort is the logical port reserved for time-sync traffic.
const DefaultSyncPort uint8 = 1

// DefaultAppPort is the logical port for sensor and actuator traffic.
const DefaultAppPort uint8 = 2
