// internal/scheduler/types.go
package scheduler

import (
	"time"
)

// Transport abstracts the radio link. The scheduler drives the
// transmit + listen cycle through exactly these three calls; join and
// session management stay with the caller.
type Transport interface {
	// SendUnconfirmed transmits one uplink frame on the given port.
	SendUnconfirmed(payload []byte, port uint8) error

	// WaitForEvent blocks until a transport event occurs or the
	// timeout elapses. True means an event occurred.
	WaitForEvent(timeout time.Duration) bool

	// Receive returns the downlink delivered by the last event, if any.
	Receive() (data []byte, port uint8, ok bool)
}

// Actuator is the sink for downlink control bytes.
type Actuator interface {
	Set(state byte) error
}

// Resetter performs the full device reset. The production
// implementation does not return.
type Resetter interface {
	Reset(reason string)
}

// DeltaApplier applies a time-sync delta payload to the device clock.
type DeltaApplier interface {
	Apply(payload []byte) error
}

// Request is one message-creation request from a producer context.
// Producers never touch the pool directly; requests cross a bounded
// channel into the single scheduler context.
type Request struct {
	Port       uint8
	Type       uint8
	Content    []byte
	Guaranteed bool
}

// Config is the scheduler runtime configuration.
type Config struct {
	SyncPort    uint8 // time-sync control messages, delta replies
	AppPort     uint8 // sensor uplinks and actuator downlinks
	ControlType uint8 // downlink type on AppPort driving the actuator

	RetryTimeout     time.Duration // re-send a pending entry after this
	ListenWindow     time.Duration // downlink wait after each uplink
	FailureThreshold int           // consecutive transmit failures before reset
}
