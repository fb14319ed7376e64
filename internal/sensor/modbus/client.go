// internal/sensor/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// Client implements sensor.Thermometer over a Modbus TCP temperature
// transducer. This adapter is geometry-only: one input register holds
// the signed reading in scaled units (typically deci-degrees).
type Client struct {
	handler  *modbus.TCPClientHandler
	client   modbus.Client
	register uint16
	scale    float64
}

// Config is minimal transport + register geometry.
type Config struct {
	Endpoint string
	SlaveID  byte
	Register uint16
	Scale    float64 // raw units per degree Celsius; 0 means 1
	Timeout  time.Duration
}

// New creates a connected Modbus TCP client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("sensor modbus: endpoint required")
	}
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	handler := modbus.NewTCPClientHandler(cfg.Endpoint)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.SlaveID

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("sensor modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &Client{
		handler:  handler,
		client:   modbus.NewClient(handler),
		register: cfg.Register,
		scale:    cfg.Scale,
	}, nil
}

// ReadTemperature reads the transducer register and converts to
// degrees Celsius.
func (c *Client) ReadTemperature() (float64, error) {
	raw, err := c.client.ReadInputRegisters(c.register, 1)
	if err != nil {
		return 0, err
	}
	if len(raw) < 2 {
		return 0, errors.New("sensor modbus: short register payload")
	}

	v := int16(uint16(raw[0])<<8 | uint16(raw[1]))
	return float64(v) / c.scale, nil
}

// Close closes the TCP connection.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}
