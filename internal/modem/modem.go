// internal/modem/modem.go
package modem

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/serial"
)

// Modem drives a RAK811-class LoRaWAN AT modem on a serial line and
// implements the scheduler's Transport contract.
//
// A reader goroutine splits the line stream: unsolicited at+recv lines
// land in a buffered downlink queue, command responses go to the
// command in flight. WaitForEvent/Receive are called from the single
// scheduler context only.
type Modem struct {
	cfg  Config
	port serial.Port

	cmdMu sync.Mutex // one command in flight at a time
	resp  chan string

	events  chan Downlink
	pending *Downlink

	done      chan struct{}
	closeOnce sync.Once
}

// Config is the serial + timing configuration.
type Config struct {
	Device         string
	BaudRate       int
	CommandTimeout time.Duration
	JoinTimeout    time.Duration
}

// New opens the serial line and starts the reader.
func New(cfg Config) (*Modem, error) {
	if cfg.Device == "" {
		return nil, errors.New("modem: device required")
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = 115200
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 5 * time.Second
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = 120 * time.Second
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  500 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("modem: open %s: %w", cfg.Device, err)
	}

	m := &Modem{
		cfg:    cfg,
		port:   port,
		resp:   make(chan string, 4),
		events: make(chan Downlink, 8),
		done:   make(chan struct{}),
	}
	go m.readLoop()

	return m, nil
}

// Join performs the OTAA join and waits for the modem's verdict.
func (m *Modem) Join() error {
	line, err := m.command("at+join", m.cfg.JoinTimeout)
	if err != nil {
		return err
	}
	if !strings.Contains(line, "Join Success") {
		return fmt.Errorf("modem: join rejected: %s", line)
	}
	return nil
}

// EraseNVM drops the modem's stored session so the next join starts
// clean.
func (m *Modem) EraseNVM() error {
	_, err := m.command("at+set_config=lora:default", m.cfg.CommandTimeout)
	return err
}

// SendUnconfirmed transmits one unconfirmed uplink frame.
func (m *Modem) SendUnconfirmed(payload []byte, port uint8) error {
	_, err := m.command(sendCommand(port, payload), m.cfg.CommandTimeout)
	return err
}

// WaitForEvent blocks until a downlink arrives or the timeout elapses.
func (m *Modem) WaitForEvent(timeout time.Duration) bool {
	select {
	case d := <-m.events:
		m.pending = &d
		return true
	case <-time.After(timeout):
		return false
	case <-m.done:
		return false
	}
}

// Receive hands over the downlink delivered by the last event.
func (m *Modem) Receive() ([]byte, uint8, bool) {
	if m.pending == nil {
		return nil, 0, false
	}
	d := *m.pending
	m.pending = nil
	return d.Data, d.Port, true
}

// Close stops the reader and releases the serial line.
func (m *Modem) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		err = m.port.Close()
	})
	return err
}

// ---- internals ----

func (m *Modem) command(cmd string, timeout time.Duration) (string, error) {
	m.cmdMu.Lock()
	defer m.cmdMu.Unlock()

	if _, err := m.port.Write([]byte(cmd + "\r\n")); err != nil {
		return "", fmt.Errorf("modem: write: %w", err)
	}

	select {
	case line := <-m.resp:
		if isErrorResponse(line) {
			return line, fmt.Errorf("modem: command failed: %s", line)
		}
		return line, nil
	case <-time.After(timeout):
		return "", fmt.Errorf("modem: no response to %q within %s", cmd, timeout)
	case <-m.done:
		return "", errors.New("modem: closed")
	}
}

func (m *Modem) readLoop() {
	buf := make([]byte, 256)
	var acc []byte

	for {
		select {
		case <-m.done:
			return
		default:
		}

		n, err := m.port.Read(buf)
		if n > 0 {
			acc = append(acc, buf[:n]...)
			for {
				i := bytes.IndexByte(acc, '\n')
				if i < 0 {
					break
				}
				line := strings.TrimSpace(string(acc[:i]))
				acc = acc[i+1:]
				if line != "" {
					m.dispatch(line)
				}
			}
		}
		if err != nil && err != serial.ErrTimeout {
			select {
			case <-m.done:
			default:
				log.Printf("modem: read loop stopped: %v", err)
			}
			return
		}
	}
}

func (m *Modem) dispatch(line string) {
	if strings.HasPrefix(line, recvPrefix) {
		d, err := parseRecv(line)
		if err != nil {
			log.Printf("modem: dropping downlink: %v", err)
			return
		}
		select {
		case m.events <- d:
		default:
			log.Printf("modem: downlink queue full, dropping (port=%d)", d.Port)
		}
		return
	}

	select {
	case m.resp <- line:
	default:
		log.Printf("modem: unsolicited response dropped: %s", line)
	}
}
