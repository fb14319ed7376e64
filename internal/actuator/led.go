// internal/actuator/led.go
package actuator

import (
	"errors"
	"os"
)

// LED drives a sysfs-style brightness file. Any non-zero control byte
// switches the output on.
type LED struct {
	path string
}

func NewLED(path string) (*LED, error) {
	if path == "" {
		return nil, errors.New("actuator: path required")
	}
	return &LED{path: path}, nil
}

func (l *LED) Set(state byte) error {
	v := []byte("0")
	if state != 0 {
		v = []byte("1")
	}
	return os.WriteFile(l.path, v, 0o644)
}
