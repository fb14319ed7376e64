// internal/device/reset.go
package device

import (
	"log"
	"os"
)

// Resetter performs the full device reset. This is the only
// cancellation mechanism the system has: there is no graceful shutdown
// path, and the pool is repopulated from scratch on the next start.
//
// The process exits non-zero and the supervisor restart takes the role
// the hardware watchdog played on the original board.
type Resetter struct{}

func (Resetter) Reset(reason string) {
	log.Printf("device: fatal condition, resetting: %s", reason)
	os.Exit(1)
}
