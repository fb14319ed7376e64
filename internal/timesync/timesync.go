// internal/timesync/timesync.go
package timesync

import (
	"errors"
	"fmt"
	"log"

	"github.com/tamzrod/uplink-scheduler/internal/clock"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// Sync uplinks carry a 7-byte clock snapshot; sync downlinks carry the
// same 7 positions as bias-encoded (+128) signed deltas:
//
//	byte 0: century   byte 1: year   byte 2: month   byte 3: day
//	byte 4: hour      byte 5: min    byte 6: sec
//
// relative to the 4-byte wire header preceding them.
const (
	PayloadLen = 7
	deltaBias  = 128
)

// Epoch is the sentinel date the clock is pinned to before the first
// successful synchronization.
var Epoch = clock.DateTime{Year: 2000, Month: 1, Day: 1, DOW: 6}

var ErrShortDelta = errors.New("timesync: delta payload shorter than 7 bytes")

// Snapshot encodes the current clock for a sync-request uplink.
func Snapshot(dt clock.DateTime) [PayloadLen]byte {
	return [PayloadLen]byte{
		byte(dt.Year / 100),
		byte(dt.Year % 100),
		byte(dt.Month),
		byte(dt.Day),
		byte(dt.Hour),
		byte(dt.Min),
		byte(dt.Sec),
	}
}

// DecodeDeltas bias-decodes a sync downlink. data is the full frame
// including the wire header; the deltas sit at bytes 4..10. years
// combines the century and year positions.
func DecodeDeltas(data []byte) (deltas [5]int, years int, err error) {
	if len(data) < wire.HeaderSize+PayloadLen {
		return deltas, 0, ErrShortDelta
	}

	raw := data[wire.HeaderSize : wire.HeaderSize+PayloadLen]
	century := int(raw[0]) - deltaBias
	year := int(raw[1]) - deltaBias

	years = century*100 + year
	deltas = [5]int{
		int(raw[6]) - deltaBias, // sec
		int(raw[5]) - deltaBias, // min
		int(raw[4]) - deltaBias, // hour
		int(raw[3]) - deltaBias, // day
		int(raw[2]) - deltaBias, // month
	}
	return deltas, years, nil
}

// Applier steps the device clock from sync downlinks. It implements
// scheduler.DeltaApplier.
type Applier struct {
	rtc clock.RTC
}

func NewApplier(rtc clock.RTC) *Applier {
	return &Applier{rtc: rtc}
}

// Apply decodes the delta payload, adds it to the current clock with
// carry propagation and writes the result back to the clock store.
func (a *Applier) Apply(payload []byte) error {
	deltas, years, err := DecodeDeltas(payload)
	if err != nil {
		return err
	}

	dt, err := a.rtc.Now()
	if err != nil {
		return fmt.Errorf("timesync: clock read: %w", err)
	}

	next := clock.ApplyDelta(dt, deltas, years)
	log.Printf("timesync: clock stepped to %04d-%02d-%02d %02d:%02d:%02d (dow=%d)",
		next.Year, next.Month, next.Day, next.Hour, next.Min, next.Sec, next.DOW)

	return a.rtc.Set(next)
}
