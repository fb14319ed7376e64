// internal/clock/rtc.go
package clock

import (
	"sync"
	"time"
)

// RTC is the device calendar store.
type RTC interface {
	Now() (DateTime, error)
	Set(DateTime) error
}

// SystemRTC derives the device clock from the host monotonic clock plus
// an offset recorded on Set. It starts unset; Now before the first Set
// reports the zero epoch advancing from process start.
type SystemRTC struct {
	mu     sync.Mutex
	offset time.Duration
}

// NewSystemRTC returns an RTC pinned to the given starting date/time.
func NewSystemRTC(start DateTime) *SystemRTC {
	r := &SystemRTC{}
	_ = r.Set(start)
	return r
}

func (r *SystemRTC) Now() (DateTime, error) {
	r.mu.Lock()
	off := r.offset
	r.mu.Unlock()
	return FromTime(time.Now().Add(off)), nil
}

func (r *SystemRTC) Set(dt DateTime) error {
	target := time.Date(dt.Year, time.Month(dt.Month), dt.Day,
		dt.Hour, dt.Min, dt.Sec, 0, time.UTC)

	r.mu.Lock()
	r.offset = target.Sub(time.Now())
	r.mu.Unlock()
	return nil
}

// FromTime converts a wall-clock instant into the device representation.
func FromTime(t time.Time) DateTime {
	t = t.UTC()
	dt := DateTime{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
		Hour:  t.Hour(),
		Min:   t.Minute(),
		Sec:   t.Second(),
	}
	dt.DOW = DayOfWeek(dt.Day, dt.Month, dt.Year)
	return dt
}
