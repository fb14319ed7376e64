// internal/pool/pool.go
package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tamzrod/uplink-scheduler/internal/clock"
	"github.com/tamzrod/uplink-scheduler/internal/wire"
)

// Handle is a stable index into the pool arena.
type Handle int32

// NoHandle is the nil handle.
const NoHandle Handle = -1

// ErrExhausted is returned by Create when the free list is empty.
// There is no backpressure: the caller treats this as an unrecoverable
// resource condition (the pool invokes its exhaustion hook first).
var ErrExhausted = errors.New("pool: exhausted")

// Entry is one message slot. A slot is on exactly one of the free or
// pending lists at any time; its identity is its arena index.
type Entry struct {
	Header     uint32 // packed wire word, stamped at creation
	Content    [wire.MaxContentLength]byte
	Length     uint8
	Port       uint8
	Type       uint8
	Guaranteed bool
	DOW        int // day of week at creation, drives stale expiry

	// SendTime is owned by the single scheduler context and is not
	// lock-protected. Zero means never sent.
	SendTime time.Time

	next    Handle
	pending bool
}

// Pool is a fixed arena of message slots split between an intrusive free
// list and an intrusive pending list. The two lists have independent
// locks, held only for pointer relinking and never nested.
type Pool struct {
	entries []Entry
	rtc     clock.RTC

	freeMu   sync.Mutex
	freeHead Handle

	pendMu   sync.Mutex
	pendHead Handle

	// onExhausted fires before Create returns ErrExhausted. In
	// production it resets the device and does not return.
	onExhausted func()
}

// New preallocates the arena once. No allocation occurs after this.
func New(capacity int, rtc clock.RTC, onExhausted func()) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("pool: capacity must be > 0, got %d", capacity)
	}
	if rtc == nil {
		return nil, errors.New("pool: rtc required")
	}
	if onExhausted == nil {
		onExhausted = func() {}
	}

	p := &Pool{
		entries:     make([]Entry, capacity),
		rtc:         rtc,
		pendHead:    NoHandle,
		onExhausted: onExhausted,
	}

	// Chain every slot onto the free list.
	for i := range p.entries {
		p.entries[i].next = Handle(i) + 1
	}
	p.entries[capacity-1].next = NoHandle
	p.freeHead = 0

	return p, nil
}

// Capacity returns the fixed slot count.
func (p *Pool) Capacity() int {
	return len(p.entries)
}

// Create pops a free slot, stamps the wire header from the current
// clock, copies content (clamped to 7 bytes) and links the slot at the
// head of the pending list. Safe to call from concurrent producers.
func (p *Pool) Create(port, msgType uint8, content []byte, guaranteed bool) (Handle, error) {
	now, err := p.rtc.Now()
	if err != nil {
		return NoHandle, fmt.Errorf("pool: clock read: %w", err)
	}

	p.freeMu.Lock()
	h := p.freeHead
	if h == NoHandle {
		p.freeMu.Unlock()
		p.onExhausted()
		return NoHandle, ErrExhausted
	}
	p.freeHead = p.entries[h].next
	p.freeMu.Unlock()

	if len(content) > wire.MaxContentLength {
		content = content[:wire.MaxContentLength]
	}

	e := &p.entries[h]
	hdr := wire.Header{
		Version:      wire.Version,
		DOW:          uint8(now.DOW),
		SecondsOfDay: uint32(clock.SecondsOfDay(now)),
		Guaranteed:   guaranteed,
		Type:         msgType,
		Length:       uint8(len(content)),
	}
	e.Header = hdr.Encode()
	e.Length = uint8(len(content))
	copy(e.Content[:], content)
	e.Port = port
	e.Type = msgType
	e.Guaranteed = guaranteed
	e.DOW = now.DOW
	e.SendTime = time.Time{}

	p.pendMu.Lock()
	e.next = p.pendHead
	e.pending = true
	p.pendHead = h
	p.pendMu.Unlock()

	return h, nil
}

// Retire unlinks the slot from the pending list (head or interior) and
// returns it to the free list. No-op on NoHandle or a slot that is not
// pending.
func (p *Pool) Retire(h Handle) {
	if h == NoHandle {
		return
	}

	p.pendMu.Lock()
	if !p.entries[h].pending {
		p.pendMu.Unlock()
		return
	}
	if p.pendHead == h {
		p.pendHead = p.entries[h].next
	} else {
		for cur := p.pendHead; cur != NoHandle; cur = p.entries[cur].next {
			if p.entries[cur].next == h {
				p.entries[cur].next = p.entries[h].next
				break
			}
		}
	}
	p.entries[h].pending = false
	p.pendMu.Unlock()

	p.freeMu.Lock()
	p.entries[h].next = p.freeHead
	p.freeHead = h
	p.freeMu.Unlock()
}

// FindByCorrelation scans the pending list newest-first for an exact
// match on the correlation key. Returns NoHandle when nothing matches.
func (p *Pool) FindByCorrelation(port uint8, guaranteed bool, msgType uint8, timestamp uint32) Handle {
	p.pendMu.Lock()
	defer p.pendMu.Unlock()

	for h := p.pendHead; h != NoHandle; h = p.entries[h].next {
		e := &p.entries[h]
		if e.Port != port || e.Guaranteed != guaranteed || e.Type != msgType {
			continue
		}
		if wire.Decode(e.Header).Timestamp() == timestamp {
			return h
		}
	}
	return NoHandle
}

// PendingHandles snapshots the pending chain newest-first, so a pass can
// keep iterating while entries are retired under it.
func (p *Pool) PendingHandles() []Handle {
	p.pendMu.Lock()
	defer p.pendMu.Unlock()

	var out []Handle
	for h := p.pendHead; h != NoHandle; h = p.entries[h].next {
		out = append(out, h)
	}
	return out
}

// Snapshot copies a slot's fields. ok reports whether the slot is still
// on the pending list.
func (p *Pool) Snapshot(h Handle) (Entry, bool) {
	p.pendMu.Lock()
	defer p.pendMu.Unlock()
	return p.entries[h], p.entries[h].pending
}

// SetSendTime records the last transmit attempt. Single scheduler
// context only; deliberately unlocked.
func (p *Pool) SetSendTime(h Handle, t time.Time) {
	p.entries[h].SendTime = t
}

// Frame returns the transmit payload for a slot: the 4-byte header in
// wire order followed by the content.
func (p *Pool) Frame(h Handle) []byte {
	e := &p.entries[h]
	out := make([]byte, 0, wire.HeaderSize+int(e.Length))
	out = append(out,
		byte(e.Header), byte(e.Header>>8), byte(e.Header>>16), byte(e.Header>>24))
	return append(out, e.Content[:e.Length]...)
}

// CountPending walks the pending list. Diagnostics only.
func (p *Pool) CountPending() int {
	p.pendMu.Lock()
	defer p.pendMu.Unlock()

	n := 0
	for h := p.pendHead; h != NoHandle; h = p.entries[h].next {
		n++
	}
	return n
}

// CountFree walks the free list. Diagnostics only.
func (p *Pool) CountFree() int {
	p.freeMu.Lock()
	defer p.freeMu.Unlock()

	n := 0
	for h := p.freeHead; h != NoHandle; h = p.entries[h].next {
		n++
	}
	return n
}
