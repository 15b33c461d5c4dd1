// Package clock provides millisecond tick counters for the control loop.
package clock

import (
	"sync"
	"time"
)

// System counts milliseconds since it was created. The count is truncated to
// 32 bits so it wraps like a microcontroller uptime counter.
type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) NowMillis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

// Fake is a test double whose value only moves when told to.
type Fake struct {
	mu  sync.Mutex
	now uint32
}

func NewFake(now uint32) *Fake {
	return &Fake{now: now}
}

func (f *Fake) NowMillis() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *Fake) Set(now uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = now
}

// Advance moves the clock forward, wrapping at 2^32.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now += uint32(d.Milliseconds())
}
