package mqtt

import (
	"sync"
	"time"

	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	Events   []irrigation.Event
	Statuses []irrigation.Status
	Payloads [][]byte

	// PublishError, if set, is returned by every publish.
	PublishError error

	Closed bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishEvent(event irrigation.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatEventPayload(event)
	if err != nil {
		return err
	}

	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)

	return nil
}

func (f *FakePublisher) PublishStatus(status irrigation.Status, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatStatusPayload(status, at)
	if err != nil {
		return err
	}

	f.Statuses = append(f.Statuses, status)
	f.Payloads = append(f.Payloads, payload)

	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Closed = true
	return nil
}

// EventCount returns how many events were published.
func (f *FakePublisher) EventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.Events)
}

// StatusCount returns how many status snapshots were published.
func (f *FakePublisher) StatusCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.Statuses)
}
