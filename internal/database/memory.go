package database

import (
	"context"
	"sync"
)

const DEFAULT_MEMORY_CAPACITY = 500

// MemoryStore keeps the most recent events in a fixed size ring when no
// database is configured. The oldest event is overwritten once it is full.
type MemoryStore struct {
	mu       sync.Mutex
	buf      []Event
	capacity int
	head     int
	count    int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DEFAULT_MEMORY_CAPACITY
	}

	return &MemoryStore{
		buf:      make([]Event, capacity),
		capacity: capacity,
	}
}

func (m *MemoryStore) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event := Event{
		ID:        arg.ID,
		CreatedAt: arg.CreatedAt,
		EventType: arg.EventType,
		EventData: arg.EventData,
	}

	m.buf[m.head] = event
	m.head = (m.head + 1) % m.capacity
	if m.count < m.capacity {
		m.count++
	}

	return event, nil
}

// GetLatestEvents returns up to limit events, newest first.
func (m *MemoryStore) GetLatestEvents(ctx context.Context, limit int32) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.count
	if int(limit) < n {
		n = int(limit)
	}
	if n <= 0 {
		return []Event{}, nil
	}

	events := make([]Event, n)
	for i := 0; i < n; i++ {
		events[i] = m.buf[(m.head-1-i+m.capacity)%m.capacity]
	}

	return events, nil
}
