package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEvents(t *testing.T, store *MemoryStore, count int) {
	t.Helper()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		_, err := store.CreateEvent(context.Background(), CreateEventParams{
			ID:        uuid.New(),
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
			EventType: int32(i),
			EventData: json.RawMessage(`{}`),
		})
		require.NoError(t, err)
	}
}

func TestMemoryStoreNewestFirst(t *testing.T) {
	store := NewMemoryStore(10)
	createEvents(t, store, 3)

	events, err := store.GetLatestEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int32(2), events[0].EventType)
	assert.Equal(t, int32(0), events[2].EventType)
}

func TestMemoryStoreLimit(t *testing.T) {
	store := NewMemoryStore(10)
	createEvents(t, store, 5)

	events, err := store.GetLatestEvents(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int32(4), events[0].EventType)
	assert.Equal(t, int32(3), events[1].EventType)

	events, err = store.GetLatestEvents(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemoryStoreOverwritesOldest(t *testing.T) {
	store := NewMemoryStore(3)
	createEvents(t, store, 5)

	events, err := store.GetLatestEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int32{4, 3, 2}, []int32{events[0].EventType, events[1].EventType, events[2].EventType})
}

func TestMemoryStoreDefaultCapacity(t *testing.T) {
	store := NewMemoryStore(0)
	assert.Equal(t, DEFAULT_MEMORY_CAPACITY, store.capacity)
}
