package web

import (
	"sync"
)

// DefaultBufferSize is the default maximum number of events kept for replay.
const DefaultBufferSize = 5000

// Buffer is a thread-safe ring buffer of events. clients that connect after
// the run started replay the buffer before streaming live events.
type Buffer struct {
	mu       sync.RWMutex
	events   []Event
	maxSize  int
	writePos int // next position to write (wraps around)
	count    int // total events written
}

// NewBuffer creates a ring buffer with the specified max size.
// if maxSize is 0, DefaultBufferSize is used.
func NewBuffer(maxSize int) *Buffer {
	if maxSize <= 0 {
		maxSize = DefaultBufferSize
	}
	return &Buffer{events: make([]Event, maxSize), maxSize: maxSize}
}

// Add appends an event, overwriting the oldest when full.
func (b *Buffer) Add(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[b.writePos] = e
	b.writePos = (b.writePos + 1) % b.maxSize
	b.count++
}

// All returns all buffered events in chronological order.
func (b *Buffer) All() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}

	if b.count <= b.maxSize {
		result := make([]Event, b.count)
		copy(result, b.events[:b.count])
		return result
	}

	// wrapped: oldest event is at writePos
	result := make([]Event, b.maxSize)
	tailLen := b.maxSize - b.writePos
	copy(result[:tailLen], b.events[b.writePos:])
	copy(result[tailLen:], b.events[:b.writePos])
	return result
}

// Count returns the number of events currently held.
func (b *Buffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count > b.maxSize {
		return b.maxSize
	}
	return b.count
}

// Clear removes all events.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = make([]Event, b.maxSize)
	b.writePos = 0
	b.count = 0
}
