package events

import (
	"fmt"
	"sync"
)

// InMemoryEventStore keeps an append-only log per stream plus a global log
type InMemoryEventStore struct {
	streams   map[string][]Event
	versions  map[string]int
	mutex     sync.RWMutex
	allEvents []Event
	limit     int
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return NewBoundedEventStore(0)
}

// NewBoundedEventStore keeps at most limit events in the global log and in each
// stream, dropping the oldest first; 0 means unbounded. Versions keep counting
// after a stream is trimmed.
func NewBoundedEventStore(limit int) *InMemoryEventStore {
	return &InMemoryEventStore{
		streams:   make(map[string][]Event),
		versions:  make(map[string]int),
		allEvents: make([]Event, 0),
		limit:     limit,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	if streamID == "" {
		return fmt.Errorf("stream id cannot be empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.versions[streamID]++
	stored := stamp(event, streamID, s.versions[streamID])

	s.streams[streamID] = trim(append(s.streams[streamID], stored), s.limit)
	s.allEvents = trim(append(s.allEvents, stored), s.limit)

	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if len(events) == 0 {
		return []Event{}, nil
	}

	// events hold consecutive versions; trimming only removes the oldest
	offset := fromVersion - events[0].Version()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		return []Event{}, nil
	}

	return copyEvents(events[offset:]), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return copyEvents(s.allEvents[fromPosition:]), nil
}

// trim drops the oldest events beyond limit, copying so the dropped prefix can be collected
func trim(events []Event, limit int) []Event {
	if limit <= 0 || len(events) <= limit {
		return events
	}
	kept := make([]Event, limit, limit*2)
	copy(kept, events[len(events)-limit:])
	return kept
}

func copyEvents(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
