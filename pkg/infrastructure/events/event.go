package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is one entry of the recomputation audit log
type Event interface {
	ID() string
	Type() string
	StreamID() string
	Data() any
	Timestamp() time.Time
	Version() int
}

// EventStore appends events per stream. Versions are assigned by the store, starting at 1.
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
}

// BaseEvent is the stored form of every event and the shape returned by the history API
type BaseEvent struct {
	EventID      string    `json:"id"`
	EventType    string    `json:"type"`
	Stream       string    `json:"stream"`
	EventData    any       `json:"data"`
	EventTime    time.Time `json:"time"`
	EventVersion int       `json:"version"`
}

func (e BaseEvent) ID() string           { return e.EventID }
func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) StreamID() string     { return e.Stream }
func (e BaseEvent) Data() any            { return e.EventData }
func (e BaseEvent) Timestamp() time.Time { return e.EventTime }
func (e BaseEvent) Version() int         { return e.EventVersion }

// NewEvent creates an event stamped with the current time
func NewEvent(eventType, streamID string, data any) Event {
	return NewEventAt(eventType, streamID, data, time.Now())
}

// NewEventAt creates an event with a fresh id; its version is set when appended
func NewEventAt(eventType, streamID string, data any, at time.Time) Event {
	return BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Stream:    streamID,
		EventData: data,
		EventTime: at,
	}
}

// stamp copies event into a BaseEvent placed at version of streamID
func stamp(event Event, streamID string, version int) BaseEvent {
	id := event.ID()
	if id == "" {
		id = uuid.NewString()
	}
	return BaseEvent{
		EventID:      id,
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: version,
	}
}
