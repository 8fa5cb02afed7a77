package game

import (
	"encoding/json"
	"time"
)

// GameEvent is one audit entry. Data is an opaque JSON payload.
type GameEvent struct {
	Timestamp int64           `json:"timestamp"`
	Type      string          `json:"type"`
	PlayerID  string          `json:"playerId"`
	TeamID    TeamID          `json:"teamId"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EventLog is a fixed-capacity ring of the most recent events. It is
// observational only; nothing reads it to decide a transition.
type EventLog struct {
	entries []GameEvent
	start   int
	size    int
}

func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = MaxEventLogSize
	}
	return &EventLog{entries: make([]GameEvent, capacity)}
}

// Append adds an event, overwriting the oldest one when full.
func (l *EventLog) Append(event GameEvent) {
	capacity := len(l.entries)
	if l.size < capacity {
		l.entries[(l.start+l.size)%capacity] = event
		l.size++
		return
	}
	l.entries[l.start] = event
	l.start = (l.start + 1) % capacity
}

func (l *EventLog) Len() int {
	return l.size
}

// Entries returns a copy of the retained events, oldest first.
func (l *EventLog) Entries() []GameEvent {
	return l.Tail(l.size)
}

// Tail returns a copy of the newest n events, oldest first.
func (l *EventLog) Tail(n int) []GameEvent {
	if n > l.size {
		n = l.size
	}
	if n <= 0 {
		return []GameEvent{}
	}
	out := make([]GameEvent, 0, n)
	capacity := len(l.entries)
	for i := l.size - n; i < l.size; i++ {
		out = append(out, l.entries[(l.start+i)%capacity])
	}
	return out
}

func (s *State) logEvent(at time.Time, eventType, playerID string, teamID TeamID, data map[string]any) {
	event := GameEvent{
		Timestamp: s.nowMillis(at),
		Type:      eventType,
		PlayerID:  playerID,
		TeamID:    teamID,
	}
	if len(data) > 0 {
		if raw, err := json.Marshal(data); err == nil {
			event.Data = raw
		}
	}
	s.Events.Append(event)
	s.emitted = append(s.emitted, event)
}

// DrainEvents returns events logged since the last drain.
func (s *State) DrainEvents() []GameEvent {
	out := s.emitted
	s.emitted = nil
	return out
}
