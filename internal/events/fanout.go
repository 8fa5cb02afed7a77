package events

import "family-feud/internal/game"

// FanOut offers every batch to each sink in order.
type FanOut []game.EventSink

func (f FanOut) Publish(sessionID string, events []game.GameEvent) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(sessionID, events)
		}
	}
}
