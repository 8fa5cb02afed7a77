package events

import (
	"context"
	"sync"
	"time"

	"family-feud/internal/db"
	"family-feud/internal/game"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultArchiveBuffer = 256

type batch struct {
	sessionID string
	events    []game.GameEvent
}

// Archive writes audit events to the game_events table from a single worker
// goroutine. Batches are dropped when the buffer is full.
type Archive struct {
	conn    *gorm.DB
	queue   chan batch
	done    chan struct{}
	once    sync.Once
	dropped int
	mu      sync.Mutex
}

func NewArchive(conn *gorm.DB, buffer int) *Archive {
	if buffer <= 0 {
		buffer = defaultArchiveBuffer
	}
	return &Archive{
		conn:  conn,
		queue: make(chan batch, buffer),
		done:  make(chan struct{}),
	}
}

func (a *Archive) Publish(sessionID string, events []game.GameEvent) {
	if len(events) == 0 {
		return
	}
	select {
	case a.queue <- batch{sessionID: sessionID, events: events}:
	default:
		a.mu.Lock()
		a.dropped++
		dropped := a.dropped
		a.mu.Unlock()
		log.Warn().Str("game_id", sessionID).Int("dropped", dropped).Msg("event archive full")
	}
}

// Run writes queued batches until ctx is done or Close is called, then
// flushes what is left.
func (a *Archive) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			a.drain()
			return
		case <-a.done:
			a.drain()
			return
		case b := <-a.queue:
			a.write(ctx, b)
		}
	}
}

func (a *Archive) drain() {
	for {
		select {
		case b := <-a.queue:
			a.write(context.Background(), b)
		default:
			return
		}
	}
}

func (a *Archive) Close() {
	a.once.Do(func() { close(a.done) })
}

func (a *Archive) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

func (a *Archive) write(ctx context.Context, b batch) {
	if a.conn == nil {
		return
	}
	records := toRecords(b.sessionID, b.events)
	if err := a.conn.WithContext(ctx).Create(&records).Error; err != nil {
		log.Error().Err(err).Str("game_id", b.sessionID).Int("count", len(records)).Msg("archive events")
	}
}

func toRecords(sessionID string, events []game.GameEvent) []db.Event {
	records := make([]db.Event, 0, len(events))
	for _, event := range events {
		record := db.Event{
			SessionID:  sessionID,
			Type:       event.Type,
			PlayerID:   event.PlayerID,
			TeamID:     string(event.TeamID),
			OccurredAt: time.UnixMilli(event.Timestamp).UTC(),
		}
		if len(event.Data) > 0 {
			record.Payload = datatypes.JSON(event.Data)
		}
		records = append(records, record)
	}
	return records
}
