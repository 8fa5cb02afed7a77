package events

import (
	"encoding/json"
	"fmt"
	"time"

	"family-feud/internal/game"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const subjectPrefix = "feud.games"

// Subject is the NATS subject carrying one game's audit events.
func Subject(sessionID string) string {
	return fmt.Sprintf("%s.%s.events", subjectPrefix, sessionID)
}

type NATSConfig struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

func ConnectNATS(cfg NATSConfig) (*nats.Conn, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	opts := []nats.Option{
		nats.Name("family-feud"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// NATSSink publishes each event as its own message. The NATS client buffers
// outgoing messages, so Publish does not wait on the network.
type NATSSink struct {
	conn *nats.Conn
}

func NewNATSSink(conn *nats.Conn) *NATSSink {
	return &NATSSink{conn: conn}
}

type envelope struct {
	SessionID string `json:"sessionId"`
	game.GameEvent
}

func (s *NATSSink) Publish(sessionID string, events []game.GameEvent) {
	if s == nil || s.conn == nil {
		return
	}
	subject := Subject(sessionID)
	for _, event := range events {
		data, err := json.Marshal(envelope{SessionID: sessionID, GameEvent: event})
		if err != nil {
			log.Warn().Err(err).Str("type", event.Type).Msg("encode event")
			continue
		}
		if err := s.conn.Publish(subject, data); err != nil {
			log.Error().Err(err).Str("game_id", sessionID).Str("type", event.Type).Msg("publish event")
			return
		}
	}
}
