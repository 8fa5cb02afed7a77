package server

import (
	"context"
	"time"

	"family-feud/internal/game"

	"github.com/rs/zerolog/log"
)

const sessionCallTimeout = 5 * time.Second

func (s *Server) createGame(ctx context.Context) *game.Session {
	sess := s.store.CreateGame(func(id, code string) *game.Session {
		opts := game.SessionOptions{
			ID:             id,
			Code:           code,
			Rules:          s.rules,
			Clock:          s.clock,
			Questions:      s.questions,
			Sink:           s.sink,
			ReconnectGrace: time.Duration(s.cfg.ReconnectGraceSeconds) * time.Second,
			Publish: func(snap game.Snapshot) {
				s.ws.Broadcast(id, snap)
			},
		}
		if s.db != nil {
			opts.Results = &resultsRecorder{conn: s.db}
		}
		var sess *game.Session
		opts.OnFail = func(err error) {
			go s.dropGame(sess, "game closed after an internal error")
		}
		sess = game.NewSession(opts)
		return sess
	})
	sess.Start(context.Background())
	if err := s.dir.Register(ctx, sess.Code(), sess.ID()); err != nil {
		log.Error().Err(err).Str("game_id", sess.ID()).Msg("register room code")
	}
	log.Info().Str("game_id", sess.ID()).Str("join_code", sess.Code()).Msg("game created")
	return sess
}

// dropGame closes a session and forgets everything the server holds for it.
func (s *Server) dropGame(sess *game.Session, reason string) {
	if sess == nil {
		return
	}
	if _, err := s.store.RemoveGame(sess.ID()); err != nil {
		return
	}
	sess.Close()
	s.tokens.RevokeGame(sess.ID())
	s.ws.CloseGame(sess.ID(), reason)
	ctx, cancel := context.WithTimeout(context.Background(), sessionCallTimeout)
	defer cancel()
	if err := s.dir.Remove(ctx, sess.Code()); err != nil {
		log.Error().Err(err).Str("game_id", sess.ID()).Msg("remove room code")
	}
	log.Info().Str("game_id", sess.ID()).Str("reason", reason).Msg("game dropped")
}

// reapIdle drops games nobody is connected to that have seen no activity
// for longer than idle.
func (s *Server) reapIdle(idle time.Duration) int {
	now := s.clock.Now()
	reaped := 0
	for _, sess := range s.store.All() {
		if s.ws.Count(sess.ID()) > 0 {
			continue
		}
		if now.Sub(sess.LastActivity()) < idle {
			continue
		}
		s.dropGame(sess, "idle")
		reaped++
	}
	return reaped
}
