package server

import (
	"context"
	"net/http"
	"time"

	"family-feud/internal/config"
	"family-feud/internal/directory"
	"family-feud/internal/game"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type Server struct {
	store     *Store
	db        *gorm.DB
	ws        *wsHub
	cfg       config.Config
	rules     game.Rules
	tokens    *tokenStore
	dir       directory.Directory
	sink      game.EventSink
	questions game.QuestionSource
	clock     clockwork.Clock
}

type Option func(*Server)

func WithDirectory(dir directory.Directory) Option {
	return func(s *Server) {
		if dir != nil {
			s.dir = dir
		}
	}
}

func WithEventSink(sink game.EventSink) Option {
	return func(s *Server) {
		s.sink = sink
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithQuestionSource(source game.QuestionSource) Option {
	return func(s *Server) {
		if source != nil {
			s.questions = source
		}
	}
}

// New builds a server. A nil conn keeps everything in memory: built-in
// questions, no leaderboard and no archive.
func New(conn *gorm.DB, cfg config.Config, opts ...Option) *Server {
	s := &Server{
		store:  NewStore(),
		db:     conn,
		ws:     newWSHub(),
		cfg:    cfg,
		rules:  rulesFromConfig(cfg),
		tokens: newTokenStore(),
		dir:    directory.NewMemory(),
		clock:  clockwork.NewRealClock(),
	}
	if conn != nil {
		s.questions = newQuestionBank(conn)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func rulesFromConfig(cfg config.Config) game.Rules {
	return game.Rules{
		FaceoffAnswerSeconds:    cfg.FaceoffAnswerSeconds,
		FastMoneyPlayer1Seconds: cfg.FastMoneyPlayer1Seconds,
		FastMoneyPlayer2Seconds: cfg.FastMoneyPlayer2Seconds,
		MaxPlayers:              cfg.MaxPlayers,
		FastMoneyRule:           game.ThresholdRule{Threshold: cfg.FastMoneyWinThreshold},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	mux.HandleFunc("GET /api/games/{id}/qr.png", s.handleGameQR)
	mux.HandleFunc("GET /api/v1/rooms/find/{code}", s.handleFindRoom)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/leaderboard/{accountID}", s.handlePlayerRank)
	mux.HandleFunc("GET /ws/games/{id}", s.handleWebsocket)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return requestLogger(c.Handler(mux))
}

// Run reaps idle games until ctx is done.
func (s *Server) Run(ctx context.Context) {
	idle := time.Duration(s.cfg.SessionIdleMinutes) * time.Minute
	if idle <= 0 {
		<-ctx.Done()
		return
	}
	ticker := s.clock.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.reapIdle(idle)
		}
	}
}

// Shutdown closes every live game.
func (s *Server) Shutdown() {
	for _, sess := range s.store.All() {
		s.dropGame(sess, "server shutting down")
	}
}
