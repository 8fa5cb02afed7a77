package game

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrJoinRejected  = errors.New("join rejected")
	ErrUnknownPlayer = errors.New("unknown player")
)

const (
	recentMessageWindow  = 64
	recordResultsTimeout = 10 * time.Second
)

// SessionOptions wires a Session to its collaborators. Nil collaborators are
// replaced with no-op or built-in implementations.
type SessionOptions struct {
	ID             string
	Code           string
	Rules          Rules
	Clock          clockwork.Clock
	Questions      QuestionSource
	Results        ResultsRecorder
	Sink           EventSink
	ReconnectGrace time.Duration
	// Publish receives every committed snapshot, in version order, from the
	// session goroutine. It must not call back into the session.
	Publish func(Snapshot)
	// OnFail is called once if the session is torn down by an invariant
	// violation.
	OnFail func(error)
}

// Session is the single writer for one game. Every mutation, including timer
// expiries, runs as a closure on the session goroutine.
type Session struct {
	id        string
	state     *State
	clock     clockwork.Clock
	questions QuestionSource
	results   ResultsRecorder
	sink      EventSink
	grace     time.Duration
	publish   func(Snapshot)
	onFail    func(error)

	inbox     chan func()
	quit      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once

	latest       atomic.Pointer[Snapshot]
	lastActivity atomic.Int64
	failure      atomic.Pointer[error]

	// owned by the session goroutine
	recent      map[string]*recentMessages
	graceTimers map[string]clockwork.Timer
	recorded    bool
}

type recentMessages struct {
	keys []string
	next int
}

func (r *recentMessages) seen(key string) bool {
	for _, existing := range r.keys {
		if existing == key {
			return true
		}
	}
	if len(r.keys) < recentMessageWindow {
		r.keys = append(r.keys, key)
		return false
	}
	r.keys[r.next] = key
	r.next = (r.next + 1) % recentMessageWindow
	return false
}

func NewSession(opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Questions == nil {
		opts.Questions = DefaultQuestions()
	}
	s := &Session{
		id:          opts.ID,
		state:       NewState(opts.Code, opts.Rules),
		clock:       opts.Clock,
		questions:   opts.Questions,
		results:     opts.Results,
		sink:        opts.Sink,
		grace:       opts.ReconnectGrace,
		publish:     opts.Publish,
		onFail:      opts.OnFail,
		inbox:       make(chan func(), 64),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		recent:      make(map[string]*recentMessages),
		graceTimers: make(map[string]clockwork.Timer),
	}
	snap := s.state.Snapshot()
	s.latest.Store(&snap)
	s.touch()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Code() string {
	return s.state.Code
}

// Start runs the session goroutine until ctx is done or Close is called.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.stopGraceTimers()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case fn := <-s.inbox:
			fn()
		}
	}
}

// Close stops the session goroutine. Pending calls fail with ErrSessionClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
}

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports the invariant violation that failed the session, if any.
func (s *Session) Err() error {
	if err := s.failure.Load(); err != nil {
		return *err
	}
	return nil
}

// Snapshot returns the latest committed snapshot without touching the
// session goroutine.
func (s *Session) Snapshot() Snapshot {
	return *s.latest.Load()
}

// LastActivity is the clock time of the last accepted call.
func (s *Session) LastActivity() time.Time {
	return time.UnixMilli(s.lastActivity.Load())
}

func (s *Session) touch() {
	s.lastActivity.Store(s.clock.Now().UnixMilli())
}

// do runs fn on the session goroutine and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func()) error {
	if s.Err() != nil {
		return ErrSessionClosed
	}
	reply := make(chan struct{})
	task := func() {
		defer close(reply)
		fn()
	}
	select {
	case s.inbox <- task:
	case <-s.done:
		return ErrSessionClosed
	case <-s.quit:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post enqueues fn without waiting. Used by timer callbacks.
func (s *Session) post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.quit:
	case <-s.done:
	}
}

// Join adds a player, or re-binds an existing player id. The first player
// to join becomes the host.
func (s *Session) Join(ctx context.Context, playerID, accountID, name string) (Snapshot, error) {
	var (
		snap   Snapshot
		joined bool
	)
	err := s.do(ctx, func() {
		isHost := len(s.state.Players) == 0 && s.state.HostID == ""
		_, joined = s.state.AddPlayer(playerID, accountID, name, isHost, s.clock.Now())
		if joined {
			s.stopGraceTimer(playerID)
		}
		s.commit(joined)
		snap = s.state.Snapshot()
	})
	if err != nil {
		return Snapshot{}, err
	}
	if !joined {
		return Snapshot{}, ErrJoinRejected
	}
	s.touch()
	return snap, nil
}

// Leave removes a player immediately.
func (s *Session) Leave(ctx context.Context, playerID string) error {
	return s.do(ctx, func() {
		s.stopGraceTimer(playerID)
		delete(s.recent, playerID)
		s.commit(s.state.RemovePlayer(playerID, s.clock.Now()))
	})
}

// Connect marks a known player as connected again.
func (s *Session) Connect(ctx context.Context, playerID string) error {
	var known bool
	err := s.do(ctx, func() {
		if _, known = s.state.Players[playerID]; !known {
			return
		}
		s.stopGraceTimer(playerID)
		s.commit(s.state.SetConnected(playerID, true))
	})
	if err == nil && !known {
		return ErrUnknownPlayer
	}
	return err
}

// Disconnect keeps the player's seat for the reconnect grace period. The
// player is removed if still disconnected when it expires.
func (s *Session) Disconnect(ctx context.Context, playerID string) error {
	return s.do(ctx, func() {
		if !s.state.SetConnected(playerID, false) {
			return
		}
		s.commit(true)
		if s.grace <= 0 {
			return
		}
		epoch := s.state.ConnEpoch(playerID)
		s.stopGraceTimer(playerID)
		s.graceTimers[playerID] = s.clock.AfterFunc(s.grace, func() {
			s.post(func() { s.expireGrace(playerID, epoch) })
		})
	})
}

func (s *Session) expireGrace(playerID string, epoch int) {
	player, ok := s.state.Players[playerID]
	if !ok || player.IsConnected || s.state.ConnEpoch(playerID) != epoch {
		return
	}
	delete(s.graceTimers, playerID)
	delete(s.recent, playerID)
	log.Info().Str("game_id", s.id).Str("player_id", playerID).Msg("reconnect grace expired")
	s.commit(s.state.RemovePlayer(playerID, s.clock.Now()))
}

func (s *Session) stopGraceTimer(playerID string) {
	if timer, ok := s.graceTimers[playerID]; ok {
		timer.Stop()
		delete(s.graceTimers, playerID)
	}
}

func (s *Session) stopGraceTimers() {
	for id, timer := range s.graceTimers {
		timer.Stop()
		delete(s.graceTimers, id)
	}
}

// Submit decodes and applies one client message. It reports whether the
// state changed. Malformed payloads return ErrMalformedPayload; illegal or
// duplicate messages are dropped and report false with a nil error.
func (s *Session) Submit(ctx context.Context, playerID string, msg Message) (bool, error) {
	msg.SenderID = playerID
	action, err := Decode(msg)
	if err != nil {
		log.Warn().Err(err).Str("game_id", s.id).Str("player_id", playerID).Msg("malformed message")
		return false, err
	}
	key := dedupeKey(msg)

	if action.Type == MsgStartGame {
		var legal, duplicate bool
		if err := s.do(ctx, func() {
			duplicate = s.isDuplicate(playerID, key)
			legal = !duplicate && s.state.Legal(action)
		}); err != nil {
			return false, err
		}
		if !legal {
			return false, nil
		}
		rounds, fast, err := s.questions.Questions(ctx, MaxRounds, FastMoneyQuestionCount)
		if err != nil {
			log.Error().Err(err).Str("game_id", s.id).Msg("load questions")
			return false, fmt.Errorf("load questions: %w", err)
		}
		action.Questions = rounds
		action.FastMoneyQuestions = fast
		key = ""
	}

	var changed bool
	err = s.do(ctx, func() {
		if s.isDuplicate(playerID, key) {
			log.Debug().Str("game_id", s.id).Str("player_id", playerID).Str("type", string(msg.Type)).Msg("duplicate message dropped")
			return
		}
		changed = s.state.Apply(action, s.clock.Now())
		if !changed {
			log.Debug().Str("game_id", s.id).Str("player_id", playerID).Str("type", string(msg.Type)).Str("phase", string(s.state.Phase)).Msg("message dropped")
		}
		s.commit(changed)
	})
	if err != nil {
		return false, err
	}
	s.touch()
	return changed, nil
}

func (s *Session) isDuplicate(playerID, key string) bool {
	if key == "" {
		return false
	}
	recent, ok := s.recent[playerID]
	if !ok {
		recent = &recentMessages{}
		s.recent[playerID] = recent
	}
	return recent.seen(key)
}

// dedupeKey identifies a message for idempotent retry. Messages without an
// id or base version are never deduplicated.
func dedupeKey(msg Message) string {
	if msg.ID != "" {
		return "id:" + msg.ID
	}
	if msg.BaseVersion == 0 {
		return ""
	}
	payload := bytes.TrimSpace(msg.Payload)
	return fmt.Sprintf("v:%s:%d:%s", msg.Type, msg.BaseVersion, payload)
}

func (s *Session) tick(gen uint64) {
	if !s.state.Tick(gen, s.clock.Now()) {
		return
	}
	s.commit(true)
}

// commit validates the state, publishes a new version if anything changed
// and schedules follow-up work.
func (s *Session) commit(changed bool) {
	if err := s.state.CheckInvariants(); err != nil {
		s.fail(err)
		return
	}
	events := s.state.DrainEvents()
	if !changed && len(events) == 0 {
		return
	}
	s.state.Version++
	if gen, ok := s.state.TakeTick(); ok {
		s.clock.AfterFunc(time.Second, func() {
			s.post(func() { s.tick(gen) })
		})
	}
	snap := s.state.Snapshot()
	s.latest.Store(&snap)

	if s.sink != nil && len(events) > 0 {
		s.sink.Publish(s.id, events)
	}
	if !s.state.Finished() {
		s.recorded = false
	} else if !s.recorded {
		s.recorded = true
		s.recordResults(GameResults{
			SessionID:  s.id,
			Code:       snap.Code,
			Winner:     snap.WinningTeam,
			EndReason:  snap.EndReason,
			Players:    snap.Players,
			Teams:      snap.Teams,
			FinishedAt: s.clock.Now(),
		})
	}
	if s.publish != nil {
		s.publish(snap)
	}
}

func (s *Session) recordResults(results GameResults) {
	if s.results == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordResultsTimeout)
		defer cancel()
		if err := s.results.RecordResults(ctx, results); err != nil {
			log.Error().Err(err).Str("game_id", s.id).Msg("record results")
			return
		}
		log.Info().Str("game_id", s.id).Str("winner", string(results.Winner)).Msg("results recorded")
	}()
}

func (s *Session) fail(err error) {
	if !s.failure.CompareAndSwap(nil, &err) {
		return
	}
	log.Error().Err(err).Str("game_id", s.id).Str("phase", string(s.state.Phase)).Msg("session failed")
	s.Close()
	if s.onFail != nil {
		s.onFail(err)
	}
}
