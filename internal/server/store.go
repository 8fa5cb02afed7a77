package server

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"family-feud/internal/game"
)

var errGameNotFound = errors.New("game not found")

type Store struct {
	mu     sync.Mutex
	nextID int
	games  map[string]*game.Session
	codes  map[string]string
}

func NewStore() *Store {
	return &Store{
		nextID: 1,
		games:  make(map[string]*game.Session),
		codes:  make(map[string]string),
	}
}

// CreateGame reserves a game id and an unused join code, then stores the
// session built for them.
func (s *Store) CreateGame(build func(id, code string) *game.Session) *game.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("game-%d", s.nextID)
	s.nextID++
	code := newJoinCode()
	for {
		if _, taken := s.codes[code]; !taken {
			break
		}
		code = newJoinCode()
	}
	sess := build(id, code)
	s.games[id] = sess
	s.codes[code] = id
	return sess
}

func (s *Store) GetGame(id string) (*game.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	return sess, ok
}

func (s *Store) FindGameByJoinCode(code string) (*game.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.codes[code]
	if !ok {
		return nil, false
	}
	sess, ok := s.games[id]
	return sess, ok
}

func (s *Store) RemoveGame(id string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, errGameNotFound
	}
	delete(s.games, id)
	delete(s.codes, sess.Code())
	return sess, nil
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// All returns the live sessions ordered by id.
func (s *Store) All() []*game.Session {
	s.mu.Lock()
	sessions := make([]*game.Session, 0, len(s.games))
	for _, sess := range s.games {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID() < sessions[j].ID()
	})
	return sessions
}
