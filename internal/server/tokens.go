package server

import (
	"sync"

	"github.com/google/uuid"
)

// tokenStore holds reconnect tokens. A token resumes exactly one player seat
// in one game.
type tokenStore struct {
	mu     sync.Mutex
	tokens map[string]seat
}

type seat struct {
	GameID   string
	PlayerID string
}

func newTokenStore() *tokenStore {
	return &tokenStore{tokens: make(map[string]seat)}
}

func (t *tokenStore) Issue(gameID, playerID string) string {
	token := uuid.NewString()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[token] = seat{GameID: gameID, PlayerID: playerID}
	return token
}

func (t *tokenStore) Resolve(token string) (seat, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	found, ok := t.tokens[token]
	return found, ok
}

func (t *tokenStore) RevokeGame(gameID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for token, found := range t.tokens {
		if found.GameID == gameID {
			delete(t.tokens, token)
		}
	}
}
