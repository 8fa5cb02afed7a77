// Package directory maps short room codes to game ids.
package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("room not found")

// Directory resolves human-entered room codes. Codes are case-insensitive.
type Directory interface {
	Register(ctx context.Context, code, gameID string) error
	Lookup(ctx context.Context, code string) (string, error)
	Remove(ctx context.Context, code string) error
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type Memory struct {
	mu    sync.RWMutex
	rooms map[string]string
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]string)}
}

func (m *Memory) Register(_ context.Context, code, gameID string) error {
	code = normalizeCode(code)
	if code == "" || gameID == "" {
		return errors.New("code and game id are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[code] = gameID
	return nil
}

func (m *Memory) Lookup(_ context.Context, code string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gameID, ok := m.rooms[normalizeCode(code)]
	if !ok {
		return "", ErrNotFound
	}
	return gameID, nil
}

func (m *Memory) Remove(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, normalizeCode(code))
	return nil
}
