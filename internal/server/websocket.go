package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"family-feud/internal/game"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait       = 5 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	maxMessageBytes = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type stateFrame struct {
	Type  string        `json:"type"`
	State game.Snapshot `json:"state"`
}

type welcomeFrame struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// wsClient serializes writes to one connection.
type wsClient struct {
	conn     *websocket.Conn
	playerID string
	mu       sync.Mutex
	done     chan struct{}
	once     sync.Once
}

func newWSClient(conn *websocket.Conn, playerID string) *wsClient {
	return &wsClient{conn: conn, playerID: playerID, done: make(chan struct{})}
}

func (c *wsClient) Send(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsClient) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[string]*wsClient
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[string]*wsClient),
	}
}

// Add registers a client, closing any older connection of the same player.
func (h *wsHub) Add(gameID string, client *wsClient) {
	h.mu.Lock()
	group := h.groups[gameID]
	if group == nil {
		group = make(map[string]*wsClient)
		h.groups[gameID] = group
	}
	previous := group[client.playerID]
	group[client.playerID] = client
	h.mu.Unlock()
	if previous != nil {
		previous.Close()
	}
}

// Remove reports whether client was still the registered connection for
// its player.
func (h *wsHub) Remove(gameID string, client *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Close()
	group := h.groups[gameID]
	if group == nil || group[client.playerID] != client {
		return false
	}
	delete(group, client.playerID)
	if len(group) == 0 {
		delete(h.groups, gameID)
	}
	return true
}

func (h *wsHub) clients(gameID string) []*wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[gameID]
	clients := make([]*wsClient, 0, len(group))
	for _, client := range group {
		clients = append(clients, client)
	}
	return clients
}

func (h *wsHub) Count(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[gameID])
}

// Broadcast sends every client its own projection of snap.
func (h *wsHub) Broadcast(gameID string, snap game.Snapshot) {
	for _, client := range h.clients(gameID) {
		frame := stateFrame{Type: "state", State: snap.ForViewer(client.playerID)}
		if err := client.Send(frame); err != nil {
			h.sendFailed(gameID, client, err)
		}
	}
}

// sendFailed closes the connection only. The client's read loop then
// unregisters it and marks the player disconnected.
func (h *wsHub) sendFailed(gameID string, client *wsClient, err error) {
	log.Debug().Err(err).Str("game_id", gameID).Str("player_id", client.playerID).Msg("ws send failed")
	client.Close()
}

func (h *wsHub) CloseGame(gameID, message string) {
	h.mu.Lock()
	group := h.groups[gameID]
	delete(h.groups, gameID)
	h.mu.Unlock()
	for _, client := range group {
		_ = client.Send(errorFrame{Type: "error", Message: message})
		client.Close()
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	sess, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	query := r.URL.Query()
	resume := query.Get("player_id") != ""

	var playerID, accountID, name, token string
	if resume {
		token = query.Get("token")
		found, ok := s.tokens.Resolve(token)
		if !ok || found.GameID != gameID || found.PlayerID != query.Get("player_id") {
			writeError(w, http.StatusUnauthorized, "invalid reconnect token")
			return
		}
		playerID = found.PlayerID
	} else {
		var err error
		name, err = game.ValidateName(query.Get("name"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		accountID = strings.TrimSpace(query.Get("account_id"))
		if accountID == "" {
			accountID = newGuestID()
		}
		playerID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := newWSClient(conn, playerID)

	ctx, cancel := context.WithTimeout(context.Background(), sessionCallTimeout)
	defer cancel()
	if resume {
		err = sess.Connect(ctx, playerID)
	} else {
		_, err = sess.Join(ctx, playerID, accountID, name)
		if err == nil {
			token = s.tokens.Issue(gameID, playerID)
		}
	}
	if err != nil {
		_ = client.Send(errorFrame{Type: "error", Message: joinErrorMessage(err)})
		client.Close()
		return
	}

	log.Info().Str("game_id", gameID).Str("player_id", playerID).Bool("resume", resume).Str("remote", r.RemoteAddr).Msg("ws connected")
	_ = client.Send(welcomeFrame{Type: "welcome", PlayerID: playerID, Token: token})
	s.ws.Add(gameID, client)
	_ = client.Send(stateFrame{Type: "state", State: sess.Snapshot().ForViewer(playerID)})
	go s.pingWS(client)
	go s.readWS(sess, client)
}

func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrJoinRejected):
		return "game is full or already started"
	case errors.Is(err, game.ErrUnknownPlayer):
		return "seat no longer available"
	case errors.Is(err, game.ErrSessionClosed):
		return "game is closed"
	}
	return "unable to join game"
}

func (s *Server) pingWS(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-client.done:
			return
		case <-ticker.C:
			if err := client.ping(); err != nil {
				client.Close()
				return
			}
		}
	}
}

func (s *Server) readWS(sess *game.Session, client *wsClient) {
	gameID := sess.ID()
	defer func() {
		if !s.ws.Remove(gameID, client) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), sessionCallTimeout)
		defer cancel()
		if err := sess.Disconnect(ctx, client.playerID); err != nil && !errors.Is(err, game.ErrSessionClosed) {
			log.Error().Err(err).Str("game_id", gameID).Str("player_id", client.playerID).Msg("disconnect")
		}
		log.Info().Str("game_id", gameID).Str("player_id", client.playerID).Msg("ws disconnected")
	}()

	conn := client.conn
	conn.SetReadLimit(maxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		var msg game.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Str("player_id", client.playerID).Msg("unreadable ws frame")
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), sessionCallTimeout)
		_, err = sess.Submit(ctx, client.playerID, msg)
		cancel()
		if errors.Is(err, game.ErrSessionClosed) {
			return
		}
	}
}
