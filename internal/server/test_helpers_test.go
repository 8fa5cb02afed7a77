package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"family-feud/internal/config"
	"family-feud/internal/game"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newTestApp(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(nil, config.Default(), opts...)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
	})
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func createGameWithCode(t *testing.T, ts *httptest.Server) (string, string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/games", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["game_id"].(string), body["join_code"].(string)
}

func createGame(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	gameID, _ := createGameWithCode(t, ts)
	return gameID
}

type frame struct {
	Type     string        `json:"type"`
	PlayerID string        `json:"playerId"`
	Token    string        `json:"token"`
	Message  string        `json:"message"`
	State    game.Snapshot `json:"state"`
}

func wsURL(ts *httptest.Server, gameID string, query url.Values) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/" + gameID + "?" + query.Encode()
}

func dial(t *testing.T, target string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read websocket frame: %v", err)
	}
	return f
}

// joinGame dials a fresh seat and consumes the welcome and first state
// frames.
func joinGame(t *testing.T, ts *httptest.Server, gameID, name string) (*websocket.Conn, frame) {
	t.Helper()
	conn := dial(t, wsURL(ts, gameID, url.Values{"name": {name}}))
	welcome := readFrame(t, conn)
	if welcome.Type != "welcome" || welcome.PlayerID == "" || welcome.Token == "" {
		t.Fatalf("expected welcome frame, got %+v", welcome)
	}
	if state := readFrame(t, conn); state.Type != "state" {
		t.Fatalf("expected state frame, got %s", state.Type)
	}
	return conn, welcome
}

// waitForState reads frames until one satisfies match.
func waitForState(t *testing.T, conn *websocket.Conn, match func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f := readFrame(t, conn)
		if f.Type == "state" && match(f.State) {
			return f.State
		}
	}
	t.Fatalf("state not reached before deadline")
	return game.Snapshot{}
}

func send(t *testing.T, conn *websocket.Conn, msgType game.MessageType, payload any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write websocket message: %v", err)
	}
}

func configWithThreshold(threshold int) config.Config {
	cfg := config.Default()
	cfg.FastMoneyWinThreshold = threshold
	return cfg
}
