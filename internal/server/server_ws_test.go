package server

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"family-feud/internal/game"

	"github.com/gorilla/websocket"
)

func TestWebsocketJoinMakesFirstPlayerHost(t *testing.T) {
	_, ts := newTestApp(t)
	gameID := createGame(t, ts)

	hostConn, host := joinGame(t, ts, gameID, "Host")
	playerConn, player := joinGame(t, ts, gameID, "Ada")
	_ = playerConn

	snap := waitForState(t, hostConn, func(s game.Snapshot) bool { return len(s.Players) == 2 })
	if snap.HostID != host.PlayerID {
		t.Fatalf("expected host %s, got %s", host.PlayerID, snap.HostID)
	}
	view, ok := snap.Player(player.PlayerID)
	if !ok || view.TeamID != game.Team1 {
		t.Fatalf("expected Ada on team1, got %+v", view)
	}
}

func TestWebsocketRejectsBadName(t *testing.T) {
	_, ts := newTestApp(t)
	gameID := createGame(t, ts)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, gameID, url.Values{"name": {"   "}}), nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %v", resp)
	}
}

func TestWebsocketUnknownGame(t *testing.T) {
	_, ts := newTestApp(t)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "game-404", url.Values{"name": {"Ada"}}), nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %v", resp)
	}
}

func TestWebsocketResumeWithToken(t *testing.T) {
	_, ts := newTestApp(t)
	gameID := createGame(t, ts)

	hostConn, _ := joinGame(t, ts, gameID, "Host")
	playerConn, player := joinGame(t, ts, gameID, "Ada")
	_ = playerConn.Close()

	waitForState(t, hostConn, func(s game.Snapshot) bool {
		view, ok := s.Player(player.PlayerID)
		return ok && !view.IsConnected
	})

	resumed := dial(t, wsURL(ts, gameID, url.Values{"player_id": {player.PlayerID}, "token": {player.Token}}))
	welcome := readFrame(t, resumed)
	if welcome.Type != "welcome" || welcome.PlayerID != player.PlayerID || welcome.Token != player.Token {
		t.Fatalf("unexpected welcome %+v", welcome)
	}
	waitForState(t, hostConn, func(s game.Snapshot) bool {
		view, ok := s.Player(player.PlayerID)
		return ok && view.IsConnected
	})
}

func TestWebsocketResumeRejectsBadToken(t *testing.T) {
	_, ts := newTestApp(t)
	gameID := createGame(t, ts)
	_, player := joinGame(t, ts, gameID, "Ada")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, gameID, url.Values{"player_id": {player.PlayerID}, "token": {"nope"}}), nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %v", resp)
	}
}

func TestWebsocketGameFlow(t *testing.T) {
	_, ts := newTestApp(t)
	gameID := createGame(t, ts)

	hostConn, _ := joinGame(t, ts, gameID, "Host")
	adaConn, _ := joinGame(t, ts, gameID, "Ada")
	bobConn, _ := joinGame(t, ts, gameID, "Bob")
	waitForState(t, hostConn, func(s game.Snapshot) bool { return len(s.Players) == 3 })

	send(t, adaConn, game.MsgStartGame, nil)
	send(t, hostConn, game.MsgStartGame, nil)

	hostView := waitForState(t, hostConn, func(s game.Snapshot) bool { return s.Phase == game.PhaseFaceoff })
	if hostView.Round != 1 || !hostView.Buzzer.Active {
		t.Fatalf("expected round 1 with open buzzer, got round %d", hostView.Round)
	}
	for _, slot := range hostView.Board.Slots {
		if slot.Text == "" {
			t.Fatalf("host should see every answer")
		}
	}

	bobView := waitForState(t, bobConn, func(s game.Snapshot) bool { return s.Phase == game.PhaseFaceoff })
	for _, slot := range bobView.Board.Slots {
		if slot.Text != "" {
			t.Fatalf("players should not see unrevealed answers, got %q", slot.Text)
		}
	}
}

func TestWebsocketSendFailureMarksPlayerDisconnected(t *testing.T) {
	srv, ts := newTestApp(t)
	gameID := createGame(t, ts)

	hostConn, _ := joinGame(t, ts, gameID, "Host")
	_, player := joinGame(t, ts, gameID, "Ada")
	waitForState(t, hostConn, func(s game.Snapshot) bool { return len(s.Players) == 2 })

	var ada *wsClient
	for _, client := range srv.ws.clients(gameID) {
		if client.playerID == player.PlayerID {
			ada = client
		}
	}
	if ada == nil {
		t.Fatalf("expected Ada registered in the hub")
	}
	srv.ws.sendFailed(gameID, ada, errors.New("broken pipe"))

	snap := waitForState(t, hostConn, func(s game.Snapshot) bool {
		view, ok := s.Player(player.PlayerID)
		return ok && !view.IsConnected
	})
	if _, ok := snap.Player(player.PlayerID); !ok {
		t.Fatalf("expected Ada to keep her seat during the grace period")
	}
	if srv.ws.Count(gameID) != 1 {
		t.Fatalf("expected only the host connection left, got %d", srv.ws.Count(gameID))
	}
}
