package game

import (
	"encoding/json"
	"testing"
)

func TestSnapshotIsDetached(t *testing.T) {
	s := newLobby(t, DefaultRules())
	startGame(t, s)
	snap := s.Snapshot()

	mustApply(t, s, Action{Type: MsgBuzz, SenderID: "a1"})
	mustApply(t, s, answer("a1", "eggs"))

	if snap.Board.Slots[0].Revealed || snap.Buzzer.WinnerID != "" || len(snap.Buzzer.Timestamps) != 0 {
		t.Fatalf("expected earlier snapshot to be unaffected by later mutations")
	}
}

func TestForViewerHidesUnrevealedAnswers(t *testing.T) {
	s := newLobby(t, DefaultRules())
	startGame(t, s)
	mustApply(t, s, Action{Type: MsgBuzz, SenderID: "a1"})
	mustApply(t, s, answer("a1", "eggs"))
	snap := s.Snapshot()

	host := snap.ForViewer("host")
	if host.Board.Slots[1].Text != "toast" {
		t.Fatalf("expected host to see every answer")
	}
	player := snap.ForViewer("b1")
	if player.Board.Slots[0].Text != "eggs" {
		t.Fatalf("expected revealed answer to stay visible")
	}
	if player.Board.Slots[1].Text != "" || player.Board.Slots[1].Points != 0 {
		t.Fatalf("expected unrevealed answer hidden, got %+v", player.Board.Slots[1])
	}
	if snap.Board.Slots[1].Text != "toast" {
		t.Fatalf("expected projection not to modify the source snapshot")
	}
}

func TestForViewerHidesFirstFastMoneyPlayer(t *testing.T) {
	s := enterFastMoney(t, DefaultRules())
	playFastMoneyTurn(t, s, "a1", []string{"top0", "top1", "top2", "top3", "top4"})
	snap := s.Snapshot()

	if got := snap.ForViewer("a2").FastMoney.Player1Answers[0].Answer; got != "" {
		t.Fatalf("expected player 2 not to see player 1's answers, got %q", got)
	}
	if got := snap.ForViewer("b1").FastMoney.Player1Answers[0].Answer; got != "top0" {
		t.Fatalf("expected audience to see player 1's answers, got %q", got)
	}
}

func TestForViewerTrimsEvents(t *testing.T) {
	s := newLobby(t, DefaultRules())
	startGame(t, s)
	for i := 0; i < 20; i++ {
		s.logEvent(testTime, "note", "", NoTeam, map[string]any{"n": i})
	}
	snap := s.Snapshot()
	if len(snap.Events) <= viewerEventTail {
		t.Fatalf("expected more than %d events, got %d", viewerEventTail, len(snap.Events))
	}
	if got := len(snap.ForViewer("a1").Events); got != viewerEventTail {
		t.Fatalf("expected %d events for players, got %d", viewerEventTail, got)
	}
	if got := len(snap.ForViewer("host").Events); got != len(snap.Events) {
		t.Fatalf("expected host to see all events, got %d", got)
	}
}

func TestSnapshotJSONFields(t *testing.T) {
	s := newLobby(t, DefaultRules())
	startGame(t, s)
	data, err := json.Marshal(s.Snapshot().ForViewer("a1"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"version", "phase", "players", "teams", "board", "buzzer", "faceoff", "fastMoney", "timer"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected %q in snapshot json", key)
		}
	}
	players := decoded["players"].([]any)
	if _, leaked := players[0].(map[string]any)["AccountID"]; leaked {
		t.Fatalf("expected account ids to stay server-side")
	}
}
