package game

import "testing"

func TestBoardRevealRecomputesPoints(t *testing.T) {
	var b Board
	b.Load(question("q", "dog", 30, "cat", 20, "fish", 10), 2)

	if !b.Reveal(1) || b.PointsOnBoard != 40 {
		t.Fatalf("expected 40 after revealing cat at x2, got %d", b.PointsOnBoard)
	}
	if b.Reveal(1) {
		t.Fatalf("expected second reveal to fail")
	}
	if b.Reveal(7) || b.Reveal(-1) {
		t.Fatalf("expected out of range reveal to fail")
	}
	b.Reveal(0)
	b.Reveal(2)
	if !b.AllRevealed() || b.PointsOnBoard != 120 {
		t.Fatalf("expected all revealed with 120, got %d", b.PointsOnBoard)
	}
}

func TestBoardStrikesClamp(t *testing.T) {
	var b Board
	for i := 0; i < 5; i++ {
		b.AddStrike()
	}
	if b.Strikes != MaxStrikes {
		t.Fatalf("expected %d strikes, got %d", MaxStrikes, b.Strikes)
	}
}

func TestBoardMatchIgnoresRevealed(t *testing.T) {
	var b Board
	b.Load(question("q", "Ice Cream", 30, "cake", 20), 1)
	if got := b.Match("  ice   CREAM "); got != 0 {
		t.Fatalf("expected match at 0, got %d", got)
	}
	b.Reveal(0)
	if got := b.Match("ice cream"); got != noMatch {
		t.Fatalf("expected revealed slot not to match, got %d", got)
	}
	if got := b.Match(""); got != noMatch {
		t.Fatalf("expected empty answer not to match")
	}
}

func TestBuzzerFirstAcceptedLocks(t *testing.T) {
	var b Buzzer
	if b.RecordBuzz("p1", 1) {
		t.Fatalf("expected closed buzzer to reject")
	}
	b.Open()
	if !b.RecordBuzz("p2", 10) {
		t.Fatalf("expected first buzz to be accepted")
	}
	if b.RecordBuzz("p1", 5) {
		t.Fatalf("expected buzz after lock to be dropped")
	}
	if b.WinnerID != "p2" || b.Active || !b.Locked {
		t.Fatalf("unexpected buzzer state %+v", b)
	}
	b.Open()
	if b.WinnerID != "" || len(b.Timestamps) != 0 {
		t.Fatalf("expected open to clear the previous winner")
	}
}

func TestEventLogTrimsOldest(t *testing.T) {
	log := NewEventLog(MaxEventLogSize)
	for i := 0; i < MaxEventLogSize+25; i++ {
		log.Append(GameEvent{Timestamp: int64(i)})
	}
	if log.Len() != MaxEventLogSize {
		t.Fatalf("expected %d entries, got %d", MaxEventLogSize, log.Len())
	}
	entries := log.Entries()
	if entries[0].Timestamp != 25 || entries[len(entries)-1].Timestamp != int64(MaxEventLogSize+24) {
		t.Fatalf("expected oldest entries dropped, got first=%d last=%d", entries[0].Timestamp, entries[len(entries)-1].Timestamp)
	}
	tail := log.Tail(3)
	if len(tail) != 3 || tail[2].Timestamp != int64(MaxEventLogSize+24) {
		t.Fatalf("unexpected tail %+v", tail)
	}
}

func TestShuffleTeamsBalances(t *testing.T) {
	s := newLobby(t, DefaultRules())
	s.AddPlayer("a3", "", "a3", false, testTime)
	s.ShuffleTeams(nil)

	one, two := len(s.team(Team1).Members), len(s.team(Team2).Members)
	if one+two != 5 || one-two > 1 || two-one > 1 {
		t.Fatalf("expected balanced teams, got %d/%d", one, two)
	}
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("unexpected invariant error: %v", err)
	}
}

func TestHostLeavingLobbyPromotes(t *testing.T) {
	s := newLobby(t, DefaultRules())
	s.RemovePlayer("host", testTime)
	if s.HostID != "a1" || !s.Players["a1"].IsHost {
		t.Fatalf("expected a1 promoted, got %q", s.HostID)
	}
}

func TestHostLeavingMidGameLeavesNoHost(t *testing.T) {
	s := newLobby(t, DefaultRules())
	startGame(t, s)
	winFaceoff(t, s)
	if s.Phase != PhasePlay {
		t.Fatalf("expected play, got %s", s.Phase)
	}

	s.RemovePlayer("host", testTime)
	if s.HostID != "" {
		t.Fatalf("expected nobody promoted outside the lobby, got %q", s.HostID)
	}
	for id, player := range s.Players {
		if player.IsHost {
			t.Fatalf("expected no host flag, %s has it", id)
		}
	}

	for _, msg := range []MessageType{MsgAddStrike, MsgEndRound, MsgNextRound, MsgEndGame} {
		if apply(t, s, Action{Type: msg, SenderID: "a1"}) {
			t.Fatalf("expected %s to be dropped without a host", msg)
		}
	}
	if s.Phase != PhasePlay || s.Board.Strikes != 0 {
		t.Fatalf("expected untouched play state, got %s with %d strikes", s.Phase, s.Board.Strikes)
	}
}

func TestOutOfRangeIndexesAreDropped(t *testing.T) {
	s := newLobby(t, DefaultRules())
	startGame(t, s)
	for _, index := range []int{-1, len(s.Board.Slots)} {
		if apply(t, s, Action{Type: MsgRevealAnswer, SenderID: "host", Index: index}) {
			t.Fatalf("expected reveal of slot %d to be dropped", index)
		}
	}
}
