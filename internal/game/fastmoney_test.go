package game

import "testing"

func enterFastMoney(t *testing.T, rules Rules) *State {
	t.Helper()
	s := newLobby(t, rules)
	startGame(t, s)
	for round := 1; round <= MaxRounds; round++ {
		winFaceoff(t, s)
		mustApply(t, s, Action{Type: MsgEndRound, SenderID: "host"})
		mustApply(t, s, Action{Type: MsgNextRound, SenderID: "host"})
	}
	if s.Phase != PhaseFastMoney {
		t.Fatalf("expected fast money, got %s", s.Phase)
	}
	mustApply(t, s, Action{Type: MsgSelectFastMoneyPlayers, SenderID: "host", Player1ID: "a1", Player2ID: "a2"})
	mustApply(t, s, Action{Type: MsgStartFastMoney, SenderID: "host"})
	return s
}

func playFastMoneyTurn(t *testing.T, s *State, playerID string, answers []string) {
	t.Helper()
	mustApply(t, s, Action{Type: MsgStartFastMoneyTimer, SenderID: "host"})
	for _, text := range answers {
		mustApply(t, s, Action{Type: MsgFastMoneyAnswer, SenderID: playerID, Answer: text})
	}
}

func revealAll(t *testing.T, s *State) {
	t.Helper()
	for num := 1; num <= 2; num++ {
		for qi := 0; qi < FastMoneyQuestionCount; qi++ {
			mustApply(t, s, Action{Type: MsgRevealFastMoneyAnswer, SenderID: "host", PlayerNum: num, QuestionIndex: qi})
		}
	}
}

func TestFastMoneyTurnsAndDuplicateRule(t *testing.T) {
	s := enterFastMoney(t, DefaultRules())

	if s.FastMoney.CurrentPlayer != 1 || len(s.FastMoney.Questions) != FastMoneyQuestionCount {
		t.Fatalf("expected player 1 with 5 questions, got %+v", s.FastMoney)
	}
	if apply(t, s, Action{Type: MsgFastMoneyAnswer, SenderID: "a1", Answer: "top0"}) {
		t.Fatalf("expected answer before the timer starts to be dropped")
	}

	playFastMoneyTurn(t, s, "a1", []string{"top0", "top1", "top2", "top3", "top4"})
	if !s.FastMoney.Player1Done || s.FastMoney.CurrentPlayer != 2 || s.FastMoney.QuestionIndex != 0 {
		t.Fatalf("expected hand-over to player 2, got %+v", s.FastMoney)
	}
	if s.Timer.Active || s.FastMoney.TimerSeconds != s.Rules.FastMoneyPlayer2Seconds {
		t.Fatalf("expected idle %ds timer for player 2", s.Rules.FastMoneyPlayer2Seconds)
	}
	if apply(t, s, Action{Type: MsgStartFastMoneyTimer, SenderID: "a1"}) {
		t.Fatalf("expected non-host timer start to be dropped")
	}

	playFastMoneyTurn(t, s, "a2", []string{"top0", "low1", "low2", "nothing", "low4"})
	if !s.FastMoney.Player2Done {
		t.Fatalf("expected player 2 done")
	}

	revealAll(t, s)
	if s.FastMoney.Player1Total != 300 {
		t.Fatalf("expected player 1 total 300, got %d", s.FastMoney.Player1Total)
	}
	if s.FastMoney.Player2Answers[0].Points != 0 {
		t.Fatalf("expected duplicate answer to score 0, got %d", s.FastMoney.Player2Answers[0].Points)
	}
	if s.FastMoney.Player2Total != 75 {
		t.Fatalf("expected player 2 total 75, got %d", s.FastMoney.Player2Total)
	}
	if apply(t, s, Action{Type: MsgRevealFastMoneyAnswer, SenderID: "host", PlayerNum: 1, QuestionIndex: 0}) {
		t.Fatalf("expected second reveal to be a no-op")
	}

	mustApply(t, s, Action{Type: MsgEndFastMoney, SenderID: "host"})
	if s.Phase != PhaseGameOver || s.WinningTeam != Team1 || s.EndReason != EndFastMoney {
		t.Fatalf("expected fast money win for team1, got %s %s %s", s.Phase, s.WinningTeam, s.EndReason)
	}
}

func TestFastMoneyBelowThresholdBanksPoints(t *testing.T) {
	rules := DefaultRules()
	rules.FastMoneyRule = ThresholdRule{Threshold: 1000}
	s := enterFastMoney(t, rules)
	before := s.team(Team1).TotalScore

	playFastMoneyTurn(t, s, "a1", []string{"low0", "nope", "nope", "nope", "nope"})
	playFastMoneyTurn(t, s, "a2", []string{"nope", "nope", "nope", "nope", "nope"})
	revealAll(t, s)
	mustApply(t, s, Action{Type: MsgEndFastMoney, SenderID: "host"})

	if s.EndReason != EndRounds {
		t.Fatalf("expected rounds reason, got %s", s.EndReason)
	}
	if got := s.team(Team1).TotalScore; got != before+25 {
		t.Fatalf("expected %d banked, got %d", before+25, got)
	}
	if s.WinningTeam != Team1 {
		t.Fatalf("expected team1 to lead, got %s", s.WinningTeam)
	}
}

func TestFastMoneyTimerExpiryEndsTurn(t *testing.T) {
	s := enterFastMoney(t, DefaultRules())
	mustApply(t, s, Action{Type: MsgStartFastMoneyTimer, SenderID: "host"})
	mustApply(t, s, Action{Type: MsgFastMoneyAnswer, SenderID: "a1", Answer: "top0"})

	gen := s.TimerGeneration()
	for i := 0; i < s.Rules.FastMoneyPlayer1Seconds; i++ {
		s.Tick(gen, testTime)
	}
	if !s.FastMoney.Player1Done || s.FastMoney.CurrentPlayer != 2 {
		t.Fatalf("expected expiry to end player 1's turn, got %+v", s.FastMoney)
	}
	if s.FastMoney.Player1Answers[1].Submitted {
		t.Fatalf("expected unanswered questions to stay empty")
	}
}

func TestNextFastMoneyQuestionPasses(t *testing.T) {
	s := enterFastMoney(t, DefaultRules())
	mustApply(t, s, Action{Type: MsgStartFastMoneyTimer, SenderID: "host"})
	mustApply(t, s, Action{Type: MsgNextFastMoneyQuestion, SenderID: "host"})
	if s.FastMoney.QuestionIndex != 1 {
		t.Fatalf("expected question index 1, got %d", s.FastMoney.QuestionIndex)
	}
}

func TestEndFastMoneyHostOverride(t *testing.T) {
	s := enterFastMoney(t, DefaultRules())
	mustApply(t, s, Action{Type: MsgEndFastMoney, SenderID: "host", TeamID: Team2})
	if s.WinningTeam != Team2 || s.EndReason != EndFastMoney {
		t.Fatalf("expected override win for team2, got %s %s", s.WinningTeam, s.EndReason)
	}
}

func TestThresholdRuleTie(t *testing.T) {
	decision := ThresholdRule{Threshold: 200}.Decide(FastMoneyResult{
		Combined:   50,
		Team:       Team2,
		TeamTotals: map[TeamID]int{Team1: 150, Team2: 100},
	})
	if decision.Winner != NoTeam || decision.Bonus != 50 || decision.Reason != EndRounds {
		t.Fatalf("expected tie with bonus 50, got %+v", decision)
	}
}

func TestFastMoneyRevealRejectsNegativeIndex(t *testing.T) {
	s := enterFastMoney(t, DefaultRules())
	playFastMoneyTurn(t, s, "a1", []string{"top1"})
	if apply(t, s, Action{Type: MsgRevealFastMoneyAnswer, SenderID: "host", PlayerNum: 1, QuestionIndex: -1}) {
		t.Fatalf("expected negative question index to be dropped")
	}
}

func TestFastMoneyPlayersMustShareATeam(t *testing.T) {
	s := newLobby(t, DefaultRules())
	startGame(t, s)
	for round := 1; round <= MaxRounds; round++ {
		winFaceoff(t, s)
		mustApply(t, s, Action{Type: MsgEndRound, SenderID: "host"})
		mustApply(t, s, Action{Type: MsgNextRound, SenderID: "host"})
	}
	if apply(t, s, Action{Type: MsgSelectFastMoneyPlayers, SenderID: "host", Player1ID: "a1", Player2ID: "b1"}) {
		t.Fatalf("expected players from different teams to be rejected")
	}
	mustApply(t, s, Action{Type: MsgSelectFastMoneyPlayers, SenderID: "host", Player1ID: "b1", Player2ID: "b2"})
}
