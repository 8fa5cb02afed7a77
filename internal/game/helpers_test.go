package game

import (
	"fmt"
	"testing"
	"time"
)

var testTime = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

func question(id string, answers ...any) Question {
	q := Question{ID: id, Text: "Question " + id}
	for i := 0; i+1 < len(answers); i += 2 {
		q.Answers = append(q.Answers, SurveyAnswer{Text: answers[i].(string), Points: answers[i+1].(int)})
	}
	return q
}

func fastMoneyQuestions() []Question {
	out := make([]Question, 0, FastMoneyQuestionCount)
	for i := 0; i < FastMoneyQuestionCount; i++ {
		out = append(out, question(fmt.Sprintf("fm-%d", i), fmt.Sprintf("top%d", i), 60, fmt.Sprintf("low%d", i), 25))
	}
	return out
}

// newLobby returns a lobby with a host and two players per team:
// a1, a2 on team1 and b1, b2 on team2.
func newLobby(t *testing.T, rules Rules) *State {
	t.Helper()
	s := NewState("ABCDEF", rules)
	if _, ok := s.AddPlayer("host", "", "Host", true, testTime); !ok {
		t.Fatalf("expected host to join")
	}
	for _, id := range []string{"a1", "b1", "a2", "b2"} {
		if _, ok := s.AddPlayer(id, "", id, false, testTime); !ok {
			t.Fatalf("expected %s to join", id)
		}
	}
	return s
}

func apply(t *testing.T, s *State, a Action) bool {
	t.Helper()
	changed := s.Apply(a, testTime)
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("invariants after %s: %v", a.Type, err)
	}
	return changed
}

func mustApply(t *testing.T, s *State, a Action) {
	t.Helper()
	if !apply(t, s, a) {
		t.Fatalf("expected %s from %s to apply in phase %s", a.Type, a.SenderID, s.Phase)
	}
}

func startGame(t *testing.T, s *State, rounds ...Question) {
	t.Helper()
	if len(rounds) == 0 {
		rounds = []Question{question("r1", "eggs", 40, "toast", 30, "bacon", 20)}
	}
	mustApply(t, s, Action{
		Type:               MsgStartGame,
		SenderID:           "host",
		Questions:          rounds,
		FastMoneyQuestions: fastMoneyQuestions(),
	})
}

func answer(playerID, text string) Action {
	return Action{Type: MsgSubmitAnswer, SenderID: playerID, Answer: text}
}

// winFaceoff has a1 buzz in, name the top answer and choose to play.
func winFaceoff(t *testing.T, s *State) {
	t.Helper()
	mustApply(t, s, Action{Type: MsgBuzz, SenderID: s.Faceoff.Player1ID})
	mustApply(t, s, answer(s.Faceoff.Player1ID, s.Board.Slots[s.Board.topUnrevealed()].Text))
	mustApply(t, s, Action{Type: MsgPlayOrPass, SenderID: s.Faceoff.Player1ID, Choice: "play"})
}
