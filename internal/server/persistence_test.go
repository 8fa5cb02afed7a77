package server

import (
	"testing"
	"time"

	"family-feud/internal/db"
	"family-feud/internal/game"

	"gorm.io/datatypes"
)

func TestLeaderboardDeltas(t *testing.T) {
	players := []game.PlayerView{
		{ID: "p1", AccountID: "acct-1", Name: "Ada", TeamID: game.Team1},
		{ID: "p2", AccountID: "acct-2", Name: "Bob", TeamID: game.Team2},
		{ID: "p3", AccountID: "guest_123", Name: "Guest", TeamID: game.Team1},
		{ID: "host", AccountID: "acct-host", Name: "Host", IsSpectator: true},
	}
	teams := []game.TeamView{
		{ID: game.Team1, TotalScore: 310},
		{ID: game.Team2, TotalScore: 120},
	}

	deltas := leaderboardDeltas(players, game.Team1, teams)
	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas, got %d", len(deltas))
	}
	if !deltas[0].Won || deltas[0].Lost || deltas[0].Points != 310 {
		t.Fatalf("unexpected winner delta %+v", deltas[0])
	}
	if deltas[1].Won || !deltas[1].Lost || deltas[1].Points != 120 {
		t.Fatalf("unexpected loser delta %+v", deltas[1])
	}

	for _, delta := range leaderboardDeltas(players, "", teams) {
		if delta.Won || delta.Lost {
			t.Fatalf("tie should credit neither win nor loss: %+v", delta)
		}
	}
}

func TestToGameQuestion(t *testing.T) {
	question, err := toGameQuestion(db.Question{
		ID:      7,
		Text:    "Name a pet",
		Answers: datatypes.JSON(`[{"text":"Dog","points":40},{"text":"Cat","points":30}]`),
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if question.ID != "q-7" || len(question.Answers) != 2 || question.Answers[0].Points != 40 {
		t.Fatalf("unexpected question %+v", question)
	}

	if _, err := toGameQuestion(db.Question{Answers: datatypes.JSON(`[]`)}); err == nil {
		t.Fatalf("expected empty answers to fail")
	}
	if _, err := toGameQuestion(db.Question{Answers: datatypes.JSON(`{`)}); err == nil {
		t.Fatalf("expected bad json to fail")
	}
}

func TestRulesFromConfig(t *testing.T) {
	srv := New(nil, configWithThreshold(150))
	rule, ok := srv.rules.FastMoneyRule.(game.ThresholdRule)
	if !ok || rule.Threshold != 150 {
		t.Fatalf("unexpected fast money rule %#v", srv.rules.FastMoneyRule)
	}
	if srv.rules.FaceoffAnswerSeconds != 10 || srv.rules.MaxPlayers != 16 {
		t.Fatalf("unexpected rules %+v", srv.rules)
	}
}

func TestGameRecordUsesCommittedResults(t *testing.T) {
	finished := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	record, err := gameRecord(game.GameResults{
		SessionID:  "game-3",
		Code:       "ABC234",
		Winner:     game.Team2,
		EndReason:  game.EndFastMoney,
		Teams:      []game.TeamView{{ID: game.Team1, TotalScore: 90}, {ID: game.Team2, TotalScore: 240}},
		FinishedAt: finished,
	})
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	if record.EndReason != "fastMoney" || record.JoinCode != "ABC234" || record.WinningTeam != "team2" {
		t.Fatalf("unexpected record %+v", record)
	}
	if !record.FinishedAt.Equal(finished) || record.FinishedAt.Location() != time.UTC {
		t.Fatalf("expected UTC finish time, got %s", record.FinishedAt)
	}
	if len(record.TeamTotals) == 0 {
		t.Fatalf("expected team totals")
	}
}
