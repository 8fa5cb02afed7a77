package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeValidPayloads(t *testing.T) {
	action, err := Decode(Message{Type: MsgSubmitAnswer, Payload: json.RawMessage(`{"answer":"  Ice   cream "}`), SenderID: "p1"})
	if err != nil {
		t.Fatalf("decode answer: %v", err)
	}
	if action.Answer != "Ice cream" || action.SenderID != "p1" {
		t.Fatalf("unexpected action %+v", action)
	}

	action, err = Decode(Message{Type: MsgRevealAnswer, Payload: json.RawMessage(`{"index":0}`)})
	if err != nil || action.Index != 0 {
		t.Fatalf("expected index 0, got %+v %v", action, err)
	}

	action, err = Decode(Message{Type: MsgBuzz})
	if err != nil || action.Type != MsgBuzz {
		t.Fatalf("expected bare buzz to decode, got %v", err)
	}

	action, err = Decode(Message{Type: MsgEndFastMoney})
	if err != nil || action.TeamID != NoTeam {
		t.Fatalf("expected optional winner, got %+v %v", action, err)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []Message{
		{Type: "player:dance"},
		{Type: MsgSubmitAnswer, Payload: json.RawMessage(`{}`)},
		{Type: MsgSubmitAnswer, Payload: json.RawMessage(`{"answer":"<script>"}`)},
		{Type: MsgPlayOrPass, Payload: json.RawMessage(`{"choice":"maybe"}`)},
		{Type: MsgRevealAnswer, Payload: json.RawMessage(`{}`)},
		{Type: MsgRevealAnswer, Payload: json.RawMessage(`{"index":-1}`)},
		{Type: MsgStartFaceoff, Payload: json.RawMessage(`{"player1Id":"a","player2Id":"a"}`)},
		{Type: MsgSetTeamName, Payload: json.RawMessage(`{"teamId":"team3","name":"Owls"}`)},
		{Type: MsgRevealFastMoneyAnswer, Payload: json.RawMessage(`{"playerNum":3,"questionIndex":0}`)},
		{Type: MsgRevealFastMoneyAnswer, Payload: json.RawMessage(`{"playerNum":1,"questionIndex":5}`)},
		{Type: MsgKickPlayer, Payload: json.RawMessage(`not json`)},
	}
	for _, msg := range cases {
		if _, err := Decode(msg); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("expected malformed error for %s %s, got %v", msg.Type, msg.Payload, err)
		}
	}
}

func TestValidateName(t *testing.T) {
	if name, err := ValidateName("  Ada   L "); err != nil || name != "Ada L" {
		t.Fatalf("expected normalized name, got %q %v", name, err)
	}
	if _, err := ValidateName(""); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if _, err := ValidateName("abcdefghijklmnopqrstuvwxyz"); err == nil {
		t.Fatalf("expected long name to fail")
	}
}

func TestEveryMessageTypeHasRule(t *testing.T) {
	types := []MessageType{
		MsgBuzz, MsgSubmitAnswer, MsgPlayOrPass, MsgFastMoneyAnswer, MsgReady, MsgSwitchTeam,
		MsgToggleSpectator, MsgStartGame, MsgNextRound, MsgRevealAnswer, MsgAddStrike,
		MsgPassControl, MsgStartFaceoff, MsgEndRound, MsgSetTeamName, MsgKickPlayer,
		MsgShuffleTeams, MsgStartFastMoney, MsgSelectFastMoneyPlayers, MsgStartFastMoneyTimer,
		MsgRevealFastMoneyAnswer, MsgNextFastMoneyQuestion, MsgEndFastMoney, MsgPlayAgain, MsgEndGame,
	}
	for _, msgType := range types {
		rule, ok := messageRules[msgType]
		if !ok || rule.apply == nil {
			t.Fatalf("missing rule for %s", msgType)
		}
	}
}
