package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type MessageType string

const (
	MsgBuzz                   MessageType = "player:buzz"
	MsgSubmitAnswer           MessageType = "player:submitAnswer"
	MsgPlayOrPass             MessageType = "player:playOrPass"
	MsgFastMoneyAnswer        MessageType = "player:fastMoneyAnswer"
	MsgReady                  MessageType = "player:ready"
	MsgSwitchTeam             MessageType = "player:switchTeam"
	MsgToggleSpectator        MessageType = "player:toggleSpectator"
	MsgStartGame              MessageType = "host:startGame"
	MsgNextRound              MessageType = "host:nextRound"
	MsgRevealAnswer           MessageType = "host:revealAnswer"
	MsgAddStrike              MessageType = "host:addStrike"
	MsgPassControl            MessageType = "host:passControl"
	MsgStartFaceoff           MessageType = "host:startFaceoff"
	MsgEndRound               MessageType = "host:endRound"
	MsgSetTeamName            MessageType = "host:setTeamName"
	MsgKickPlayer             MessageType = "host:kickPlayer"
	MsgShuffleTeams           MessageType = "host:shuffleTeams"
	MsgStartFastMoney         MessageType = "host:startFastMoney"
	MsgSelectFastMoneyPlayers MessageType = "host:selectFastMoneyPlayers"
	MsgStartFastMoneyTimer    MessageType = "host:startFastMoneyTimer"
	MsgRevealFastMoneyAnswer  MessageType = "host:revealFastMoneyAnswer"
	MsgNextFastMoneyQuestion  MessageType = "host:nextFastMoneyQuestion"
	MsgEndFastMoney           MessageType = "host:endFastMoney"
	MsgPlayAgain              MessageType = "host:playAgain"
	MsgEndGame                MessageType = "host:endGame"
)

const (
	maxAnswerLength   = 60
	maxNameLength     = 20
	maxTeamNameLength = 24
)

var ErrMalformedPayload = errors.New("malformed payload")

// Message is an inbound client message as framed by the transport. SenderID
// is stamped by the transport, never read from the wire.
type Message struct {
	ID          string          `json:"id,omitempty"`
	Type        MessageType     `json:"type"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	BaseVersion uint64          `json:"baseVersion,omitempty"`
	SenderID    string          `json:"-"`
}

// Action is a decoded, validated message.
type Action struct {
	Type          MessageType
	SenderID      string
	Answer        string
	Choice        string
	Index         int
	PlayerNum     int
	QuestionIndex int
	Player1ID     string
	Player2ID     string
	TeamID        TeamID
	Name          string
	TargetID      string

	// Filled by the Session for host:startGame before the action is applied.
	Questions          []Question
	FastMoneyQuestions []Question
}

type answerPayload struct {
	Answer string `json:"answer" validate:"required,answer"`
}

type playOrPassPayload struct {
	Choice string `json:"choice" validate:"required,oneof=play pass"`
}

type revealPayload struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type playerPairPayload struct {
	Player1ID string `json:"player1Id" validate:"required"`
	Player2ID string `json:"player2Id" validate:"required,nefield=Player1ID"`
}

type teamNamePayload struct {
	TeamID string `json:"teamId" validate:"required,teamid"`
	Name   string `json:"name" validate:"required,teamname"`
}

type kickPayload struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type fastMoneyRevealPayload struct {
	PlayerNum     int  `json:"playerNum" validate:"oneof=1 2"`
	QuestionIndex *int `json:"questionIndex" validate:"required,min=0,max=4"`
}

type endFastMoneyPayload struct {
	WinningTeamID string `json:"winningTeamId" validate:"omitempty,teamid"`
}

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func payloadValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("answer", func(fl validator.FieldLevel) bool {
			_, err := ValidateAnswer(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			_, err := ValidateName(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("teamname", func(fl validator.FieldLevel) bool {
			_, err := validateText("team name", fl.Field().String(), maxTeamNameLength)
			return err == nil
		})
		_ = validate.RegisterValidation("teamid", func(fl validator.FieldLevel) bool {
			return TeamID(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Decode turns a wire message into an Action. Unknown types and payloads
// failing validation return ErrMalformedPayload; nothing is mutated.
func Decode(msg Message) (Action, error) {
	rule, ok := messageRules[msg.Type]
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown type %q", ErrMalformedPayload, msg.Type)
	}
	action := Action{Type: msg.Type, SenderID: msg.SenderID}
	if rule.decode == nil {
		return action, nil
	}
	raw := msg.Payload
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := rule.decode(raw, &action); err != nil {
		return Action{}, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, msg.Type, err)
	}
	return action, nil
}

func decodeInto(raw json.RawMessage, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}
	return payloadValidator().Struct(dest)
}

func decodeAnswer(raw json.RawMessage, a *Action) error {
	var p answerPayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.Answer = normalizeText(p.Answer)
	return nil
}

func decodePlayOrPass(raw json.RawMessage, a *Action) error {
	var p playOrPassPayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.Choice = p.Choice
	return nil
}

func decodeReveal(raw json.RawMessage, a *Action) error {
	var p revealPayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.Index = *p.Index
	return nil
}

func decodePlayerPair(raw json.RawMessage, a *Action) error {
	var p playerPairPayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.Player1ID = p.Player1ID
	a.Player2ID = p.Player2ID
	return nil
}

func decodeTeamName(raw json.RawMessage, a *Action) error {
	var p teamNamePayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.TeamID = TeamID(p.TeamID)
	a.Name = normalizeText(p.Name)
	return nil
}

func decodeKick(raw json.RawMessage, a *Action) error {
	var p kickPayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.TargetID = p.SessionID
	return nil
}

func decodeFastMoneyReveal(raw json.RawMessage, a *Action) error {
	var p fastMoneyRevealPayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.PlayerNum = p.PlayerNum
	a.QuestionIndex = *p.QuestionIndex
	return nil
}

func decodeEndFastMoney(raw json.RawMessage, a *Action) error {
	var p endFastMoneyPayload
	if err := decodeInto(raw, &p); err != nil {
		return err
	}
	a.TeamID = TeamID(p.WinningTeamID)
	return nil
}

func ValidateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func ValidateAnswer(text string) (string, error) {
	return validateText("answer", text, maxAnswerLength)
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len([]rune(trimmed)) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/', '#', '+':
			continue
		default:
			return false
		}
	}
	return true
}
