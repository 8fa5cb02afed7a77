package game

import (
	"math/rand/v2"
	"time"
)

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseFaceoff   Phase = "faceoff"
	PhasePlay      Phase = "play"
	PhaseSteal     Phase = "steal"
	PhaseRoundEnd  Phase = "roundEnd"
	PhaseFastMoney Phase = "fastMoney"
	PhaseGameOver  Phase = "gameOver"
)

type TeamID string

const (
	NoTeam TeamID = ""
	Team1  TeamID = "team1"
	Team2  TeamID = "team2"
)

// Valid reports whether id names one of the two playing teams.
func (id TeamID) Valid() bool {
	return id == Team1 || id == Team2
}

// Opponent returns the other playing team. NoTeam has no opponent.
func (id TeamID) Opponent() TeamID {
	switch id {
	case Team1:
		return Team2
	case Team2:
		return Team1
	default:
		return NoTeam
	}
}

type RoundType string

const (
	RoundSingle    RoundType = "single"
	RoundDouble    RoundType = "double"
	RoundTriple    RoundType = "triple"
	RoundFastMoney RoundType = "fastMoney"
)

type EndReason string

const (
	EndRounds    EndReason = "rounds"
	EndFastMoney EndReason = "fastMoney"
	EndForfeit   EndReason = "forfeit"
)

type TimerKind string

const (
	TimerNone      TimerKind = ""
	TimerFaceoff   TimerKind = "faceoff"
	TimerFastMoney TimerKind = "fastMoney"
)

const (
	MaxStrikes             = 3
	MaxRounds              = 4
	FastMoneyQuestionCount = 5
	MaxEventLogSize        = 500
	noMatch                = -1
)

type Player struct {
	ID          string
	AccountID   string
	Name        string
	TeamID      TeamID
	IsHost      bool
	IsConnected bool
	IsSpectator bool
	IsReady     bool
	Score       int
	JoinedAt    time.Time
	joinSeq     int
	connEpoch   int
}

type Team struct {
	ID         TeamID
	Name       string
	Score      int
	TotalScore int
	HasControl bool
	Members    []string
}

type SurveyAnswer struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// Question is one survey question as supplied by the question bank.
type Question struct {
	ID      string         `json:"id"`
	Text    string         `json:"question"`
	Answers []SurveyAnswer `json:"answers"`
}

type AnswerSlot struct {
	Index    int
	Text     string
	Points   int
	Revealed bool
}

type Board struct {
	QuestionID      string
	QuestionText    string
	Slots           []AnswerSlot
	Strikes         int
	PointsOnBoard   int
	Multiplier      int
	ControllingTeam TeamID
}

type Buzzer struct {
	Active     bool
	Locked     bool
	WinnerID   string
	Timestamps map[string]int64
}

type Faceoff struct {
	Player1ID          string
	Player2ID          string
	FirstAnswer        string
	FirstIndex         int
	SecondAnswer       string
	SecondIndex        int
	FirstTeam          TeamID
	WaitingForSecond   bool
	AwaitingPlayOrPass bool
	Team1Index         int
	Team2Index         int
	CurrentAnswerer    string
	WinnerID           string
	firstAnswerer      string
}

type TimerState struct {
	Active  bool
	Seconds int
	Kind    TimerKind
}

type FastMoneyAnswer struct {
	QuestionIndex int
	Answer        string
	Points        int
	Revealed      bool
	Submitted     bool
}

type FastMoney struct {
	Player1ID      string
	Player2ID      string
	Player1Answers []FastMoneyAnswer
	Player2Answers []FastMoneyAnswer
	Player1Total   int
	Player2Total   int
	CurrentPlayer  int
	QuestionIndex  int
	TimerSeconds   int
	Started        bool
	Player1Done    bool
	Player2Done    bool
	Questions      []Question
}

// State is the authoritative game state of one session. It is owned by a
// single Session goroutine and must not be shared.
type State struct {
	Code           string
	Phase          Phase
	HostID         string
	Round          int
	RoundType      RoundType
	Players        map[string]*Player
	Teams          map[TeamID]*Team
	Board          Board
	Buzzer         Buzzer
	Faceoff        Faceoff
	StealAttempted bool
	Timer          TimerState
	FastMoney      FastMoney
	Events         *EventLog
	Message        string
	WinningTeam    TeamID
	EndReason      EndReason
	Version        uint64
	Rules          Rules

	started        bool
	roundAwarded   bool
	joinSeq        int
	kicked         map[string]struct{}
	roundQuestions []Question
	timerGen       uint64
	tickDue        bool
	emitted        []GameEvent
	fault          error
	finished       bool
	rng            *rand.Rand
}
