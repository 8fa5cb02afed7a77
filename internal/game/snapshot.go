package game

import "sort"

const viewerEventTail = 10

// Snapshot is an immutable, versioned copy of a session's state, safe to
// hand to the broadcast layer. It shares no memory with the live State.
type Snapshot struct {
	Version        uint64        `json:"version"`
	Code           string        `json:"code"`
	Phase          Phase         `json:"phase"`
	HostID         string        `json:"hostId"`
	Round          int           `json:"round"`
	RoundType      RoundType     `json:"roundType"`
	Players        []PlayerView  `json:"players"`
	Teams          []TeamView    `json:"teams"`
	Board          BoardView     `json:"board"`
	Buzzer         BuzzerView    `json:"buzzer"`
	Faceoff        FaceoffView   `json:"faceoff"`
	StealAttempted bool          `json:"stealAttempted"`
	Timer          TimerView     `json:"timer"`
	FastMoney      FastMoneyView `json:"fastMoney"`
	Events         []GameEvent   `json:"events"`
	Message        string        `json:"message,omitempty"`
	WinningTeam    TeamID        `json:"winningTeam,omitempty"`
	EndReason      EndReason     `json:"endReason,omitempty"`
	ViewerID       string        `json:"viewerId,omitempty"`
}

type PlayerView struct {
	ID          string `json:"id"`
	AccountID   string `json:"-"`
	Name        string `json:"name"`
	TeamID      TeamID `json:"teamId"`
	IsHost      bool   `json:"isHost"`
	IsConnected bool   `json:"isConnected"`
	IsSpectator bool   `json:"isSpectator"`
	IsReady     bool   `json:"isReady"`
	Score       int    `json:"score"`
}

type TeamView struct {
	ID         TeamID   `json:"id"`
	Name       string   `json:"name"`
	Score      int      `json:"score"`
	TotalScore int      `json:"totalScore"`
	HasControl bool     `json:"hasControl"`
	Members    []string `json:"members"`
}

type SlotView struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Points   int    `json:"points"`
	Revealed bool   `json:"revealed"`
}

type BoardView struct {
	QuestionID      string     `json:"questionId"`
	Question        string     `json:"question"`
	Slots           []SlotView `json:"answers"`
	Strikes         int        `json:"strikes"`
	PointsOnBoard   int        `json:"pointsOnBoard"`
	Multiplier      int        `json:"pointMultiplier"`
	ControllingTeam TeamID     `json:"controllingTeam"`
}

type BuzzerView struct {
	Active     bool             `json:"active"`
	Locked     bool             `json:"locked"`
	WinnerID   string           `json:"winnerId"`
	Timestamps map[string]int64 `json:"timestamps"`
}

type FaceoffView struct {
	Player1ID          string `json:"player1Id"`
	Player2ID          string `json:"player2Id"`
	FirstAnswer        string `json:"firstAnswer"`
	FirstIndex         int    `json:"firstAnswerIndex"`
	SecondAnswer       string `json:"secondAnswer"`
	SecondIndex        int    `json:"secondAnswerIndex"`
	WaitingForSecond   bool   `json:"waitingForSecondAnswer"`
	AwaitingPlayOrPass bool   `json:"awaitingPlayOrPass"`
	Team1Index         int    `json:"faceoffTeam1Index"`
	Team2Index         int    `json:"faceoffTeam2Index"`
	CurrentAnswerer    string `json:"faceoffCurrentAnswerer"`
	WinnerID           string `json:"faceoffWinner"`
}

type TimerView struct {
	Active  bool      `json:"active"`
	Seconds int       `json:"seconds"`
	Kind    TimerKind `json:"kind,omitempty"`
}

type FastMoneyAnswerView struct {
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
	Points        int    `json:"points"`
	Revealed      bool   `json:"revealed"`
	Submitted     bool   `json:"submitted"`
}

type FastMoneyView struct {
	Player1ID      string                `json:"player1Id"`
	Player2ID      string                `json:"player2Id"`
	Player1Answers []FastMoneyAnswerView `json:"player1Answers"`
	Player2Answers []FastMoneyAnswerView `json:"player2Answers"`
	Player1Total   int                   `json:"player1Total"`
	Player2Total   int                   `json:"player2Total"`
	CurrentPlayer  int                   `json:"currentPlayer"`
	QuestionIndex  int                   `json:"currentQuestionIndex"`
	TimerSeconds   int                   `json:"timerSeconds"`
	Started        bool                  `json:"isStarted"`
	Player1Done    bool                  `json:"player1Done"`
	Player2Done    bool                  `json:"player2Done"`
	Questions      []string              `json:"questions"`
}

// Snapshot copies the full state at its current version.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Version:        s.Version,
		Code:           s.Code,
		Phase:          s.Phase,
		HostID:         s.HostID,
		Round:          s.Round,
		RoundType:      s.RoundType,
		StealAttempted: s.StealAttempted,
		Timer:          TimerView{Active: s.Timer.Active, Seconds: s.Timer.Seconds, Kind: s.Timer.Kind},
		Events:         s.Events.Entries(),
		Message:        s.Message,
		WinningTeam:    s.WinningTeam,
		EndReason:      s.EndReason,
	}

	for _, player := range s.orderedPlayers() {
		snap.Players = append(snap.Players, PlayerView{
			ID:          player.ID,
			AccountID:   player.AccountID,
			Name:        player.Name,
			TeamID:      player.TeamID,
			IsHost:      player.ID == s.HostID,
			IsConnected: player.IsConnected,
			IsSpectator: player.IsSpectator,
			IsReady:     player.IsReady,
			Score:       player.Score,
		})
	}
	ids := make([]TeamID, 0, len(s.Teams))
	for id := range s.Teams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		team := s.Teams[id]
		snap.Teams = append(snap.Teams, TeamView{
			ID:         team.ID,
			Name:       team.Name,
			Score:      team.Score,
			TotalScore: team.TotalScore,
			HasControl: team.HasControl,
			Members:    append([]string{}, team.Members...),
		})
	}

	snap.Board = BoardView{
		QuestionID:      s.Board.QuestionID,
		Question:        s.Board.QuestionText,
		Strikes:         s.Board.Strikes,
		PointsOnBoard:   s.Board.PointsOnBoard,
		Multiplier:      s.Board.Multiplier,
		ControllingTeam: s.Board.ControllingTeam,
		Slots:           make([]SlotView, 0, len(s.Board.Slots)),
	}
	for _, slot := range s.Board.Slots {
		snap.Board.Slots = append(snap.Board.Slots, SlotView(slot))
	}

	snap.Buzzer = BuzzerView{
		Active:     s.Buzzer.Active,
		Locked:     s.Buzzer.Locked,
		WinnerID:   s.Buzzer.WinnerID,
		Timestamps: make(map[string]int64, len(s.Buzzer.Timestamps)),
	}
	for id, ts := range s.Buzzer.Timestamps {
		snap.Buzzer.Timestamps[id] = ts
	}

	f := s.Faceoff
	snap.Faceoff = FaceoffView{
		Player1ID:          f.Player1ID,
		Player2ID:          f.Player2ID,
		FirstAnswer:        f.FirstAnswer,
		FirstIndex:         f.FirstIndex,
		SecondAnswer:       f.SecondAnswer,
		SecondIndex:        f.SecondIndex,
		WaitingForSecond:   f.WaitingForSecond,
		AwaitingPlayOrPass: f.AwaitingPlayOrPass,
		Team1Index:         f.Team1Index,
		Team2Index:         f.Team2Index,
		CurrentAnswerer:    f.CurrentAnswerer,
		WinnerID:           f.WinnerID,
	}

	fm := s.FastMoney
	snap.FastMoney = FastMoneyView{
		Player1ID:      fm.Player1ID,
		Player2ID:      fm.Player2ID,
		Player1Answers: fastMoneyAnswerViews(fm.Player1Answers),
		Player2Answers: fastMoneyAnswerViews(fm.Player2Answers),
		Player1Total:   fm.Player1Total,
		Player2Total:   fm.Player2Total,
		CurrentPlayer:  fm.CurrentPlayer,
		QuestionIndex:  fm.QuestionIndex,
		TimerSeconds:   fm.TimerSeconds,
		Started:        fm.Started,
		Player1Done:    fm.Player1Done,
		Player2Done:    fm.Player2Done,
		Questions:      []string{},
	}
	if fm.Started {
		for _, q := range fm.Questions {
			snap.FastMoney.Questions = append(snap.FastMoney.Questions, q.Text)
		}
	}
	return snap
}

func fastMoneyAnswerViews(answers []FastMoneyAnswer) []FastMoneyAnswerView {
	out := make([]FastMoneyAnswerView, 0, len(answers))
	for _, answer := range answers {
		out = append(out, FastMoneyAnswerView(answer))
	}
	return out
}

// ForViewer projects the snapshot for one player. The host sees everything.
// Everyone else gets blank unrevealed slots, hidden fast-money scoring and
// only the tail of the event log; player 2 does not see player 1's answers
// while taking their own turn.
func (snap Snapshot) ForViewer(playerID string) Snapshot {
	out := snap
	out.ViewerID = playerID
	if playerID != "" && playerID == snap.HostID {
		return out
	}

	out.Board.Slots = make([]SlotView, len(snap.Board.Slots))
	for i, slot := range snap.Board.Slots {
		if !slot.Revealed && snap.Phase != PhaseGameOver {
			slot.Text = ""
			slot.Points = 0
		}
		out.Board.Slots[i] = slot
	}

	fm := snap.FastMoney
	hideFirst := fm.Started && fm.CurrentPlayer == 2 && !fm.Player2Done && playerID == fm.Player2ID
	out.FastMoney.Player1Answers = projectFastMoney(fm.Player1Answers, hideFirst)
	out.FastMoney.Player2Answers = projectFastMoney(fm.Player2Answers, false)
	out.FastMoney.Player1Total = revealedTotal(out.FastMoney.Player1Answers)
	out.FastMoney.Player2Total = revealedTotal(out.FastMoney.Player2Answers)

	if len(snap.Events) > viewerEventTail {
		out.Events = append([]GameEvent{}, snap.Events[len(snap.Events)-viewerEventTail:]...)
	}
	return out
}

func projectFastMoney(answers []FastMoneyAnswerView, hideText bool) []FastMoneyAnswerView {
	out := make([]FastMoneyAnswerView, len(answers))
	for i, answer := range answers {
		if hideText {
			answer.Answer = ""
		}
		if !answer.Revealed {
			answer.Points = 0
		}
		out[i] = answer
	}
	return out
}

func revealedTotal(answers []FastMoneyAnswerView) int {
	total := 0
	for _, answer := range answers {
		if answer.Revealed {
			total += answer.Points
		}
	}
	return total
}

// Player returns the view of one player, if present.
func (snap Snapshot) Player(id string) (PlayerView, bool) {
	for _, player := range snap.Players {
		if player.ID == id {
			return player, true
		}
	}
	return PlayerView{}, false
}

// Team returns the view of one team.
func (snap Snapshot) Team(id TeamID) (TeamView, bool) {
	for _, team := range snap.Teams {
		if team.ID == id {
			return team, true
		}
	}
	return TeamView{}, false
}
