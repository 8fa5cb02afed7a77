package game

import (
	"fmt"
	"time"
)

// NewState returns a lobby-phase state for a session identified by code.
func NewState(code string, rules Rules) *State {
	s := &State{
		Code:      code,
		Phase:     PhaseLobby,
		Round:     1,
		RoundType: RoundSingle,
		Players:   make(map[string]*Player),
		Events:    NewEventLog(MaxEventLogSize),
		Rules:     rules.withDefaults(),
		kicked:    make(map[string]struct{}),
	}
	s.initializeTeams()
	s.resetBoard()
	s.resetFaceoff(true)
	s.Buzzer = Buzzer{Timestamps: make(map[string]int64)}
	s.FastMoney = newFastMoney(s.Rules.FastMoneyPlayer1Seconds)
	return s
}

func (s *State) initializeTeams() {
	if s.Teams == nil {
		s.Teams = make(map[TeamID]*Team, 2)
	}
	for i, id := range []TeamID{Team1, Team2} {
		team, ok := s.Teams[id]
		if !ok {
			team = &Team{ID: id, Name: fmt.Sprintf("Team %d", i+1)}
			s.Teams[id] = team
		}
		team.Score = 0
		team.TotalScore = 0
		team.HasControl = false
	}
}

func (s *State) resetBoard() {
	s.Board = Board{Multiplier: multiplierFor(s.Round)}
	s.StealAttempted = false
	s.roundAwarded = false
	for _, team := range s.Teams {
		team.Score = 0
		team.HasControl = false
	}
}

// resetFaceoff clears one face-off attempt. The alternating rotation indices
// survive unless full is set.
func (s *State) resetFaceoff(full bool) {
	team1Index, team2Index := s.Faceoff.Team1Index, s.Faceoff.Team2Index
	s.Faceoff = Faceoff{FirstIndex: noMatch, SecondIndex: noMatch}
	if !full {
		s.Faceoff.Team1Index = team1Index
		s.Faceoff.Team2Index = team2Index
	}
}

// resetForNewGame restores lobby state while keeping the roster and team names.
func (s *State) resetForNewGame() {
	s.cancelTimer()
	s.Round = 1
	s.RoundType = RoundSingle
	s.initializeTeams()
	s.resetBoard()
	s.resetFaceoff(true)
	s.Buzzer = Buzzer{Timestamps: make(map[string]int64)}
	s.FastMoney = newFastMoney(s.Rules.FastMoneyPlayer1Seconds)
	s.WinningTeam = NoTeam
	s.EndReason = ""
	s.Message = ""
	s.started = false
	s.finished = false
	s.roundQuestions = nil
	for _, player := range s.Players {
		player.Score = 0
		player.IsReady = false
	}
}

func (s *State) team(id TeamID) *Team {
	return s.Teams[id]
}

// Started reports whether a game has been started since the last lobby.
func (s *State) Started() bool {
	return s.started
}

// Finished reports whether the state reached gameOver through a started game.
func (s *State) Finished() bool {
	return s.finished
}

// Fault returns the invariant violation recorded during the last mutation.
func (s *State) Fault() error {
	return s.fault
}

func (s *State) nowMillis(at time.Time) int64 {
	if at.IsZero() {
		at = time.Now()
	}
	return at.UnixMilli()
}
