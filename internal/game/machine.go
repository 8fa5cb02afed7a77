package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

var ErrInvariant = errors.New("invariant violated")

// transitions is the only place phase changes are declared. setPhase refuses
// anything not listed here.
var transitions = map[Phase][]Phase{
	PhaseLobby:     {PhaseFaceoff, PhaseGameOver},
	PhaseFaceoff:   {PhaseFaceoff, PhasePlay, PhaseRoundEnd, PhaseGameOver},
	PhasePlay:      {PhaseSteal, PhaseRoundEnd, PhaseGameOver},
	PhaseSteal:     {PhaseRoundEnd, PhaseGameOver},
	PhaseRoundEnd:  {PhaseFaceoff, PhaseFastMoney, PhaseGameOver},
	PhaseFastMoney: {PhaseGameOver},
	PhaseGameOver:  {PhaseLobby},
}

var activePhases = []Phase{PhaseLobby, PhaseFaceoff, PhasePlay, PhaseSteal, PhaseRoundEnd, PhaseFastMoney}

type messageRule struct {
	hostOnly bool
	phases   []Phase
	decode   func(raw json.RawMessage, a *Action) error
	allowed  func(s *State, a Action) bool
	apply    func(s *State, a Action, at time.Time) bool
}

var messageRules map[MessageType]messageRule

func init() {
	messageRules = map[MessageType]messageRule{
		MsgBuzz: {
			phases:  []Phase{PhaseFaceoff},
			allowed: canBuzz,
			apply:   applyBuzz,
		},
		MsgSubmitAnswer: {
			phases:  []Phase{PhaseFaceoff, PhasePlay, PhaseSteal},
			decode:  decodeAnswer,
			allowed: canSubmitAnswer,
			apply:   applySubmitAnswer,
		},
		MsgPlayOrPass: {
			phases:  []Phase{PhaseFaceoff},
			decode:  decodePlayOrPass,
			allowed: canPlayOrPass,
			apply:   applyPlayOrPass,
		},
		MsgFastMoneyAnswer: {
			phases:  []Phase{PhaseFastMoney},
			decode:  decodeAnswer,
			allowed: canFastMoneyAnswer,
			apply:   applyFastMoneyAnswer,
		},
		MsgReady: {
			phases: []Phase{PhaseLobby},
			apply: func(s *State, a Action, _ time.Time) bool {
				return s.SetReady(a.SenderID, !s.Players[a.SenderID].IsReady)
			},
		},
		MsgSwitchTeam: {
			phases: []Phase{PhaseLobby},
			apply: func(s *State, a Action, _ time.Time) bool {
				target := s.teamOf(a.SenderID).Opponent()
				if target == NoTeam {
					target = s.smallerTeam()
				}
				return s.AssignTeam(a.SenderID, target)
			},
		},
		MsgToggleSpectator: {
			allowed: func(s *State, a Action) bool {
				return !s.designated(a.SenderID)
			},
			apply: func(s *State, a Action, _ time.Time) bool {
				return s.SetSpectator(a.SenderID, !s.Players[a.SenderID].IsSpectator)
			},
		},
		MsgStartGame: {
			hostOnly: true,
			phases:   []Phase{PhaseLobby},
			allowed: func(s *State, _ Action) bool {
				return s.teamsReady()
			},
			apply: applyStartGame,
		},
		MsgNextRound: {
			hostOnly: true,
			phases:   []Phase{PhaseRoundEnd},
			apply:    applyNextRound,
		},
		MsgRevealAnswer: {
			hostOnly: true,
			phases:   []Phase{PhaseFaceoff, PhasePlay, PhaseSteal, PhaseRoundEnd},
			decode:   decodeReveal,
			allowed: func(s *State, a Action) bool {
				return a.Index >= 0 && a.Index < len(s.Board.Slots) && !s.Board.Slots[a.Index].Revealed
			},
			apply: applyHostReveal,
		},
		MsgAddStrike: {
			hostOnly: true,
			phases:   []Phase{PhasePlay, PhaseSteal},
			apply: func(s *State, a Action, at time.Time) bool {
				if s.Phase == PhaseSteal {
					s.failSteal(a.SenderID, at)
					return true
				}
				s.strike(a.SenderID, at)
				return true
			},
		},
		MsgPassControl: {
			hostOnly: true,
			phases:   []Phase{PhaseFaceoff, PhasePlay},
			allowed: func(s *State, a Action) bool {
				if s.Phase == PhaseFaceoff {
					return s.Faceoff.AwaitingPlayOrPass
				}
				return s.Board.ControllingTeam.Valid()
			},
			apply: applyPassControl,
		},
		MsgStartFaceoff: {
			hostOnly: true,
			phases:   []Phase{PhaseFaceoff},
			decode:   decodePlayerPair,
			allowed:  canStartFaceoff,
			apply:    applyStartFaceoff,
		},
		MsgEndRound: {
			hostOnly: true,
			phases:   []Phase{PhasePlay, PhaseSteal},
			apply: func(s *State, a Action, at time.Time) bool {
				if s.Phase == PhaseSteal {
					s.StealAttempted = true
				}
				s.resolveRound(s.Board.ControllingTeam, at)
				return true
			},
		},
		MsgSetTeamName: {
			hostOnly: true,
			decode:   decodeTeamName,
			apply: func(s *State, a Action, _ time.Time) bool {
				team := s.team(a.TeamID)
				if team == nil || team.Name == a.Name {
					return false
				}
				team.Name = a.Name
				return true
			},
		},
		MsgKickPlayer: {
			hostOnly: true,
			decode:   decodeKick,
			allowed: func(s *State, a Action) bool {
				_, ok := s.Players[a.TargetID]
				return ok && a.TargetID != a.SenderID
			},
			apply: func(s *State, a Action, at time.Time) bool {
				return s.Kick(a.TargetID, at)
			},
		},
		MsgShuffleTeams: {
			hostOnly: true,
			phases:   []Phase{PhaseLobby},
			apply: func(s *State, _ Action, _ time.Time) bool {
				s.ShuffleTeams(s.rng)
				return true
			},
		},
		MsgSelectFastMoneyPlayers: {
			hostOnly: true,
			phases:   []Phase{PhaseFastMoney},
			decode:   decodePlayerPair,
			allowed:  canSelectFastMoneyPlayers,
			apply: func(s *State, a Action, at time.Time) bool {
				s.FastMoney.Select(a.Player1ID, a.Player2ID)
				s.logEvent(at, "fastMoneyPlayers", a.SenderID, s.teamOf(a.Player1ID), map[string]any{
					"player1": a.Player1ID,
					"player2": a.Player2ID,
				})
				return true
			},
		},
		MsgStartFastMoney: {
			hostOnly: true,
			phases:   []Phase{PhaseFastMoney},
			allowed: func(s *State, _ Action) bool {
				return !s.FastMoney.Started && s.FastMoney.Player1ID != "" && s.FastMoney.Player2ID != "" && len(s.FastMoney.Questions) > 0
			},
			apply: func(s *State, a Action, at time.Time) bool {
				s.FastMoney.Start(s.FastMoney.Questions, s.Rules.FastMoneyPlayer1Seconds)
				s.logEvent(at, "fastMoneyStarted", a.SenderID, s.fastMoneyTeam(), nil)
				return true
			},
		},
		MsgStartFastMoneyTimer: {
			hostOnly: true,
			phases:   []Phase{PhaseFastMoney},
			allowed: func(s *State, _ Action) bool {
				return s.FastMoney.Started && !s.Timer.Active && !s.FastMoney.done(s.FastMoney.CurrentPlayer)
			},
			apply: func(s *State, _ Action, at time.Time) bool {
				seconds := s.Rules.FastMoneyPlayer1Seconds
				if s.FastMoney.CurrentPlayer == 2 {
					seconds = s.Rules.FastMoneyPlayer2Seconds
				}
				s.startTimer(TimerFastMoney, seconds)
				s.logEvent(at, "fastMoneyTimer", s.FastMoney.playerID(s.FastMoney.CurrentPlayer), s.fastMoneyTeam(), map[string]any{"seconds": seconds})
				return true
			},
		},
		MsgRevealFastMoneyAnswer: {
			hostOnly: true,
			phases:   []Phase{PhaseFastMoney},
			decode:   decodeFastMoneyReveal,
			allowed:  canRevealFastMoneyAnswer,
			apply:    applyRevealFastMoneyAnswer,
		},
		MsgNextFastMoneyQuestion: {
			hostOnly: true,
			phases:   []Phase{PhaseFastMoney},
			allowed: func(s *State, _ Action) bool {
				return s.FastMoney.Started && s.Timer.Active && s.Timer.Kind == TimerFastMoney
			},
			apply: func(s *State, _ Action, at time.Time) bool {
				if s.FastMoney.Submit("") {
					s.endFastMoneyTurn(at)
				}
				return true
			},
		},
		MsgEndFastMoney: {
			hostOnly: true,
			phases:   []Phase{PhaseFastMoney},
			decode:   decodeEndFastMoney,
			allowed: func(s *State, _ Action) bool {
				return s.FastMoney.Started
			},
			apply: applyEndFastMoney,
		},
		MsgPlayAgain: {
			hostOnly: true,
			phases:   []Phase{PhaseGameOver},
			apply: func(s *State, a Action, at time.Time) bool {
				s.resetForNewGame()
				s.setPhase(PhaseLobby)
				s.logEvent(at, "playAgain", a.SenderID, NoTeam, nil)
				return true
			},
		},
		MsgEndGame: {
			hostOnly: true,
			phases:   activePhases,
			apply: func(s *State, a Action, at time.Time) bool {
				totals := map[TeamID]int{Team1: s.team(Team1).TotalScore, Team2: s.team(Team2).TotalScore}
				s.finishGame(leader(totals), EndForfeit, at)
				return true
			},
		},
	}
}

// Legal reports whether the action is allowed for its sender in the
// current phase. It never mutates.
func (s *State) Legal(a Action) bool {
	rule, ok := messageRules[a.Type]
	if !ok || s.fault != nil {
		return false
	}
	if _, known := s.Players[a.SenderID]; !known {
		return false
	}
	if rule.hostOnly && !s.isHost(a.SenderID) {
		return false
	}
	if len(rule.phases) > 0 && !slices.Contains(rule.phases, s.Phase) {
		return false
	}
	return rule.allowed == nil || rule.allowed(s, a)
}

// Apply applies a legal action and reports whether the state changed.
// Illegal actions change nothing.
func (s *State) Apply(a Action, at time.Time) bool {
	if !s.Legal(a) {
		return false
	}
	return messageRules[a.Type].apply(s, a, at)
}

func (s *State) setPhase(to Phase) {
	from := s.Phase
	if !slices.Contains(transitions[from], to) {
		s.fault = fmt.Errorf("%w: illegal transition %s -> %s", ErrInvariant, from, to)
		return
	}
	if from != to {
		s.cancelTimer()
		if from == PhaseFaceoff {
			s.Buzzer.Close()
		}
	}
	s.Phase = to
}

// SetRand replaces the shuffle source, for deterministic tests.
func (s *State) SetRand(rng *rand.Rand) {
	s.rng = rng
}

func applyStartGame(s *State, a Action, at time.Time) bool {
	if len(a.Questions) == 0 {
		return false
	}
	s.initializeTeams()
	s.started = true
	s.finished = false
	s.roundQuestions = append([]Question(nil), a.Questions...)
	s.FastMoney = newFastMoney(s.Rules.FastMoneyPlayer1Seconds)
	s.FastMoney.Questions = append([]Question(nil), a.FastMoneyQuestions...)
	s.WinningTeam = NoTeam
	s.EndReason = ""
	s.Round = 1
	for _, player := range s.Players {
		player.Score = 0
	}
	s.logEvent(at, "gameStarted", a.SenderID, NoTeam, map[string]any{
		"team1": len(s.team(Team1).Members),
		"team2": len(s.team(Team2).Members),
	})
	s.beginRound(at)
	return true
}

func applyNextRound(s *State, a Action, at time.Time) bool {
	if s.Round < MaxRounds {
		s.Round++
		s.beginRound(at)
		return true
	}
	s.resetBoard()
	s.resetFaceoff(true)
	s.RoundType = RoundFastMoney
	s.setPhase(PhaseFastMoney)
	s.logEvent(at, "fastMoneyPhase", a.SenderID, NoTeam, nil)
	return true
}

// beginRound loads the round's question, designates the default face-off
// pair from the rotation and opens the buzzer.
func (s *State) beginRound(at time.Time) {
	s.RoundType = roundTypeFor(s.Round)
	s.resetBoard()
	if len(s.roundQuestions) > 0 {
		s.Board.Load(s.roundQuestions[(s.Round-1)%len(s.roundQuestions)], multiplierFor(s.Round))
	}
	s.resetFaceoff(true)
	s.Faceoff.Team1Index = s.Round - 1
	s.Faceoff.Team2Index = s.Round - 1
	s.Faceoff.Player1ID = s.memberAt(Team1, s.Faceoff.Team1Index)
	s.Faceoff.Player2ID = s.memberAt(Team2, s.Faceoff.Team2Index)
	s.Buzzer.Open()
	s.setPhase(PhaseFaceoff)
	s.logEvent(at, "roundStarted", "", NoTeam, map[string]any{
		"round":      s.Round,
		"roundType":  string(s.RoundType),
		"multiplier": s.Board.Multiplier,
		"questionId": s.Board.QuestionID,
	})
}

func (s *State) resolveRound(teamID TeamID, at time.Time) {
	s.awardPointsToTeam(teamID, at)
	s.setPhase(PhaseRoundEnd)
	s.logEvent(at, "roundEnd", "", teamID, map[string]any{"round": s.Round, "points": s.Board.PointsOnBoard})
}

func (s *State) finishGame(winner TeamID, reason EndReason, at time.Time) {
	s.cancelTimer()
	s.WinningTeam = winner
	s.EndReason = reason
	s.finished = s.started
	s.setPhase(PhaseGameOver)
	s.logEvent(at, "gameOver", "", winner, map[string]any{
		"reason": string(reason),
		"team1":  s.team(Team1).TotalScore,
		"team2":  s.team(Team2).TotalScore,
	})
}
