package game

import "time"

func canSubmitAnswer(s *State, a Action) bool {
	player := s.Players[a.SenderID]
	switch s.Phase {
	case PhaseFaceoff:
		return !s.Faceoff.AwaitingPlayOrPass && s.Faceoff.CurrentAnswerer != "" && a.SenderID == s.Faceoff.CurrentAnswerer
	case PhasePlay:
		return !player.IsSpectator && player.IsConnected && player.TeamID == s.Board.ControllingTeam
	case PhaseSteal:
		return !s.StealAttempted && !player.IsSpectator && player.TeamID.Valid() && player.TeamID == s.Board.ControllingTeam.Opponent()
	}
	return false
}

func applySubmitAnswer(s *State, a Action, at time.Time) bool {
	switch s.Phase {
	case PhaseFaceoff:
		s.faceoffAnswer(a.SenderID, a.Answer, at)
	case PhasePlay:
		index := s.Board.Match(a.Answer)
		if index == noMatch {
			s.strike(a.SenderID, at)
			return true
		}
		s.revealForPlayer(index, a.SenderID, at)
		if s.Board.AllRevealed() {
			s.resolveRound(s.Board.ControllingTeam, at)
		}
	case PhaseSteal:
		s.attemptSteal(a.SenderID, a.Answer, at)
	}
	return true
}

// strike records a miss by the controlling team. The third strike opens the
// steal.
func (s *State) strike(playerID string, at time.Time) {
	strikes := s.Board.AddStrike()
	s.logEvent(at, "strike", playerID, s.Board.ControllingTeam, map[string]any{"strikes": strikes})
	if strikes >= MaxStrikes {
		s.setPhase(PhaseSteal)
		s.logEvent(at, "stealOpen", "", s.Board.ControllingTeam.Opponent(), nil)
	}
}

// attemptSteal resolves the single steal answer. A correct steal banks the
// points already on the board for the stealing team before the stolen slot
// is uncovered.
func (s *State) attemptSteal(playerID, answer string, at time.Time) {
	s.StealAttempted = true
	stealer := s.teamOf(playerID)
	index := s.Board.Match(answer)
	if index == noMatch {
		s.failSteal(playerID, at)
		return
	}
	s.logEvent(at, "stealSucceeded", playerID, stealer, map[string]any{"answer": answer})
	s.awardPointsToTeam(stealer, at)
	s.revealForPlayer(index, playerID, at)
	s.resolveRound(stealer, at)
}

func (s *State) failSteal(playerID string, at time.Time) {
	s.StealAttempted = true
	s.logEvent(at, "stealFailed", playerID, s.Board.ControllingTeam.Opponent(), nil)
	s.resolveRound(s.Board.ControllingTeam, at)
}

func applyHostReveal(s *State, a Action, at time.Time) bool {
	if !s.Board.Reveal(a.Index) {
		return false
	}
	slot := s.Board.Slots[a.Index]
	s.logEvent(at, "reveal", a.SenderID, NoTeam, map[string]any{
		"index":  slot.Index,
		"text":   slot.Text,
		"points": slot.Points,
		"host":   true,
	})
	if s.Phase == PhasePlay && s.Board.AllRevealed() {
		s.resolveRound(s.Board.ControllingTeam, at)
	}
	return true
}

func applyPassControl(s *State, a Action, at time.Time) bool {
	target := s.Board.ControllingTeam.Opponent()
	if s.Phase == PhaseFaceoff {
		s.logEvent(at, "controlPassed", a.SenderID, target, nil)
		s.beginPlay(target, at)
		return true
	}
	s.setControl(target)
	s.logEvent(at, "controlPassed", a.SenderID, target, nil)
	return true
}
