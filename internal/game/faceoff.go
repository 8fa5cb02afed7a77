package game

import "time"

func canBuzz(s *State, a Action) bool {
	if s.Faceoff.AwaitingPlayOrPass || !s.Buzzer.Active || s.Buzzer.Locked {
		return false
	}
	return a.SenderID == s.Faceoff.Player1ID || a.SenderID == s.Faceoff.Player2ID
}

func applyBuzz(s *State, a Action, at time.Time) bool {
	if !s.Buzzer.RecordBuzz(a.SenderID, s.nowMillis(at)) {
		return false
	}
	s.Faceoff.CurrentAnswerer = a.SenderID
	s.logEvent(at, "buzz", a.SenderID, s.teamOf(a.SenderID), nil)
	s.startFaceoffTimer()
	return true
}

func canStartFaceoff(s *State, a Action) bool {
	if s.Faceoff.AwaitingPlayOrPass {
		return false
	}
	first, ok1 := s.Players[a.Player1ID]
	second, ok2 := s.Players[a.Player2ID]
	if !ok1 || !ok2 || first.IsSpectator || second.IsSpectator {
		return false
	}
	return first.TeamID.Valid() && second.TeamID.Valid() && first.TeamID != second.TeamID
}

func applyStartFaceoff(s *State, a Action, at time.Time) bool {
	s.cancelTimer()
	s.resetFaceoff(false)
	s.Faceoff.Player1ID = a.Player1ID
	s.Faceoff.Player2ID = a.Player2ID
	s.Buzzer.Open()
	s.setPhase(PhaseFaceoff)
	s.logEvent(at, "faceoffStarted", a.SenderID, NoTeam, map[string]any{
		"player1": a.Player1ID,
		"player2": a.Player2ID,
	})
	return true
}

func (s *State) startFaceoffTimer() {
	if s.Rules.FaceoffAnswerSeconds > 0 {
		s.startTimer(TimerFaceoff, s.Rules.FaceoffAnswerSeconds)
	}
}

// faceoffOpponent returns the other member of the designated pair.
func (s *State) faceoffOpponent(id string) string {
	if id == s.Faceoff.Player1ID {
		return s.Faceoff.Player2ID
	}
	return s.Faceoff.Player1ID
}

// topUnrevealed is the index of the highest-ranked slot still hidden.
func (b *Board) topUnrevealed() int {
	for _, slot := range b.Slots {
		if !slot.Revealed {
			return slot.Index
		}
	}
	return noMatch
}

// faceoffAnswer resolves one face-off answer. The first answerer wins
// outright with the top slot; otherwise the opponent answers and the
// better-ranked match wins. Two misses rotate to the next pair.
func (s *State) faceoffAnswer(playerID, answer string, at time.Time) {
	s.cancelTimer()
	top := s.Board.topUnrevealed()
	index := s.Board.Match(answer)
	if index != noMatch {
		s.revealForPlayer(index, playerID, at)
	}
	teamID := s.teamOf(playerID)

	if !s.Faceoff.WaitingForSecond {
		s.Faceoff.FirstAnswer = answer
		s.Faceoff.FirstIndex = index
		s.Faceoff.FirstTeam = teamID
		s.Faceoff.firstAnswerer = playerID
		s.logEvent(at, "faceoffAnswer", playerID, teamID, map[string]any{"answer": answer, "index": index})
		if index != noMatch && index == top {
			s.faceoffWon(teamID, playerID, at)
			return
		}
		s.Faceoff.WaitingForSecond = true
		s.Faceoff.CurrentAnswerer = s.faceoffOpponent(playerID)
		s.startFaceoffTimer()
		return
	}

	s.Faceoff.SecondAnswer = answer
	s.Faceoff.SecondIndex = index
	s.Faceoff.WaitingForSecond = false
	s.logEvent(at, "faceoffAnswer", playerID, teamID, map[string]any{"answer": answer, "index": index})
	first := s.Faceoff.FirstIndex
	switch {
	case index != noMatch && (first == noMatch || index < first):
		s.faceoffWon(teamID, playerID, at)
	case first != noMatch:
		s.faceoffWon(s.Faceoff.FirstTeam, s.Faceoff.firstAnswerer, at)
	default:
		s.faceoffBothMissed(at)
	}
}

func (s *State) faceoffWon(teamID TeamID, playerID string, at time.Time) {
	s.cancelTimer()
	s.Buzzer.Close()
	s.Faceoff.WinnerID = playerID
	s.Faceoff.WaitingForSecond = false
	s.Faceoff.CurrentAnswerer = ""
	s.Faceoff.AwaitingPlayOrPass = true
	s.setControl(teamID)
	s.logEvent(at, "faceoffWon", playerID, teamID, nil)
}

// faceoffBothMissed advances both teams' rotation. The team that answered
// first keeps answering first, without a new buzz.
func (s *State) faceoffBothMissed(at time.Time) {
	if s.Board.AllRevealed() {
		s.roundAwarded = true
		s.setPhase(PhaseRoundEnd)
		s.logEvent(at, "roundEnd", "", NoTeam, map[string]any{"round": s.Round, "exhausted": true})
		return
	}
	firstTeam := s.Faceoff.FirstTeam
	s.resetFaceoff(false)
	s.Faceoff.Team1Index++
	s.Faceoff.Team2Index++
	s.Faceoff.Player1ID = s.memberAt(Team1, s.Faceoff.Team1Index)
	s.Faceoff.Player2ID = s.memberAt(Team2, s.Faceoff.Team2Index)
	s.Faceoff.FirstTeam = firstTeam
	if firstTeam == Team2 {
		s.Faceoff.CurrentAnswerer = s.Faceoff.Player2ID
	} else {
		s.Faceoff.CurrentAnswerer = s.Faceoff.Player1ID
	}
	s.setPhase(PhaseFaceoff)
	s.logEvent(at, "faceoffRotated", s.Faceoff.CurrentAnswerer, firstTeam, map[string]any{
		"team1Index": s.Faceoff.Team1Index,
		"team2Index": s.Faceoff.Team2Index,
	})
	s.startFaceoffTimer()
}

// faceoffTimeout treats an expired answer window as a miss.
func (s *State) faceoffTimeout(at time.Time) {
	if s.Phase != PhaseFaceoff || s.Faceoff.AwaitingPlayOrPass || s.Faceoff.CurrentAnswerer == "" {
		return
	}
	s.faceoffAnswer(s.Faceoff.CurrentAnswerer, "", at)
}

func canPlayOrPass(s *State, a Action) bool {
	return s.Faceoff.AwaitingPlayOrPass && s.teamOf(a.SenderID) == s.Board.ControllingTeam
}

func applyPlayOrPass(s *State, a Action, at time.Time) bool {
	teamID := s.Board.ControllingTeam
	if a.Choice == "pass" {
		teamID = teamID.Opponent()
	}
	s.logEvent(at, "playOrPass", a.SenderID, s.teamOf(a.SenderID), map[string]any{"choice": a.Choice})
	s.beginPlay(teamID, at)
	return true
}

func (s *State) beginPlay(teamID TeamID, at time.Time) {
	s.Faceoff.AwaitingPlayOrPass = false
	s.setControl(teamID)
	s.setPhase(PhasePlay)
	if s.Board.AllRevealed() {
		s.resolveRound(teamID, at)
	}
}
