package game

import "time"

func canFastMoneyAnswer(s *State, a Action) bool {
	fm := &s.FastMoney
	if !fm.Started || !s.Timer.Active || s.Timer.Kind != TimerFastMoney || s.Timer.Seconds <= 0 {
		return false
	}
	return a.SenderID == fm.playerID(fm.CurrentPlayer) && !fm.done(fm.CurrentPlayer)
}

func applyFastMoneyAnswer(s *State, a Action, at time.Time) bool {
	fm := &s.FastMoney
	questionIndex := fm.QuestionIndex
	finished := fm.Submit(a.Answer)
	s.logEvent(at, "fastMoneyAnswer", a.SenderID, s.teamOf(a.SenderID), map[string]any{
		"player":        fm.CurrentPlayer,
		"questionIndex": questionIndex,
	})
	if finished {
		s.endFastMoneyTurn(at)
	}
	return true
}

func canSelectFastMoneyPlayers(s *State, a Action) bool {
	if s.FastMoney.Started {
		return false
	}
	first, ok1 := s.Players[a.Player1ID]
	second, ok2 := s.Players[a.Player2ID]
	if !ok1 || !ok2 || first.IsSpectator || second.IsSpectator {
		return false
	}
	return first.TeamID.Valid() && first.TeamID == second.TeamID
}

func canRevealFastMoneyAnswer(s *State, a Action) bool {
	fm := &s.FastMoney
	if !fm.Started || a.QuestionIndex < 0 || a.QuestionIndex >= fm.questionCount() {
		return false
	}
	answers := fm.answers(a.PlayerNum)
	return a.QuestionIndex < len(answers) && !answers[a.QuestionIndex].Revealed
}

func applyRevealFastMoneyAnswer(s *State, a Action, at time.Time) bool {
	fm := &s.FastMoney
	points, ok := fm.Reveal(a.PlayerNum, a.QuestionIndex)
	if !ok {
		return false
	}
	playerID := fm.playerID(a.PlayerNum)
	if player, found := s.Players[playerID]; found {
		player.Score += points
	}
	s.logEvent(at, "fastMoneyReveal", playerID, s.teamOf(playerID), map[string]any{
		"player":        a.PlayerNum,
		"questionIndex": a.QuestionIndex,
		"points":        points,
	})
	return true
}

// applyEndFastMoney ends the game. A team named by the host wins outright;
// otherwise the session's FastMoneyRule decides.
func applyEndFastMoney(s *State, a Action, at time.Time) bool {
	s.cancelTimer()
	fmTeam := s.fastMoneyTeam()
	decision := FastMoneyDecision{Winner: a.TeamID, Reason: EndFastMoney}
	if !a.TeamID.Valid() {
		decision = s.Rules.FastMoneyRule.Decide(FastMoneyResult{
			Combined: s.FastMoney.Combined(),
			Team:     fmTeam,
			TeamTotals: map[TeamID]int{
				Team1: s.team(Team1).TotalScore,
				Team2: s.team(Team2).TotalScore,
			},
		})
	}
	if team := s.team(fmTeam); team != nil && decision.Bonus > 0 {
		team.Score += decision.Bonus
		team.TotalScore += decision.Bonus
	}
	s.logEvent(at, "fastMoneyEnded", a.SenderID, fmTeam, map[string]any{
		"combined": s.FastMoney.Combined(),
		"bonus":    decision.Bonus,
	})
	s.finishGame(decision.Winner, decision.Reason, at)
	return true
}
