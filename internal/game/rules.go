package game

// Rules are the per-session game parameters. Unset fast-money fields fall
// back to the defaults; a FaceoffAnswerSeconds of 0 disables the face-off
// answer window.
type Rules struct {
	FaceoffAnswerSeconds    int
	FastMoneyPlayer1Seconds int
	FastMoneyPlayer2Seconds int
	MaxPlayers              int
	FastMoneyRule           FastMoneyRule
}

func DefaultRules() Rules {
	return Rules{
		FaceoffAnswerSeconds:    10,
		FastMoneyPlayer1Seconds: 20,
		FastMoneyPlayer2Seconds: 25,
		MaxPlayers:              16,
		FastMoneyRule:           ThresholdRule{Threshold: 200},
	}
}

func (r Rules) withDefaults() Rules {
	defaults := DefaultRules()
	if r.FaceoffAnswerSeconds < 0 {
		r.FaceoffAnswerSeconds = 0
	}
	if r.FastMoneyPlayer1Seconds <= 0 {
		r.FastMoneyPlayer1Seconds = defaults.FastMoneyPlayer1Seconds
	}
	if r.FastMoneyPlayer2Seconds <= 0 {
		r.FastMoneyPlayer2Seconds = defaults.FastMoneyPlayer2Seconds
	}
	if r.FastMoneyRule == nil {
		r.FastMoneyRule = defaults.FastMoneyRule
	}
	return r
}

// FastMoneyResult is what a FastMoneyRule sees when fast money ends.
type FastMoneyResult struct {
	Combined   int
	Team       TeamID
	TeamTotals map[TeamID]int
}

// FastMoneyDecision is the rule's verdict. Bonus is added to Team's
// cumulative score before the game ends.
type FastMoneyDecision struct {
	Winner TeamID
	Reason EndReason
	Bonus  int
}

// FastMoneyRule decides the game winner from the fast-money outcome. The
// session engine never hardcodes the cutoff.
type FastMoneyRule interface {
	Decide(result FastMoneyResult) FastMoneyDecision
}

// ThresholdRule awards the game outright to the fast-money team when the
// combined total reaches Threshold. Below it the combined total is banked as
// ordinary points and the higher cumulative score wins.
type ThresholdRule struct {
	Threshold int
}

func (r ThresholdRule) Decide(result FastMoneyResult) FastMoneyDecision {
	if result.Team.Valid() && result.Combined >= r.Threshold {
		return FastMoneyDecision{Winner: result.Team, Reason: EndFastMoney}
	}
	totals := map[TeamID]int{Team1: result.TeamTotals[Team1], Team2: result.TeamTotals[Team2]}
	bonus := 0
	if result.Team.Valid() {
		bonus = result.Combined
		totals[result.Team] += bonus
	}
	return FastMoneyDecision{Winner: leader(totals), Reason: EndRounds, Bonus: bonus}
}

func leader(totals map[TeamID]int) TeamID {
	switch {
	case totals[Team1] > totals[Team2]:
		return Team1
	case totals[Team2] > totals[Team1]:
		return Team2
	default:
		return NoTeam
	}
}

func roundTypeFor(round int) RoundType {
	switch {
	case round <= 2:
		return RoundSingle
	case round == 3:
		return RoundDouble
	default:
		return RoundTriple
	}
}

func multiplierFor(round int) int {
	switch roundTypeFor(round) {
	case RoundDouble:
		return 2
	case RoundTriple:
		return 3
	default:
		return 1
	}
}
