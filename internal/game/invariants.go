package game

import "fmt"

// CheckInvariants verifies the structural rules every committed state must
// satisfy. A non-nil result means the session can no longer be trusted.
func (s *State) CheckInvariants() error {
	if s.fault != nil {
		return s.fault
	}
	fail := func(format string, args ...any) error {
		s.fault = fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
		return s.fault
	}

	if s.Board.Strikes < 0 || s.Board.Strikes > MaxStrikes {
		return fail("strikes %d out of range", s.Board.Strikes)
	}
	if s.Board.PointsOnBoard < 0 || s.Board.PointsOnBoard != s.Board.expectedPoints() {
		return fail("points on board %d, expected %d", s.Board.PointsOnBoard, s.Board.expectedPoints())
	}
	if s.Round < 1 || s.Round > MaxRounds {
		return fail("round %d out of range", s.Round)
	}
	if s.Buzzer.Active && s.Buzzer.WinnerID != "" {
		return fail("buzzer active with winner %q", s.Buzzer.WinnerID)
	}
	if s.Phase != PhaseGameOver && (s.WinningTeam != NoTeam || s.EndReason != "") {
		return fail("game result set in phase %s", s.Phase)
	}

	seen := make(map[string]TeamID)
	for _, id := range []TeamID{Team1, Team2} {
		team := s.team(id)
		if team == nil {
			return fail("team %s missing", id)
		}
		if team.Score < 0 || team.TotalScore < 0 {
			return fail("team %s has negative score", id)
		}
		for _, member := range team.Members {
			if other, dup := seen[member]; dup {
				return fail("player %s on both %s and %s", member, other, id)
			}
			seen[member] = id
			player, ok := s.Players[member]
			if !ok || player.TeamID != id || player.IsSpectator {
				return fail("team %s lists invalid member %s", id, member)
			}
		}
	}
	for id, player := range s.Players {
		if player.IsSpectator {
			if player.TeamID != NoTeam {
				return fail("spectator %s assigned to %s", id, player.TeamID)
			}
			continue
		}
		if seen[id] != player.TeamID || !player.TeamID.Valid() {
			return fail("player %s has no team", id)
		}
	}
	return nil
}
