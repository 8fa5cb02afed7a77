package game

import (
	"strings"
	"time"
)

// Load replaces the board with the question's answers. Slots keep the order
// supplied by the question bank.
func (b *Board) Load(q Question, multiplier int) {
	b.QuestionID = q.ID
	b.QuestionText = q.Text
	b.Slots = make([]AnswerSlot, 0, len(q.Answers))
	for i, answer := range q.Answers {
		b.Slots = append(b.Slots, AnswerSlot{Index: i, Text: answer.Text, Points: answer.Points})
	}
	b.Strikes = 0
	b.Multiplier = multiplier
	b.ControllingTeam = NoTeam
	b.recompute()
}

// Reveal flips the slot's revealed flag and recomputes points-on-board.
func (b *Board) Reveal(index int) bool {
	if index < 0 || index >= len(b.Slots) || b.Slots[index].Revealed {
		return false
	}
	b.Slots[index].Revealed = true
	b.recompute()
	return true
}

func (b *Board) recompute() {
	b.PointsOnBoard = b.expectedPoints()
}

func (b *Board) expectedPoints() int {
	total := 0
	for _, slot := range b.Slots {
		if slot.Revealed {
			total += slot.Points
		}
	}
	return total * b.Multiplier
}

// AddStrike increments strikes, clamped at MaxStrikes.
func (b *Board) AddStrike() int {
	if b.Strikes < MaxStrikes {
		b.Strikes++
	}
	return b.Strikes
}

func (b *Board) AllRevealed() bool {
	for _, slot := range b.Slots {
		if !slot.Revealed {
			return false
		}
	}
	return true
}

// Match returns the index of the unrevealed slot whose text equals answer,
// ignoring case and surrounding whitespace, or -1.
func (b *Board) Match(answer string) int {
	needle := normalizeAnswer(answer)
	if needle == "" {
		return noMatch
	}
	for _, slot := range b.Slots {
		if slot.Revealed {
			continue
		}
		if normalizeAnswer(slot.Text) == needle {
			return slot.Index
		}
	}
	return noMatch
}

func (b *Board) slotValue(index int) int {
	if index < 0 || index >= len(b.Slots) {
		return 0
	}
	return b.Slots[index].Points * b.Multiplier
}

// awardPointsToTeam banks points-on-board for the round. It runs at most once
// per round.
func (s *State) awardPointsToTeam(teamID TeamID, at time.Time) {
	if s.roundAwarded {
		return
	}
	s.roundAwarded = true
	team := s.team(teamID)
	if team == nil {
		return
	}
	points := s.Board.PointsOnBoard
	team.Score += points
	team.TotalScore += points
	s.logEvent(at, "pointsAwarded", "", teamID, map[string]any{"points": points, "round": s.Round})
}

func (s *State) setControl(teamID TeamID) {
	s.Board.ControllingTeam = teamID
	for id, team := range s.Teams {
		team.HasControl = id == teamID
	}
}

// revealForPlayer reveals a matched slot and credits the answering player.
func (s *State) revealForPlayer(index int, playerID string, at time.Time) {
	if !s.Board.Reveal(index) {
		return
	}
	if player, ok := s.Players[playerID]; ok {
		player.Score += s.Board.slotValue(index)
	}
	s.logEvent(at, "reveal", playerID, s.teamOf(playerID), map[string]any{
		"index":  index,
		"text":   s.Board.Slots[index].Text,
		"points": s.Board.Slots[index].Points,
	})
}

func normalizeAnswer(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
