package game

import "time"

func newFastMoney(player1Seconds int) FastMoney {
	return FastMoney{
		CurrentPlayer: 1,
		TimerSeconds:  player1Seconds,
	}
}

func blankFastMoneyAnswers() []FastMoneyAnswer {
	answers := make([]FastMoneyAnswer, FastMoneyQuestionCount)
	for i := range answers {
		answers[i].QuestionIndex = i
	}
	return answers
}

// Select designates the two fast-money players.
func (f *FastMoney) Select(player1ID, player2ID string) {
	f.Player1ID = player1ID
	f.Player2ID = player2ID
}

// Start resets both players' answers and totals and takes the first
// FastMoneyQuestionCount questions.
func (f *FastMoney) Start(questions []Question, player1Seconds int) {
	if len(questions) > FastMoneyQuestionCount {
		questions = questions[:FastMoneyQuestionCount]
	}
	f.Questions = append([]Question(nil), questions...)
	f.Player1Answers = blankFastMoneyAnswers()
	f.Player2Answers = blankFastMoneyAnswers()
	f.Player1Total = 0
	f.Player2Total = 0
	f.CurrentPlayer = 1
	f.QuestionIndex = 0
	f.TimerSeconds = player1Seconds
	f.Player1Done = false
	f.Player2Done = false
	f.Started = true
}

func (f *FastMoney) playerID(num int) string {
	switch num {
	case 1:
		return f.Player1ID
	case 2:
		return f.Player2ID
	}
	return ""
}

func (f *FastMoney) answers(num int) []FastMoneyAnswer {
	switch num {
	case 1:
		return f.Player1Answers
	case 2:
		return f.Player2Answers
	}
	return nil
}

func (f *FastMoney) done(num int) bool {
	if num == 1 {
		return f.Player1Done
	}
	return f.Player2Done
}

func (f *FastMoney) questionCount() int {
	if len(f.Questions) < FastMoneyQuestionCount {
		return len(f.Questions)
	}
	return FastMoneyQuestionCount
}

// Submit records text for the active player's current question and advances.
// It reports whether the player has now answered every question.
func (f *FastMoney) Submit(text string) bool {
	answers := f.answers(f.CurrentPlayer)
	if f.QuestionIndex < len(answers) {
		answers[f.QuestionIndex].Answer = text
		answers[f.QuestionIndex].Submitted = true
	}
	f.QuestionIndex++
	return f.QuestionIndex >= f.questionCount()
}

// finishTurn closes the active player's turn and hands over to player 2.
func (f *FastMoney) finishTurn(player2Seconds int) {
	if f.CurrentPlayer == 1 {
		f.Player1Done = true
		f.CurrentPlayer = 2
		f.QuestionIndex = 0
		f.TimerSeconds = player2Seconds
		return
	}
	f.Player2Done = true
	f.TimerSeconds = 0
}

// Reveal scores one answer. Player 2 scores nothing for repeating player 1's
// answer to the same question, so the combined total counts it once.
func (f *FastMoney) Reveal(num, questionIndex int) (int, bool) {
	answers := f.answers(num)
	if questionIndex < 0 || questionIndex >= len(answers) || questionIndex >= len(f.Questions) {
		return 0, false
	}
	entry := &answers[questionIndex]
	if entry.Revealed {
		return 0, false
	}
	points := surveyPoints(f.Questions[questionIndex], entry.Answer)
	if num == 2 && points > 0 {
		first := f.Player1Answers[questionIndex]
		if first.Submitted && normalizeAnswer(first.Answer) == normalizeAnswer(entry.Answer) {
			points = 0
		}
	}
	entry.Points = points
	entry.Revealed = true
	if num == 1 {
		f.Player1Total += points
	} else {
		f.Player2Total += points
	}
	return points, true
}

func (f *FastMoney) Combined() int {
	return f.Player1Total + f.Player2Total
}

func surveyPoints(q Question, answer string) int {
	needle := normalizeAnswer(answer)
	if needle == "" {
		return 0
	}
	for _, candidate := range q.Answers {
		if normalizeAnswer(candidate.Text) == needle {
			return candidate.Points
		}
	}
	return 0
}

// fastMoneyTeam is the team playing fast money: player 1's team, else
// player 2's.
func (s *State) fastMoneyTeam() TeamID {
	if team := s.teamOf(s.FastMoney.Player1ID); team.Valid() {
		return team
	}
	return s.teamOf(s.FastMoney.Player2ID)
}

func (s *State) endFastMoneyTurn(at time.Time) {
	player := s.FastMoney.CurrentPlayer
	s.cancelTimer()
	s.FastMoney.finishTurn(s.Rules.FastMoneyPlayer2Seconds)
	s.logEvent(at, "fastMoneyTurnEnd", s.FastMoney.playerID(player), s.teamOf(s.FastMoney.playerID(player)), map[string]any{"player": player})
}
