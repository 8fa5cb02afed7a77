package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

var ErrNoQuestions = errors.New("no questions available")

// QuestionSource supplies the survey questions for one game.
type QuestionSource interface {
	Questions(ctx context.Context, rounds, fastMoney int) (roundQuestions, fastMoneyQuestions []Question, err error)
}

// GameResults are the final standings of one finished game, taken from the
// snapshot committed on entering gameOver.
type GameResults struct {
	SessionID  string
	Code       string
	Winner     TeamID
	EndReason  EndReason
	Players    []PlayerView
	Teams      []TeamView
	FinishedAt time.Time
}

// ResultsRecorder persists final standings once a started game ends.
type ResultsRecorder interface {
	RecordResults(ctx context.Context, results GameResults) error
}

// EventSink receives audit events as they are logged. Implementations must
// not block the caller.
type EventSink interface {
	Publish(sessionID string, events []GameEvent)
}

type StaticQuestions struct {
	Rounds    []Question
	FastMoney []Question
}

// DefaultQuestions is the built-in bank used when no database is configured.
func DefaultQuestions() StaticQuestions {
	return StaticQuestions{Rounds: builtinRoundQuestions, FastMoney: builtinFastMoneyQuestions}
}

func (q StaticQuestions) Questions(_ context.Context, rounds, fastMoney int) ([]Question, []Question, error) {
	if len(q.Rounds) == 0 {
		return nil, nil, ErrNoQuestions
	}
	return pick(q.Rounds, rounds), pick(q.FastMoney, fastMoney), nil
}

func pick(pool []Question, n int) []Question {
	out := append([]Question(nil), pool...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

var builtinRoundQuestions = []Question{
	{ID: "builtin-1", Text: "Name something people bring to the beach", Answers: []SurveyAnswer{
		{Text: "Towel", Points: 35}, {Text: "Sunscreen", Points: 25}, {Text: "Umbrella", Points: 15},
		{Text: "Cooler", Points: 10}, {Text: "Chair", Points: 8}, {Text: "Book", Points: 7},
	}},
	{ID: "builtin-2", Text: "Name a pet that lives in a cage", Answers: []SurveyAnswer{
		{Text: "Hamster", Points: 40}, {Text: "Bird", Points: 30}, {Text: "Rabbit", Points: 12},
		{Text: "Guinea Pig", Points: 10}, {Text: "Mouse", Points: 8},
	}},
	{ID: "builtin-3", Text: "Name something you do before going to bed", Answers: []SurveyAnswer{
		{Text: "Brush Teeth", Points: 42}, {Text: "Shower", Points: 20}, {Text: "Read", Points: 14},
		{Text: "Set Alarm", Points: 11}, {Text: "Pray", Points: 7}, {Text: "Watch TV", Points: 6},
	}},
	{ID: "builtin-4", Text: "Name a fruit that is yellow", Answers: []SurveyAnswer{
		{Text: "Banana", Points: 55}, {Text: "Lemon", Points: 25}, {Text: "Pineapple", Points: 10},
		{Text: "Mango", Points: 6}, {Text: "Pear", Points: 4},
	}},
	{ID: "builtin-5", Text: "Name something found in a kitchen drawer", Answers: []SurveyAnswer{
		{Text: "Spoon", Points: 30}, {Text: "Knife", Points: 25}, {Text: "Fork", Points: 20},
		{Text: "Scissors", Points: 10}, {Text: "Batteries", Points: 8}, {Text: "Tape", Points: 7},
	}},
}

var builtinFastMoneyQuestions = []Question{
	{ID: "builtin-fm-1", Text: "Name a day of the week", Answers: []SurveyAnswer{
		{Text: "Friday", Points: 38}, {Text: "Monday", Points: 25}, {Text: "Saturday", Points: 20}, {Text: "Sunday", Points: 12},
	}},
	{ID: "builtin-fm-2", Text: "Name a color of the rainbow", Answers: []SurveyAnswer{
		{Text: "Red", Points: 40}, {Text: "Blue", Points: 25}, {Text: "Green", Points: 15}, {Text: "Yellow", Points: 12},
	}},
	{ID: "builtin-fm-3", Text: "Name something with wheels", Answers: []SurveyAnswer{
		{Text: "Car", Points: 50}, {Text: "Bike", Points: 25}, {Text: "Skateboard", Points: 10}, {Text: "Bus", Points: 8},
	}},
	{ID: "builtin-fm-4", Text: "Name a breakfast food", Answers: []SurveyAnswer{
		{Text: "Eggs", Points: 45}, {Text: "Pancakes", Points: 20}, {Text: "Cereal", Points: 18}, {Text: "Bacon", Points: 10},
	}},
	{ID: "builtin-fm-5", Text: "Name a sport played with a ball", Answers: []SurveyAnswer{
		{Text: "Soccer", Points: 35}, {Text: "Basketball", Points: 30}, {Text: "Football", Points: 20}, {Text: "Tennis", Points: 8},
	}},
}
