// Package treasurehunt defines the core domain types shared by the upstream
// client, the game flow and the web surface.
// It has no external dependencies.
package treasurehunt

import "time"

type Hunt struct {
	UUID string
	Name string
}

type QuestionType string

const (
	QuestionBoolean QuestionType = "BOOLEAN"
	QuestionMCQ     QuestionType = "MCQ"
	QuestionText    QuestionType = "TEXT"
	QuestionInteger QuestionType = "INTEGER"
	QuestionNumeric QuestionType = "NUMERIC"
	QuestionUnknown QuestionType = "UNKNOWN"
)

// ParseQuestionType maps a wire value onto a QuestionType. Anything it does
// not recognise becomes QuestionUnknown.
func ParseQuestionType(s string) QuestionType {
	switch t := QuestionType(s); t {
	case QuestionBoolean, QuestionMCQ, QuestionText, QuestionInteger, QuestionNumeric:
		return t
	default:
		return QuestionUnknown
	}
}

type Question struct {
	Text    string
	Type    QuestionType
	RawType string
	Choices []string
}

// QuestionResult is what the question endpoint yields: either the next
// question or the completion signal.
type QuestionResult struct {
	Completed bool
	Question  Question
}

type LeaderboardEntry struct {
	Player string
	Score  float64
}

// Result is a finished attempt as recorded in the local history.
type Result struct {
	ID         string
	ClientID   string
	Player     string
	HuntID     string
	Session    string
	Score      float64
	FinishedAt time.Time
}
