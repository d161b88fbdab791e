package game

import "errors"

var (
	// ErrInvalidInput means a required value (player, hunt, coordinates) was
	// missing or out of range. No upstream call was made.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidAnswer means the raw answer does not fit the question's input.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrNoActiveSession means the operation needs a session that does not exist.
	ErrNoActiveSession = errors.New("no active session")
	// ErrNotAwaitingAnswer means there is no question on screen to act on.
	ErrNotAwaitingAnswer = errors.New("not awaiting an answer")
	// ErrNotCompleted means results were requested before the hunt finished.
	ErrNotCompleted = errors.New("hunt not completed")
	// ErrRequestInFlight means another operation on the same controller is
	// still running.
	ErrRequestInFlight = errors.New("request already in flight")

	errInvalidTransition = errors.New("invalid state transition")
)
