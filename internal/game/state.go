package game

import "fmt"

// State is the position of a controller in the hunt lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateAwaitingAnswer
	StateAdvancing
	StateCompleted
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateStarting:       "starting",
	StateAwaitingAnswer: "awaiting_answer",
	StateAdvancing:      "advancing",
	StateCompleted:      "completed",
	StateFailed:         "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type event int

const (
	evStart event = iota
	evStarted
	evFail
	evQuestion
	evAdvance
	evAdvanced
	evAdvanceFailed
	evCompleted
)

var eventNames = [...]string{
	evStart:         "start",
	evStarted:       "started",
	evFail:          "fail",
	evQuestion:      "question",
	evAdvance:       "advance",
	evAdvanced:      "advanced",
	evAdvanceFailed: "advance_failed",
	evCompleted:     "completed",
}

func (e event) String() string { return eventNames[e] }

// transitions lists every legal edge. A new hunt may be started from any
// state that is not waiting on the upstream API.
var transitions = map[State]map[event]State{
	StateIdle: {
		evStart: StateStarting,
	},
	StateStarting: {
		evStarted: StateAwaitingAnswer,
		evFail:    StateFailed,
	},
	StateAwaitingAnswer: {
		evStart:     StateStarting,
		evQuestion:  StateAwaitingAnswer,
		evAdvance:   StateAdvancing,
		evCompleted: StateCompleted,
		evFail:      StateFailed,
	},
	StateAdvancing: {
		evAdvanced:      StateAwaitingAnswer,
		evAdvanceFailed: StateAwaitingAnswer,
		evCompleted:     StateCompleted,
		evFail:          StateFailed,
	},
	StateCompleted: {
		evStart: StateStarting,
	},
	StateFailed: {
		evStart: StateStarting,
	},
}

func transition(from State, ev event) (State, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("%w: %s in %s", errInvalidTransition, ev, from)
	}
	return to, nil
}
