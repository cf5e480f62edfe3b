package worker

// State is the executor state of one instance.
type State int32

const (
	StateIdle State = iota
	StateExecuting
	StateResponding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateResponding:
		return "responding"
	default:
		return "invalid"
	}
}

// validTransitions maps each state to the states it may move to.
var validTransitions = map[State]map[State]bool{
	StateIdle: {
		StateExecuting: true,
	},
	StateExecuting: {
		StateResponding: true,
		StateIdle:       true,
	},
	StateResponding: {
		StateExecuting: true,
	},
}

// ValidTransition reports whether moving from one state to another is allowed.
func ValidTransition(from, to State) bool {
	return validTransitions[from][to]
}
