package domain

// SessionState names a stage in the quiz session lifecycle. A session is
// created in StateInProgress (questions are fetched before the session
// exists), reaches StateCompleted only through a grading pass, and may go
// back to StateInProgress on a retake.
type SessionState string

const (
	StateInProgress SessionState = "in_progress"
	StateCompleted  SessionState = "completed"
)

// transitions is the explicit transition table for quiz sessions.
var transitions = map[SessionState]map[SessionState]bool{
	StateInProgress: {StateCompleted: true},
	StateCompleted:  {StateInProgress: true}, // retake
}

// CanTransition reports whether moving from s to next is legal.
func (s SessionState) CanTransition(next SessionState) bool {
	return transitions[s][next]
}
