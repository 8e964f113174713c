package app

import (
	"sync"
	"time"

	"quizwise-service/internal/domain"
)

// Progress is a read-only snapshot of a session, broadcast to subscribers on
// every change and polled by the transport's elapsed-time ticker.
type Progress struct {
	SessionID      string              `json:"sessionId"`
	State          domain.SessionState `json:"state"`
	Answered       int                 `json:"answered"`
	TotalQuestions int                 `json:"totalQuestions"`
	ElapsedSeconds int                 `json:"elapsedSeconds"`
}

// Session owns one quiz run: the immutable question list, the in-progress
// answer map, the start time, and eventually the graded result. All access
// goes through the session mutex; callers only ever see copies.
type Session struct {
	id        string
	questions []domain.Question
	now       func() time.Time

	mu          sync.RWMutex
	state       domain.SessionState
	answers     map[int]string
	startedAt   time.Time
	result      *domain.QuizResult
	subscribers map[chan Progress]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, questions []domain.Question) *Session {
	return newSessionWithClock(id, questions, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, questions []domain.Question, now func() time.Time) *Session {
	return newSessionWithClock(id, questions, now)
}

func newSessionWithClock(id string, questions []domain.Question, now func() time.Time) *Session {
	return &Session{
		id:          id,
		questions:   questions,
		now:         now,
		state:       domain.StateInProgress,
		answers:     make(map[int]string),
		startedAt:   now(),
		subscribers: make(map[chan Progress]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Questions returns a copy of the question list.
func (s *Session) Questions() []domain.Question {
	questions := make([]domain.Question, len(s.questions))
	copy(questions, s.questions)
	return questions
}

func (s *Session) saveAnswer(index int, answer string) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateInProgress {
		return Progress{}, domain.ErrQuizNotActive
	}
	if index < 0 || index >= len(s.questions) {
		return Progress{}, domain.ErrQuestionIndex
	}
	s.answers[index] = answer
	return s.broadcastLocked(), nil
}

func (s *Session) submit() (domain.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransition(domain.StateCompleted) {
		return domain.QuizResult{}, domain.ErrInvalidTransition
	}
	result, err := Grade(s.questions, s.answers, s.now().Sub(s.startedAt))
	if err != nil {
		return domain.QuizResult{}, err
	}
	s.state = domain.StateCompleted
	s.result = &result
	s.broadcastLocked()
	return result, nil
}

// retake clears answers and the result, restarts the clock, and reuses the
// same in-memory question list; no new fetch happens.
func (s *Session) retake() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransition(domain.StateInProgress) {
		return Progress{}, domain.ErrInvalidTransition
	}
	s.state = domain.StateInProgress
	s.answers = make(map[int]string)
	s.result = nil
	s.startedAt = s.now()
	return s.broadcastLocked(), nil
}

func (s *Session) resultSnapshot() (domain.QuizResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

func (s *Session) progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

func (s *Session) subscribe() (<-chan Progress, func()) {
	ch := make(chan Progress, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.progressLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() Progress {
	progress := s.progressLocked()
	for ch := range s.subscribers {
		select {
		case ch <- progress:
		default:
			// Drop the stale update so a slow reader never blocks the broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- progress
		}
	}
	return progress
}

func (s *Session) progressLocked() Progress {
	elapsed := int(s.now().Sub(s.startedAt).Seconds())
	if s.state == domain.StateCompleted && s.result != nil {
		// The counter stops once the quiz is submitted.
		elapsed = s.result.TimeSpentSeconds
	}
	return Progress{
		SessionID:      s.id,
		State:          s.state,
		Answered:       len(s.answers),
		TotalQuestions: len(s.questions),
		ElapsedSeconds: elapsed,
	}
}
