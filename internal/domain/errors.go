package domain

import "errors"

var (
	// ErrQuizGeneration is returned when the remote generation call fails,
	// whether due to a non-success status or a transport failure.
	ErrQuizGeneration = errors.New("quiz generation failed")
	// ErrPDFAnalysis is the analysis-endpoint equivalent of ErrQuizGeneration.
	ErrPDFAnalysis = errors.New("pdf analysis failed")
	// ErrMalformedQuiz indicates the generation service returned a payload
	// that does not satisfy the quiz schema.
	ErrMalformedQuiz = errors.New("malformed quiz payload")
	// ErrSessionNotFound is returned when a quiz session does not exist or has expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrEmptyQuiz indicates a grading request with no questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrQuestionIndex indicates an answer aimed at a question that is not in the quiz.
	ErrQuestionIndex = errors.New("question index out of range")
	// ErrQuizNotActive indicates an answer submitted outside the in-progress state.
	ErrQuizNotActive = errors.New("quiz is not in progress")
	// ErrResultNotReady indicates a results request before the quiz was submitted.
	ErrResultNotReady = errors.New("quiz has not been submitted")
	// ErrInvalidTransition indicates a session operation that the state machine forbids.
	ErrInvalidTransition = errors.New("invalid session state transition")
	// ErrInvalidInput indicates a request that fails basic argument validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrArchiveNotConfigured indicates the result archive is not enabled.
	ErrArchiveNotConfigured = errors.New("result archive not configured")
)
