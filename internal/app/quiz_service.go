package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"quizwise-service/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// QuizGenerator produces quiz content from the remote generation service.
type QuizGenerator interface {
	GenerateTopicQuiz(ctx context.Context, topic string, numQuestions int) (domain.GeneratedQuiz, error)
	GeneratePDFQuiz(ctx context.Context, pdfURL, title string, numQuestions int) (domain.GeneratedQuiz, error)
	AnalyzePDF(ctx context.Context, pdfURL, title string) (json.RawMessage, error)
}

// ArchivedResult is a completed quiz result as stored by a ResultArchive.
type ArchivedResult struct {
	SessionID string            `json:"sessionId"`
	Result    domain.QuizResult `json:"result"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ResultArchive persists completed quiz results. Archiving is best-effort;
// failures never block grading.
type ResultArchive interface {
	SaveResult(ctx context.Context, sessionID string, result domain.QuizResult) error
	RecentResults(ctx context.Context, limit int) ([]ArchivedResult, error)
}

// StartedQuiz is returned when a generation request succeeds and a session opens.
type StartedQuiz struct {
	SessionID      string            `json:"sessionId"`
	Questions      []domain.Question `json:"questions"`
	GenerationTime float64           `json:"generationTime"`
}

// Report is the full results view for a completed session.
type Report struct {
	Result      domain.QuizResult `json:"result"`
	Breakdown   Breakdown         `json:"breakdown"`
	Suggestions []string          `json:"suggestions"`
	Tier        string            `json:"tier"`
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions  SessionRepository
	generator QuizGenerator
	archive   ResultArchive
	newID     func() string
	now       func() time.Time
}

// NewQuizService wires the service. archive may be nil when result archiving
// is not configured.
func NewQuizService(sessions SessionRepository, generator QuizGenerator, archive ResultArchive) *QuizService {
	return &QuizService{
		sessions:  sessions,
		generator: generator,
		archive:   archive,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// StartTopicQuiz generates a quiz for a free-text topic and opens a session.
func (s *QuizService) StartTopicQuiz(ctx context.Context, topic string, numQuestions int) (StartedQuiz, error) {
	if strings.TrimSpace(topic) == "" {
		return StartedQuiz{}, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}
	quiz, err := s.generator.GenerateTopicQuiz(ctx, topic, numQuestions)
	if err != nil {
		return StartedQuiz{}, err
	}
	return s.openSession(quiz), nil
}

// StartPDFQuiz generates a quiz from a PDF document URL and opens a session.
// PDF reachability and validity are the generation service's responsibility.
func (s *QuizService) StartPDFQuiz(ctx context.Context, pdfURL, title string, numQuestions int) (StartedQuiz, error) {
	if strings.TrimSpace(pdfURL) == "" {
		return StartedQuiz{}, fmt.Errorf("%w: pdfUrl is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(title) == "" {
		return StartedQuiz{}, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	quiz, err := s.generator.GeneratePDFQuiz(ctx, pdfURL, title, numQuestions)
	if err != nil {
		return StartedQuiz{}, err
	}
	return s.openSession(quiz), nil
}

func (s *QuizService) openSession(quiz domain.GeneratedQuiz) StartedQuiz {
	session := newSessionWithClock(s.newID(), quiz.Questions, s.now)
	s.sessions.Put(session)
	return StartedQuiz{
		SessionID:      session.ID(),
		Questions:      session.Questions(),
		GenerationTime: quiz.GenerationTime,
	}
}

// AnalyzePDF forwards a document analysis request and returns the opaque payload.
func (s *QuizService) AnalyzePDF(ctx context.Context, pdfURL, title string) (json.RawMessage, error) {
	if strings.TrimSpace(pdfURL) == "" {
		return nil, fmt.Errorf("%w: pdfUrl is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	return s.generator.AnalyzePDF(ctx, pdfURL, title)
}

// SaveAnswer records the answer text for a zero-based question index.
func (s *QuizService) SaveAnswer(_ context.Context, sessionID string, index int, answer string) (Progress, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Progress{}, domain.ErrSessionNotFound
	}
	return session.saveAnswer(index, answer)
}

// Submit grades the session, archives the result when an archive is
// configured, and returns the full report.
func (s *QuizService) Submit(ctx context.Context, sessionID string) (Report, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Report{}, domain.ErrSessionNotFound
	}
	result, err := session.submit()
	if err != nil {
		return Report{}, err
	}
	if s.archive != nil {
		if err := s.archive.SaveResult(ctx, sessionID, result); err != nil {
			log.Printf("archive result for session %s: %v", sessionID, err)
		}
	}
	return buildReport(result), nil
}

// Report returns the results view for an already-submitted session.
func (s *QuizService) Report(_ context.Context, sessionID string) (Report, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Report{}, domain.ErrSessionNotFound
	}
	result, ok := session.resultSnapshot()
	if !ok {
		return Report{}, domain.ErrResultNotReady
	}
	return buildReport(result), nil
}

// Retake resets a completed session onto the same question list.
func (s *QuizService) Retake(_ context.Context, sessionID string) (Progress, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Progress{}, domain.ErrSessionNotFound
	}
	return session.retake()
}

// Close discards the session; nothing about it survives except archived results.
func (s *QuizService) Close(_ context.Context, sessionID string) error {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions.Delete(sessionID)
	return nil
}

// Progress returns a point-in-time snapshot of the session.
func (s *QuizService) Progress(_ context.Context, sessionID string) (Progress, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Progress{}, domain.ErrSessionNotFound
	}
	return session.progress(), nil
}

// Subscribe returns a channel that receives progress updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan Progress, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// RecentResults lists archived results, newest first.
func (s *QuizService) RecentResults(ctx context.Context, limit int) ([]ArchivedResult, error) {
	if s.archive == nil {
		return nil, domain.ErrArchiveNotConfigured
	}
	if limit <= 0 {
		limit = 20
	}
	return s.archive.RecentResults(ctx, limit)
}

func buildReport(result domain.QuizResult) Report {
	breakdown := Summarize(result)
	return Report{
		Result:      result,
		Breakdown:   breakdown,
		Suggestions: Suggestions(result, breakdown),
		Tier:        PerformanceTier(result.Percentage),
	}
}
