package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizwise-service/internal/domain"
)

// DefaultQuestionCount is used when a request does not specify a count.
const DefaultQuestionCount = 15

// Client calls the remote quiz-generation service. Each call is a single
// fire-and-observe HTTP exchange: no retries, no caching, no deduplication
// of concurrent identical requests.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL. timeout <= 0 falls back
// to 30s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type quizResponse struct {
	Questions      []domain.Question `json:"questions"`
	GenerationTime float64           `json:"generationTime"`
	Success        bool              `json:"success"`
}

// GenerateTopicQuiz requests a quiz for a free-text topic.
func (c *Client) GenerateTopicQuiz(ctx context.Context, topic string, numQuestions int) (domain.GeneratedQuiz, error) {
	if numQuestions <= 0 {
		numQuestions = DefaultQuestionCount
	}
	raw, err := c.post(ctx, "/api/generate-topic-quiz", map[string]any{
		"topic":        topic,
		"numQuestions": numQuestions,
	})
	if err != nil {
		return domain.GeneratedQuiz{}, fmt.Errorf("%w: %v", domain.ErrQuizGeneration, err)
	}
	return parseQuiz(raw)
}

// GeneratePDFQuiz requests a quiz generated from a PDF document URL.
func (c *Client) GeneratePDFQuiz(ctx context.Context, pdfURL, title string, numQuestions int) (domain.GeneratedQuiz, error) {
	if numQuestions <= 0 {
		numQuestions = DefaultQuestionCount
	}
	raw, err := c.post(ctx, "/api/generate-fast-quiz", map[string]any{
		"pdfUrl":       pdfURL,
		"title":        title,
		"numQuestions": numQuestions,
	})
	if err != nil {
		return domain.GeneratedQuiz{}, fmt.Errorf("%w: %v", domain.ErrQuizGeneration, err)
	}
	return parseQuiz(raw)
}

// AnalyzePDF requests a document analysis and returns the payload as-is.
func (c *Client) AnalyzePDF(ctx context.Context, pdfURL, title string) (json.RawMessage, error) {
	raw, err := c.post(ctx, "/api/analyze-pdf", map[string]any{
		"pdfUrl": pdfURL,
		"title":  title,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPDFAnalysis, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: analysis response is not valid JSON", domain.ErrPDFAnalysis)
	}
	return json.RawMessage(raw), nil
}

// post issues one JSON request and returns the response body. Non-2xx status
// and transport failures are reported uniformly; the error body is not parsed.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

// parseQuiz validates the generation payload at the boundary so malformed
// responses surface as a typed error instead of propagating downstream.
func parseQuiz(raw []byte) (domain.GeneratedQuiz, error) {
	var resp quizResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return domain.GeneratedQuiz{}, fmt.Errorf("%w: %v", domain.ErrMalformedQuiz, err)
	}
	if !resp.Success {
		return domain.GeneratedQuiz{}, fmt.Errorf("%w: service reported failure", domain.ErrQuizGeneration)
	}
	if len(resp.Questions) == 0 {
		return domain.GeneratedQuiz{}, fmt.Errorf("%w: no questions", domain.ErrMalformedQuiz)
	}
	for i, q := range resp.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return domain.GeneratedQuiz{}, fmt.Errorf("%w: question %d has no text", domain.ErrMalformedQuiz, i)
		}
		if !q.Kind.Valid() {
			return domain.GeneratedQuiz{}, fmt.Errorf("%w: question %d has unknown type %q", domain.ErrMalformedQuiz, i, q.Kind)
		}
		if !q.Difficulty.Valid() {
			return domain.GeneratedQuiz{}, fmt.Errorf("%w: question %d has unknown difficulty %q", domain.ErrMalformedQuiz, i, q.Difficulty)
		}
		if q.CorrectAnswer == "" {
			return domain.GeneratedQuiz{}, fmt.Errorf("%w: question %d has no answer", domain.ErrMalformedQuiz, i)
		}
		if q.Kind.HasOptions() && len(q.Options) == 0 {
			return domain.GeneratedQuiz{}, fmt.Errorf("%w: question %d of type %q has no options", domain.ErrMalformedQuiz, i, q.Kind)
		}
	}
	return domain.GeneratedQuiz{
		Questions:      resp.Questions,
		GenerationTime: resp.GenerationTime,
	}, nil
}
