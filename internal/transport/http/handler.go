package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quizwise-service/internal/app"
	"quizwise-service/internal/domain"
)

// Handler exposes the quiz session use cases over REST.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/quizzes/topic", h.handleTopicQuiz)
	mux.HandleFunc("POST /api/quizzes/pdf", h.handlePDFQuiz)
	mux.HandleFunc("POST /api/pdf/analysis", h.handleAnalyzePDF)
	mux.HandleFunc("PUT /api/sessions/{id}/answers", h.handleSaveAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/submit", h.handleSubmit)
	mux.HandleFunc("GET /api/sessions/{id}/report", h.handleReport)
	mux.HandleFunc("POST /api/sessions/{id}/retake", h.handleRetake)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.handleClose)
	mux.HandleFunc("GET /api/results/recent", h.handleRecentResults)
}

type topicQuizRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"numQuestions"`
}

type pdfQuizRequest struct {
	PDFURL       string `json:"pdfUrl"`
	Title        string `json:"title"`
	NumQuestions int    `json:"numQuestions"`
}

type analyzePDFRequest struct {
	PDFURL string `json:"pdfUrl"`
	Title  string `json:"title"`
}

type saveAnswerRequest struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleTopicQuiz(w http.ResponseWriter, r *http.Request) {
	var req topicQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	started, err := h.service.StartTopicQuiz(r.Context(), req.Topic, req.NumQuestions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, started)
}

func (h *Handler) handlePDFQuiz(w http.ResponseWriter, r *http.Request) {
	var req pdfQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	started, err := h.service.StartPDFQuiz(r.Context(), req.PDFURL, req.Title, req.NumQuestions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, started)
}

func (h *Handler) handleAnalyzePDF(w http.ResponseWriter, r *http.Request) {
	var req analyzePDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	payload, err := h.service.AnalyzePDF(r.Context(), req.PDFURL, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		log.Printf("write analysis response: %v", err)
	}
}

func (h *Handler) handleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	var req saveAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	progress, err := h.service.SaveAnswer(r.Context(), r.PathValue("id"), req.Index, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleRetake(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Retake(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRecentResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}
	results, err := h.service.RecentResults(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// writeError maps domain errors to HTTP status codes. Generation and analysis
// failures surface as 502 so the UI can fall back to its pre-request state.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrQuestionIndex):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrArchiveNotConfigured):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrQuizNotActive),
		errors.Is(err, domain.ErrResultNotReady),
		errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrQuizGeneration),
		errors.Is(err, domain.ErrPDFAnalysis),
		errors.Is(err, domain.ErrMalformedQuiz):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json response: %v", err)
	}
}
