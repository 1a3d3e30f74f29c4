package ask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"notesqa/internal/corpus"
	"notesqa/internal/middleware"
	"notesqa/internal/prompt"
	"notesqa/internal/querylog"
)

const maxBodyBytes = 1 << 20

type Options struct {
	Persona  string
	Provider string
	Metrics  Recorder
	QueryLog QueryLogger
}

type Handler struct {
	corpus    *corpus.Corpus
	generator Generator
	persona   string
	provider  string
	metrics   Recorder
	queryLog  QueryLogger
	validate  *validator.Validate
}

func NewHandler(c *corpus.Corpus, g Generator, opts Options) *Handler {
	provider := opts.Provider
	if provider == "" {
		provider = "Gemini"
	}
	return &Handler{
		corpus:    c,
		generator: g,
		persona:   opts.Persona,
		provider:  provider,
		metrics:   opts.Metrics,
		queryLog:  opts.QueryLog,
		validate:  validator.New(),
	}
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.observe(OutcomeInvalid, 0)
		h.writeError(ctx, w, http.StatusBadRequest, MsgInvalidBody, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.observe(OutcomeInvalid, 0)
		h.writeError(ctx, w, http.StatusBadRequest, MsgQuestionRequired, "")
		return
	}

	full := prompt.Build(h.persona, h.corpus.Notes(), req.Question)

	// The upstream call outlives a disconnecting caller; only values are inherited.
	start := time.Now()
	answer, err := h.generator.Generate(context.WithoutCancel(ctx), full)
	elapsed := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "model call failed", "provider", h.provider, "error", err, "duration", elapsed)
		h.observe(OutcomeFailed, elapsed)
		h.logQuery(ctx, req.Question, OutcomeFailed, "", err, elapsed)
		h.writeError(ctx, w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to process request with %s API.", h.provider), err.Error())
		return
	}

	h.observe(OutcomeAnswered, elapsed)
	h.logQuery(ctx, req.Question, OutcomeAnswered, answer, nil, elapsed)
	h.writeJSON(ctx, w, http.StatusOK, Response{Question: req.Question, Answer: answer})
}

func (h *Handler) observe(outcome string, upstream time.Duration) {
	if h.metrics != nil {
		h.metrics.ObserveAsk(outcome, upstream)
	}
}

func (h *Handler) logQuery(ctx context.Context, question, outcome, answer string, err error, d time.Duration) {
	if h.queryLog == nil {
		return
	}
	entry := querylog.Entry{
		Question:      question,
		Outcome:       outcome,
		AnswerLength:  len(answer),
		Duration:      d,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.queryLog.Log(entry)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, status int, message, details string) {
	h.writeJSON(ctx, w, status, ErrorResponse{Error: message, Details: details})
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
