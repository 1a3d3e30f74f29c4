package health

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"notesqa/internal/corpus"
)

// ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Status struct {
	Message     string `json:"message"`
	Status      string `json:"status"`
	Model       string `json:"model"`
	NotesLoaded bool   `json:"notesLoaded"`
	PDFLoaded   bool   `json:"pdfLoaded"`
	Timestamp   string `json:"timestamp"`
}

type Handler struct {
	corpus  *corpus.Corpus
	model   string
	message string
	now     func() time.Time
}

func NewHandler(c *corpus.Corpus, model, provider string) *Handler {
	return &Handler{
		corpus:  c,
		model:   model,
		message: fmt.Sprintf("Server is running and %s client initialized.", provider),
		now:     time.Now,
	}
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Status{
		Message:     h.message,
		Status:      "OK",
		Model:       h.model,
		NotesLoaded: h.corpus.NotesLoaded(),
		PDFLoaded:   h.corpus.AttachmentLoaded(),
		Timestamp:   h.now().UTC().Format(timestampLayout),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
