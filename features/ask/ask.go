package ask

import (
	"context"
	"time"

	"notesqa/internal/querylog"
)

const (
	MsgQuestionRequired = "Question is required."
	MsgInvalidBody      = "Invalid request body."
)

// Outcome labels shared by metrics and the query log.
const (
	OutcomeAnswered = querylog.OutcomeAnswered
	OutcomeFailed   = querylog.OutcomeFailed
	OutcomeInvalid  = "invalid"
)

type Request struct {
	Question string `json:"question" validate:"required"`
}

type Response struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Generator turns a composed prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Recorder interface {
	ObserveAsk(outcome string, upstream time.Duration)
}

type QueryLogger interface {
	Log(entry querylog.Entry)
}
