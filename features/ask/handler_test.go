package ask_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notesqa/features/ask"
	"notesqa/internal/corpus"
	"notesqa/internal/querylog"
)

type MockGenerator struct{ mock.Mock }

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) ObserveAsk(outcome string, upstream time.Duration) {
	m.Called(outcome, upstream)
}

type captureLog struct{ entries []querylog.Entry }

func (c *captureLog) Log(e querylog.Entry) { c.entries = append(c.entries, e) }

const notes = "The office opens at 9am."

func doAsk(h *ask.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Ask(w, req)
	return w
}

func TestHandler_Ask_Table(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockGenerator)
		wantStatus int
		wantBody   string
	}{
		{
			name: "Success",
			body: `{"question":"When does the office open?"}`,
			setupMock: func(g *MockGenerator) {
				g.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
					return strings.Contains(p, notes) && strings.Contains(p, "Question: When does the office open?")
				})).Return("At 9am.", nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"question":"When does the office open?","answer":"At 9am."}`,
		},
		{
			name:       "Empty Question",
			body:       `{"question":""}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Question is required."}`,
		},
		{
			name:       "Missing Question",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Question is required."}`,
		},
		{
			name:       "Null Question",
			body:       `{"question":null}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Question is required."}`,
		},
		{
			name:       "Empty Body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Question is required."}`,
		},
		{
			name: "Upstream Failure",
			body: `{"question":"anything"}`,
			setupMock: func(g *MockGenerator) {
				g.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("upstream down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to process request with Gemini API.","details":"upstream down"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			if tt.setupMock != nil {
				tt.setupMock(gen)
			}
			h := ask.NewHandler(corpus.New(notes, nil), gen, ask.Options{})

			w := doAsk(h, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			gen.AssertExpectations(t)
			if tt.setupMock == nil {
				gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandler_Ask_MalformedJSON(t *testing.T) {
	gen := new(MockGenerator)
	h := ask.NewHandler(corpus.New(notes, nil), gen, ask.Options{})

	w := doAsk(h, `{"question":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ask.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ask.MsgInvalidBody, body.Error)
	assert.NotEmpty(t, body.Details)
	gen.AssertNumberOfCalls(t, "Generate", 0)
}

func TestHandler_Ask_Idempotent(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("Same answer.", nil)
	h := ask.NewHandler(corpus.New(notes, nil), gen, ask.Options{})

	first := doAsk(h, `{"question":"repeat?"}`)
	second := doAsk(h, `{"question":"repeat?"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestHandler_Ask_EmptyCorpusStillCallsModel(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Notes:\n---\n\n---")
	})).Return("The information is not available.", nil).Once()
	h := ask.NewHandler(corpus.New("", nil), gen, ask.Options{})

	w := doAsk(h, `{"question":"anything?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	gen.AssertExpectations(t)
}

func TestHandler_Ask_PersonaAndProvider(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "your name is trix.\n")
	})).Return("", errors.New("quota exceeded")).Once()
	h := ask.NewHandler(corpus.New(notes, nil), gen, ask.Options{Persona: "your name is trix.", Provider: "OpenAI"})

	w := doAsk(h, `{"question":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to process request with OpenAI API.","details":"quota exceeded"}`, w.Body.String())
	gen.AssertExpectations(t)
}

func TestHandler_Ask_DetachesCallerCancellation(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return("ok", nil).Once()
	h := ask.NewHandler(corpus.New(notes, nil), gen, ask.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("POST", "/ask", bytes.NewBufferString(`{"question":"q"}`)).WithContext(ctx)
	w := httptest.NewRecorder()
	h.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	gen.AssertExpectations(t)
}

func TestHandler_Ask_MetricsAndQueryLog(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Question: good")
	})).Return("fine", nil).Once()
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Question: bad")
	})).Return("", errors.New("boom")).Once()

	rec := new(MockRecorder)
	rec.On("ObserveAsk", ask.OutcomeAnswered, mock.Anything).Once()
	rec.On("ObserveAsk", ask.OutcomeFailed, mock.Anything).Once()
	rec.On("ObserveAsk", ask.OutcomeInvalid, time.Duration(0)).Once()

	qlog := &captureLog{}
	h := ask.NewHandler(corpus.New(notes, nil), gen, ask.Options{Metrics: rec, QueryLog: qlog})

	doAsk(h, `{"question":"good"}`)
	doAsk(h, `{"question":"bad"}`)
	doAsk(h, `{"question":""}`)

	rec.AssertExpectations(t)
	require.Len(t, qlog.entries, 2)
	assert.Equal(t, "good", qlog.entries[0].Question)
	assert.Equal(t, ask.OutcomeAnswered, qlog.entries[0].Outcome)
	assert.Equal(t, len("fine"), qlog.entries[0].AnswerLength)
	assert.Equal(t, ask.OutcomeFailed, qlog.entries[1].Outcome)
	assert.Equal(t, "boom", qlog.entries[1].Error)
}
