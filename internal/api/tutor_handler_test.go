package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/api/shared"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/insight"
	"github.com/phrazzld/scry-tutor/internal/mocks"
	"github.com/phrazzld/scry-tutor/internal/service"
	"github.com/phrazzld/scry-tutor/internal/tutor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, svc service.TutorService, userID uuid.UUID) http.Handler {
	t.Helper()
	h := NewTutorHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if userID != uuid.Nil {
				ctx = shared.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/sessions", h.StartSession)
	r.Get("/sessions/{id}", h.GetProgress)
	r.Post("/sessions/{id}/turns", h.ProcessTurn)
	r.Delete("/sessions/{id}", h.EndSession)
	r.Get("/learners/me/context", h.GetLearnerContext)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error
}

func TestStartSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	docID := uuid.New()
	sessionID := uuid.New()

	t.Run("success with supplied deck", func(t *testing.T) {
		t.Parallel()
		var got service.StartSessionRequest
		svc := &mocks.MockTutorService{
			StartSessionFn: func(_ context.Context, req service.StartSessionRequest) (*service.SessionStart, error) {
				got = req
				return &service.SessionStart{
					SessionID:      sessionID,
					OpeningMessage: "Hello",
					Progress:       domain.Progress{TotalCards: len(req.Cards)},
				}, nil
			},
		}
		body := `{"document_id":"` + docID.String() + `","mode":"test","cards":[` +
			`{"front":"Capital of France?","back":"Paris","hint":"City of light"},` +
			`{"front":"2+5?","back":"Seven"}]}`

		w := do(t, newTestRouter(t, svc, userID), http.MethodPost, "/sessions", body)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp service.SessionStart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, sessionID, resp.SessionID)
		assert.Equal(t, 2, resp.Progress.TotalCards)

		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, docID, got.DocumentID)
		assert.Equal(t, domain.ModeTest, got.Mode)
		require.Len(t, got.Cards, 2)
		assert.Equal(t, "Paris", got.Cards[0].Back)
		assert.Equal(t, "City of light", got.Cards[0].Hint)
		assert.Equal(t, 1, got.Cards[1].Position)
		assert.NotEqual(t, uuid.Nil, got.Cards[1].ID)
	})

	t.Run("keeps supplied card ids", func(t *testing.T) {
		t.Parallel()
		cardID := uuid.New()
		var got service.StartSessionRequest
		svc := &mocks.MockTutorService{
			StartSessionFn: func(_ context.Context, req service.StartSessionRequest) (*service.SessionStart, error) {
				got = req
				return &service.SessionStart{SessionID: sessionID}, nil
			},
		}
		body := `{"document_id":"` + docID.String() + `","cards":[{"id":"` + cardID.String() + `","front":"Q","back":"A"}]}`

		w := do(t, newTestRouter(t, svc, userID), http.MethodPost, "/sessions", body)
		require.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, got.Cards, 1)
		assert.Equal(t, cardID, got.Cards[0].ID)
		assert.Equal(t, domain.SessionMode(""), got.Mode)
	})

	tests := []struct {
		name           string
		userID         uuid.UUID
		body           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "unauthenticated",
			body:           `{}`,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "User ID not found or invalid",
		},
		{
			name:           "empty body",
			userID:         userID,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Request body is required",
		},
		{
			name:           "malformed json",
			userID:         userID,
			body:           `{"document_id":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "unknown field",
			userID:         userID,
			body:           `{"deck":[]}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name:           "invalid mode",
			userID:         userID,
			body:           `{"mode":"cram"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid Mode: invalid value",
		},
		{
			name:           "card missing back",
			userID:         userID,
			body:           `{"cards":[{"front":"Q"}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid Cards[0].Back: required field",
		},
		{
			name:           "blank card back",
			userID:         userID,
			body:           `{"cards":[{"front":"Q","back":"   "}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid card in deck",
		},
		{
			name:           "empty deck",
			userID:         userID,
			body:           `{"document_id":"` + docID.String() + `"}`,
			serviceErr:     service.NewServiceError("start_session", "loading deck", service.ErrEmptyDeck),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "The document has no cards to study",
		},
		{
			name:           "service failure",
			userID:         userID,
			body:           `{"document_id":"` + docID.String() + `"}`,
			serviceErr:     errors.New("postgres://admin:hunter2@db failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := &mocks.MockTutorService{Err: tc.serviceErr}
			w := do(t, newTestRouter(t, svc, tc.userID), http.MethodPost, "/sessions", tc.body)
			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedError, decodeError(t, w))
		})
	}
}

func TestProcessTurn(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	sessionID := uuid.New()
	path := "/sessions/" + sessionID.String() + "/turns"

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := &mocks.MockTutorService{
			ProcessTurnFn: func(_ context.Context, u, s uuid.UUID, utterance string) (*service.TurnResponse, error) {
				assert.Equal(t, userID, u)
				assert.Equal(t, sessionID, s)
				return &service.TurnResponse{
					ResponseText: "Correct! Next up.",
					Directive:    tutor.DirectiveNone,
					Tally:        tutor.Tally{Correct: 1},
					Progress:     domain.Progress{CurrentIndex: 1, TotalCards: 3, CorrectCount: 1},
				}, nil
			},
		}
		w := do(t, newTestRouter(t, svc, userID), http.MethodPost, path, `{"utterance":"Paris"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp service.TurnResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Correct! Next up.", resp.ResponseText)
		assert.Equal(t, tutor.Tally{Correct: 1}, resp.Tally)
		assert.Equal(t, 1, resp.Progress.CorrectCount)
		assert.Equal(t, []string{"Paris"}, svc.Utterances)
	})

	t.Run("empty utterance is forwarded", func(t *testing.T) {
		t.Parallel()
		svc := &mocks.MockTutorService{
			ProcessTurnFn: func(context.Context, uuid.UUID, uuid.UUID, string) (*service.TurnResponse, error) {
				return &service.TurnResponse{ResponseText: "Sorry?"}, nil
			},
		}
		w := do(t, newTestRouter(t, svc, userID), http.MethodPost, path, `{"utterance":""}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{""}, svc.Utterances)
	})

	tests := []struct {
		name           string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "invalid session id", path: "/sessions/not-a-uuid/turns", body: `{"utterance":"x"}`, expectedStatus: http.StatusBadRequest},
		{name: "utterance too long", path: path, body: `{"utterance":"` + strings.Repeat("a", 4001) + `"}`, expectedStatus: http.StatusBadRequest},
		{name: "unknown session", path: path, body: `{"utterance":"x"}`, serviceErr: service.ErrSessionNotFound, expectedStatus: http.StatusNotFound},
		{name: "foreign session", path: path, body: `{"utterance":"x"}`, serviceErr: service.ErrSessionNotOwned, expectedStatus: http.StatusForbidden},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := &mocks.MockTutorService{Err: tc.serviceErr}
			w := do(t, newTestRouter(t, svc, userID), http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}

func TestGetProgressAndEndSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	sessionID := uuid.New()
	path := "/sessions/" + sessionID.String()

	svc := &mocks.MockTutorService{
		GetProgressFn: func(context.Context, uuid.UUID, uuid.UUID) (domain.Progress, error) {
			return domain.Progress{CurrentIndex: 2, TotalCards: 5, CorrectCount: 1, IncorrectCount: 1}, nil
		},
		EndSessionFn: func(context.Context, uuid.UUID, uuid.UUID) (*service.TurnResponse, error) {
			return &service.TurnResponse{ResponseText: "Goodbye", Directive: tutor.DirectiveEndSession}, nil
		},
	}
	router := newTestRouter(t, svc, userID)

	w := do(t, router, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var progress ProgressResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&progress))
	assert.Equal(t, sessionID, progress.SessionID)
	assert.Equal(t, 2, progress.Progress.CurrentIndex)
	assert.Equal(t, 5, progress.Progress.TotalCards)

	w = do(t, router, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var end service.TurnResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&end))
	assert.Equal(t, tutor.DirectiveEndSession, end.Directive)

	missing := newTestRouter(t, &mocks.MockTutorService{Err: service.ErrSessionNotFound}, userID)
	assert.Equal(t, http.StatusNotFound, do(t, missing, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, missing, http.MethodDelete, path, "").Code)

	anon := newTestRouter(t, svc, uuid.Nil)
	assert.Equal(t, http.StatusUnauthorized, do(t, anon, http.MethodGet, path, "").Code)
}

func TestGetLearnerContext(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	docID := uuid.New()

	var gotDoc *uuid.UUID
	svc := &mocks.MockTutorService{
		BuildContextFn: func(_ context.Context, _ uuid.UUID, documentID *uuid.UUID) (*service.Insights, error) {
			gotDoc = documentID
			return &service.Insights{
				Context:         domain.DefaultLearningContext(),
				Personalization: insight.NewComposer(nil).Generic(),
			}, nil
		},
	}
	router := newTestRouter(t, svc, userID)

	w := do(t, router, http.MethodGet, "/learners/me/context", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, gotDoc)

	var resp service.Insights
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, domain.MasteryBeginner, resp.Context.MasteryLevel)
	assert.NotEmpty(t, resp.Personalization.Greeting)

	w = do(t, router, http.MethodGet, "/learners/me/context?document_id="+docID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotDoc)
	assert.Equal(t, docID, *gotDoc)

	w = do(t, router, http.MethodGet, "/learners/me/context?document_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid document_id", decodeError(t, w))

	unavailable := newTestRouter(t, &mocks.MockTutorService{
		Err: service.NewServiceError("build_context", "deriving context", insight.ErrContextUnavailable),
	}, userID)
	w = do(t, unavailable, http.MethodGet, "/learners/me/context", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewTutorHandler_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewTutorHandler(nil, slog.Default()) })
	assert.Panics(t, func() { NewTutorHandler(&mocks.MockTutorService{}, nil) })
}
