package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/api/shared"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/service"
)

// ProgressResponse is the body of GET /api/sessions/{id}.
type ProgressResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	Progress  domain.Progress `json:"progress"`
}

// TutorHandler serves the tutoring session endpoints.
type TutorHandler struct {
	tutorService service.TutorService
	logger       *slog.Logger
}

// NewTutorHandler creates a TutorHandler. It panics if either dependency
// is nil.
func NewTutorHandler(tutorService service.TutorService, log *slog.Logger) *TutorHandler {
	if tutorService == nil {
		panic("tutorService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil for TutorHandler")
	}
	return &TutorHandler{
		tutorService: tutorService,
		logger:       log.With(slog.String("component", "tutor_handler")),
	}
}

// StartSession handles POST /sessions.
func (h *TutorHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var payload StartSessionPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	cards, err := payload.toCards()
	if err != nil {
		HandleAPIError(w, r, err, "Invalid card in deck")
		return
	}

	start, err := h.tutorService.StartSession(r.Context(), service.StartSessionRequest{
		UserID:     userID,
		DocumentID: payload.DocumentID,
		Mode:       domain.SessionMode(payload.Mode),
		Cards:      cards,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("session started",
		slog.String("session_id", start.SessionID.String()),
		slog.Int("cards", start.Progress.TotalCards))
	shared.RespondWithJSON(w, r, http.StatusCreated, start)
}

// GetProgress handles GET /sessions/{id}.
func (h *TutorHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	progress, err := h.tutorService.GetProgress(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{SessionID: sessionID, Progress: progress})
}

// ProcessTurn handles POST /sessions/{id}/turns.
func (h *TutorHandler) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var payload TurnPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	resp, err := h.tutorService.ProcessTurn(r.Context(), userID, sessionID, payload.Utterance)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// EndSession handles DELETE /sessions/{id}.
func (h *TutorHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	resp, err := h.tutorService.EndSession(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("session ended", slog.String("session_id", sessionID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetLearnerContext handles GET /learners/me/context. The optional
// document_id query parameter scopes the context to one document.
func (h *TutorHandler) GetLearnerContext(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var documentID *uuid.UUID
	if raw := r.URL.Query().Get("document_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid document_id")
			return
		}
		documentID = &id
	}

	insights, err := h.tutorService.BuildContext(r.Context(), userID, documentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, insights)
}
