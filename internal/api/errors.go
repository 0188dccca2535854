package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-tutor/internal/api/shared"
	"github.com/phrazzld/scry-tutor/internal/auth"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/insight"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/redact"
	"github.com/phrazzld/scry-tutor/internal/service"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// internal error types never reach clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrSessionNotOwned):
		return http.StatusForbidden

	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrEmptyDeck):
		return http.StatusUnprocessableEntity

	case errors.Is(err, insight.ErrContextUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrSessionNotOwned):
		return "You do not own this session"
	case errors.Is(err, service.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrEmptyDeck):
		return "The document has no cards to study"
	case errors.Is(err, domain.ErrInvalidMode):
		return "Invalid mode: must be study, test or teach"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	case errors.Is(err, insight.ErrContextUnavailable):
		return "Learning context is temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a message naming the
// first failing field, without echoing struct or package names.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	field := fieldName(fe.Namespace())
	return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(fe.Tag()))
}

// fieldName drops the top-level struct name from a validator namespace,
// so "StartSessionPayload.Cards[0].Back" becomes "Cards[0].Back".
func fieldName(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "invalid UUID"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and message for err. A non-empty
// message overrides the default safe message. 5xx errors are logged at
// ERROR level, everything else at DEBUG, always redacted.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	log := logger.FromContextOrDefault(r.Context(), slog.Default())
	attrs := []any{
		slog.Int("status", status),
		slog.String("error", redact.Error(err)),
		slog.String("path", r.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", attrs...)
	} else {
		log.Debug("request rejected", attrs...)
	}

	shared.RespondWithError(w, r, status, message)
}
