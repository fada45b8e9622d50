package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/infrastructure/resilience"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write_response_failed", "error", err)
	}
}

// writeError maps a domain error onto the wire. Field-level rejections
// keep their per-field shape so the client can pin messages onto
// inputs; everything else collapses to a single notification text.
func writeError(w http.ResponseWriter, err error) {
	if fields, ok := domain.AsFieldErrors(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return
	}
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case resilience.IsCircuitOpen(err):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrRemote), domain.IsKind(err, domain.ErrIntegrationPush):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
