package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-device-gateway/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeBadRequest rejects invalid input before any credential or network
// work happens.
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: 1, Msg: msg})
}

// writeError maps the error taxonomy onto {error:1, msg} bodies. The
// messages deliberately distinguish a failed refresh from an expired session:
// the first asks for a retry, the second for a fresh login.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "Unexpected server error"

	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		status = http.StatusUnauthorized
		msg = "Not authenticated"
	case errors.Is(err, model.ErrSessionExpired):
		status = http.StatusUnauthorized
		msg = "Session expired, please login again"
	case errors.Is(err, model.ErrRefreshFailed):
		status = http.StatusBadGateway
		msg = "Could not refresh access token, please retry or login again"
	case errors.Is(err, model.ErrGatewayFailure):
		status = http.StatusBadGateway
		msg = "Device cloud request failed"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		msg = err.Error()
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.ErrorResponse{Error: 1, Msg: msg})
}
