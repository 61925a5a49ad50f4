package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-device-gateway/internal/middleware"
	"go-device-gateway/internal/model"
	"go-device-gateway/internal/service"
)

type TimerHandler struct {
	tokens *service.TokenService
	timers *service.TimerService
}

func NewTimerHandler(tokens *service.TokenService, timers *service.TimerService) *TimerHandler {
	return &TimerHandler{tokens: tokens, timers: timers}
}

// SetTimer schedules a delayed shutoff and answers with the generated timer
// id so the client can verify placement later.
func (h *TimerHandler) SetTimer(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SetTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	if strings.TrimSpace(payload.DeviceID) == "" || payload.Minutes == 0 {
		writeBadRequest(w, "Missing deviceId or minutes")
		return
	}

	if payload.Minutes < 0 {
		writeBadRequest(w, "minutes must be a positive number")
		return
	}

	if payload.ChannelCount < 0 {
		writeBadRequest(w, "channelCount must not be negative")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	grant, err := h.tokens.ResolveAccessToken(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	timer := h.timers.CreateTimer(payload.Minutes, payload.ChannelCount)
	if err := h.timers.SubmitTimer(r.Context(), grant, payload.DeviceID, timer); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SetTimerResponse{Error: 0, TimerID: timer.MID, At: timer.At})
}

// VerifyTimer reports whether a previously submitted timer is present and
// enabled on the device.
func (h *TimerHandler) VerifyTimer(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.VerifyTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	if strings.TrimSpace(payload.DeviceID) == "" || strings.TrimSpace(payload.TimerID) == "" {
		writeBadRequest(w, "Missing deviceId or timerId")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	grant, err := h.tokens.ResolveAccessToken(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	verification, err := h.timers.VerifyTimer(r.Context(), grant, payload.DeviceID, payload.TimerID)
	if err != nil {
		writeError(w, err)
		return
	}

	if verification.Timers == nil {
		verification.Timers = []model.DeviceTimer{}
	}

	writeJSON(w, http.StatusOK, model.VerifyTimerResponse{
		Error:   0,
		Present: verification.Present,
		Timers:  verification.Timers,
	})
}
