package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-device-gateway/internal/middleware"
	"go-device-gateway/internal/model"
	"go-device-gateway/internal/service"
)

type DeviceHandler struct {
	tokens  *service.TokenService
	devices *service.DeviceService
}

func NewDeviceHandler(tokens *service.TokenService, devices *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{tokens: tokens, devices: devices}
}

func (h *DeviceHandler) Control(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return
	}

	if msg := validateControl(&payload); msg != "" {
		writeBadRequest(w, msg)
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

	if err := h.devices.Control(r.Context(), grant, payload); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ControlResponse{Error: 0})
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
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

	devices, err := h.devices.ListDevices(r.Context(), grant)
	if err != nil {
		writeError(w, err)
		return
	}

	if devices == nil {
		devices = []model.Device{}
	}

	writeJSON(w, http.StatusOK, model.DevicesResponse{Error: 0, Devices: devices})
}

// validateControl checks the request shape before any credential or network
// work; it returns an empty string when the request is valid.
func validateControl(payload *model.ControlRequest) string {
	if strings.TrimSpace(payload.DeviceID) == "" {
		return "Missing deviceId"
	}

	if payload.Switch == "" && len(payload.Switches) == 0 {
		return "Missing deviceId or switch state"
	}

	if payload.Switch != "" && len(payload.Switches) > 0 {
		return "Provide either switch or switches, not both"
	}

	if payload.Switch != "" && !validSwitchState(payload.Switch) {
		return "switch must be \"on\" or \"off\""
	}

	for _, entry := range payload.Switches {
		if !validSwitchState(entry.Switch) {
			return "switch must be \"on\" or \"off\""
		}
		if entry.Outlet < 0 {
			return "outlet must not be negative"
		}
	}

	return ""
}

func validSwitchState(state string) bool {
	return state == "on" || state == "off"
}
