package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go-device-gateway/internal/ewelink"
	"go-device-gateway/internal/model"
	"go-device-gateway/internal/service"
	"go-device-gateway/internal/session"
)

const stateCookieName = "oauth_state"

type AuthHandler struct {
	client        *ewelink.Client
	tokens        *service.TokenService
	binder        *session.Binder
	redirectURL   string
	defaultRegion string
}

func NewAuthHandler(client *ewelink.Client, tokens *service.TokenService, binder *session.Binder, redirectURL string, defaultRegion string) *AuthHandler {
	return &AuthHandler{
		client:        client,
		tokens:        tokens,
		binder:        binder,
		redirectURL:   redirectURL,
		defaultRegion: defaultRegion,
	}
}

// Login redirects the browser to the hosted OAuth page. The random state is
// pinned in a short-lived cookie and checked again at the callback.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := randomState()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.client.LoginURL(h.redirectURL, state), http.StatusFound)
}

// Callback is the OAuth redirect target: it verifies state, exchanges the
// code for tokens, persists a fresh credential record under a newly
// generated user identifier, and binds the browser session to it.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		writeBadRequest(w, "Missing code parameter")
		return
	}

	region := query.Get("region")
	if region == "" {
		region = h.defaultRegion
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		writeBadRequest(w, "Invalid or missing state parameter")
		return
	}
	clearCookie(w, stateCookieName)

	data, err := h.client.ExchangeCode(r.Context(), region, code, h.redirectURL)
	if err != nil {
		slog.Error("oauth code exchange failed", "region", region, "error", err.Error())
		writeError(w, fmt.Errorf("%w: %v", model.ErrGatewayFailure, err))
		return
	}

	userID, err := h.binder.Bind(w)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.tokens.StoreLogin(r.Context(), userID, region, data); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("user authenticated", "user_id", userID, "region", region)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session cookie only; the credential record stays and a
// later login overwrites it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.binder.Clear(w)
	writeJSON(w, http.StatusOK, model.LogoutResponse{Error: 0, LoggedOut: true})
}

// Session tells the control page whether the browser is logged in. A session
// cookie whose user has no credential record reports exactly like no session
// at all.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID, err := h.binder.Resolve(r)
	if err != nil {
		writeJSON(w, http.StatusOK, model.SessionResponse{Error: 0, Authenticated: false})
		return
	}

	region, err := h.tokens.Region(r.Context(), userID)
	if errors.Is(err, model.ErrNotAuthenticated) {
		writeJSON(w, http.StatusOK, model.SessionResponse{Error: 0, Authenticated: false})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SessionResponse{Error: 0, Authenticated: true, Region: region})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
