// Package session binds browser sessions to user identifiers with a signed
// cookie. Sessions are deliberately decoupled from credential storage: a
// cookie can be cleared or expire without touching the stored OAuth record,
// and a purged record turns an otherwise valid cookie into "not
// authenticated".
package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-device-gateway/internal/model"
)

const CookieName = "gateway_session"

type Binder struct {
	secret []byte
	ttl    time.Duration
}

func NewBinder(secret string, ttl time.Duration) *Binder {
	return &Binder{secret: []byte(secret), ttl: ttl}
}

// Bind generates a fresh user identifier, associates it with the client by
// setting the session cookie, and returns it. Called exactly once per login,
// at OAuth callback time.
func (b *Binder) Bind(w http.ResponseWriter) (string, error) {
	userID := uuid.NewString()

	now := time.Now().UTC()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(b.ttl).Unix(),
	}).SignedString(b.secret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(b.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return userID, nil
}

// Resolve returns the user identifier bound to the request's session. A
// missing, malformed, tampered, or expired cookie all resolve the same way:
// model.ErrNotAuthenticated.
func (b *Binder) Resolve(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", model.ErrNotAuthenticated
	}

	parsed, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrNotAuthenticated
		}
		return b.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", model.ErrNotAuthenticated
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", model.ErrNotAuthenticated
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", model.ErrNotAuthenticated
	}

	return userID, nil
}

// Clear revokes the client's session without touching the credential store.
func (b *Binder) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
