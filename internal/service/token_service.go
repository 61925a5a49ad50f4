package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-device-gateway/internal/ewelink"
	"go-device-gateway/internal/model"
)

// The refresh endpoint reports no expiries; the platform documents these
// token lifetimes.
const (
	accessTokenLifetime  = 30 * 24 * time.Hour
	refreshTokenLifetime = 60 * 24 * time.Hour
)

type credentialStore interface {
	Get(ctx context.Context, userID string) (model.CredentialRecord, error)
	Put(ctx context.Context, record model.CredentialRecord) error
}

type tokenRefresher interface {
	RefreshToken(ctx context.Context, region string, accessToken string, refreshToken string) (ewelink.RefreshData, error)
}

// TokenService resolves user identifiers to usable access tokens, refreshing
// lazily on demand. There is no background refresh loop: every inbound
// request re-evaluates the record's expiry state.
type TokenService struct {
	store     credentialStore
	refresher tokenRefresher
	now       func() time.Time
}

func NewTokenService(store credentialStore, refresher tokenRefresher) *TokenService {
	return &TokenService{store: store, refresher: refresher, now: time.Now}
}

// ResolveAccessToken returns a grant for the user's current access token.
//
// A live access token is returned as stored, with no remote call and no
// write. An expired access token with a live refresh token triggers exactly
// one refresh; on success the record is replaced as a whole and the new
// token returned, on failure the record stays untouched and the error
// surfaces as a refresh failure. Once the refresh token itself has lapsed
// the resolution is model.ErrSessionExpired and the stale record is left in
// place for the next login to overwrite.
//
// Two concurrent resolutions may both see an expired access token and both
// refresh; that costs one superfluous remote call and is harmless because
// credential writes are atomic whole-record replacements.
func (s *TokenService) ResolveAccessToken(ctx context.Context, userID string) (model.AccessGrant, error) {
	record, err := s.store.Get(ctx, userID)
	if errors.Is(err, model.ErrCredentialNotFound) {
		return model.AccessGrant{}, model.ErrNotAuthenticated
	}
	if err != nil {
		return model.AccessGrant{}, err
	}

	now := s.now().UTC()

	if !record.AccessExpired(now) {
		return model.AccessGrant{AccessToken: record.AccessToken, Region: record.Region}, nil
	}

	if record.RefreshExpired(now) {
		return model.AccessGrant{}, model.ErrSessionExpired
	}

	refreshed, err := s.refresher.RefreshToken(ctx, record.Region, record.AccessToken, record.RefreshToken)
	if err != nil {
		return model.AccessGrant{}, fmt.Errorf("%w: %v", model.ErrRefreshFailed, err)
	}

	record.AccessToken = refreshed.AccessToken
	if refreshed.RefreshToken != "" {
		record.RefreshToken = refreshed.RefreshToken
	}
	record.AccessExpiresAt = now.Add(accessTokenLifetime)
	record.RefreshExpiresAt = now.Add(refreshTokenLifetime)

	if err := s.store.Put(ctx, record); err != nil {
		return model.AccessGrant{}, err
	}

	slog.Info("access token refreshed", "user_id", userID, "region", record.Region)
	return model.AccessGrant{AccessToken: record.AccessToken, Region: record.Region}, nil
}

// StoreLogin persists the credential record produced by an OAuth code
// exchange. Zero expiries from the exchange fall back to the documented
// lifetimes so the record always satisfies access <= refresh expiry.
func (s *TokenService) StoreLogin(ctx context.Context, userID string, region string, data ewelink.OAuthTokenData) (model.CredentialRecord, error) {
	now := s.now().UTC()

	record := model.CredentialRecord{
		UserID:           userID,
		AccessToken:      data.AccessToken,
		RefreshToken:     data.RefreshToken,
		AccessExpiresAt:  now.Add(accessTokenLifetime),
		RefreshExpiresAt: now.Add(refreshTokenLifetime),
		Region:           region,
		CreatedAt:        now,
	}
	if data.AccessExpiresAt > 0 {
		record.AccessExpiresAt = time.UnixMilli(data.AccessExpiresAt).UTC()
	}
	if data.RefreshExpiresAt > 0 {
		record.RefreshExpiresAt = time.UnixMilli(data.RefreshExpiresAt).UTC()
	}

	if record.RefreshExpiresAt.Before(record.AccessExpiresAt) {
		record.RefreshExpiresAt = record.AccessExpiresAt
	}

	if err := s.store.Put(ctx, record); err != nil {
		return model.CredentialRecord{}, err
	}

	return record, nil
}

// Region reports the stored region for a user without touching tokens; used
// by the session status endpoint.
func (s *TokenService) Region(ctx context.Context, userID string) (string, error) {
	record, err := s.store.Get(ctx, userID)
	if errors.Is(err, model.ErrCredentialNotFound) {
		return "", model.ErrNotAuthenticated
	}
	if err != nil {
		return "", err
	}

	return record.Region, nil
}
