package model

import "errors"

var (
	// Authentication state errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrCredentialNotFound = errors.New("credential record not found")

	// Remote platform errors
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrGatewayFailure = errors.New("device cloud request failed")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
