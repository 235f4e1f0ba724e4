package model

import "errors"

// Common errors used across the application
var (
	// Credential errors
	ErrDecode        = errors.New("malformed credential token")
	ErrPersist       = errors.New("failed to persist credential token")
	ErrTokenNotFound = errors.New("credential token not found")

	// Request errors
	ErrInvalidStatus  = errors.New("invalid effect status")
	ErrUnknownRequest = errors.New("unknown request")
	ErrUnknownMethod  = errors.New("unknown rpc method")

	// Transport errors
	ErrNotOpen = errors.New("connection is not open")

	// Game session errors
	ErrSessionNotFound  = errors.New("game session not found")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Mock service errors
	ErrConnectionNotFound = errors.New("connection not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
