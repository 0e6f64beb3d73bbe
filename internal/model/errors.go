package model

import "errors"

// Common errors used across the application
var (
	// Setup errors
	ErrInvalidPlayerCount = errors.New("player count must be between 2 and 4")
	ErrInvalidPlayerName  = errors.New("player name must be 1-20 characters")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session has ended")
)
