package utils

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionBusy      = errors.New("session is busy")
	ErrAgentUnavailable = errors.New("agent unavailable")
	ErrHistoryStore     = errors.New("history store error")
	ErrRateLimited      = errors.New("rate limited")
)
