package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrBackpressure   = errors.New("evaluation queue is full")
	ErrInvalidRequest = errors.New("invalid request")
	ErrGoalNotSet     = errors.New("monthly goal not set")
)
