package domain

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrLaunch         = errors.New("browser launch failed")
	ErrUpstream       = errors.New("upstream request failed")
)
