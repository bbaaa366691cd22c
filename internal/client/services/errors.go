package services

import "errors"

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrStaleResponse       = errors.New("stale response discarded: session changed")
	ErrInvalidAuthResponse = errors.New("auth response carried no complete credential")
	ErrEmptyMessage        = errors.New("message is empty")
)
