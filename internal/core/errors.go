package core

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrFactNotFound      = errors.New("fact not found")
	ErrInvalidSessionID  = errors.New("invalid session id")
	ErrEmptyMessage      = errors.New("message cannot be empty")
	ErrRetentionTooShort = errors.New("archive retention window too short")
)
