package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidPrompt       = errors.New("invalid prompt")
	ErrProjectExists       = errors.New("project already registered")
	ErrProjectDone         = errors.New("project already finished")
	ErrProviderUnavailable = errors.New("provider unavailable")
)
