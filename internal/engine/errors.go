package engine

import "errors"

var (
	ErrNotInitialized  = errors.New("engine is not initialized")
	ErrNotRunning      = errors.New("engine is not running")
	ErrInvalidArgument = errors.New("invalid argument")
)
