package handler

import "errors"

var (
	ErrChainExhausted = errors.New("middleware chain exhausted")
	ErrNoRenderer     = errors.New("no renderer installed on context")
	ErrNilComponent   = errors.New("nil component")
)
