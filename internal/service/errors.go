package service

import (
	"errors"

	"smarthub/internal/store"
)

var (
	// ErrInvalidInput 请求参数不合法（映射为 400）
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream 外部服务调用失败（映射为 502）
	ErrUpstream = errors.New("upstream failure")
)

// NotFoundError carries a caller-facing message and matches store.ErrNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Unwrap() error { return store.ErrNotFound }
