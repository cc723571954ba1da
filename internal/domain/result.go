package domain

import (
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
)

type Status int

const (
	StatusFound Status = iota + 1
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result tells apart a value that was found, nothing found and a failure.
// The zero Result is NotFound.
type Result[T any] struct {
	value  T
	status Status
	err    error
}

func Found[T any](value T) Result[T] {
	return Result[T]{value: value, status: StatusFound}
}

func NotFound[T any]() Result[T] {
	return Result[T]{status: StatusNotFound}
}

func Failed[T any](err error) Result[T] {
	return Result[T]{status: StatusFailed, err: err}
}

func (r Result[T]) Status() Status {
	if r.status == 0 {
		return StatusNotFound
	}
	return r.status
}

// Get returns the value and whether it was found.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.status == StatusFound
}

// OrEmpty collapses NotFound and Failed to the zero value of T.
func (r Result[T]) OrEmpty() T {
	if r.status != StatusFound {
		var zero T
		return zero
	}
	return r.value
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) Kind() ierrors.Kind {
	return ierrors.KindOf(r.err)
}
