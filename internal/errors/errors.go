package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrConnection means the store could not be reached or the exchange with it broke.
	ErrConnection = errors.New("redis connection failed")
	// ErrDecode means the store answered but the reply can not be shaped into the expected type.
	ErrDecode = errors.New("redis reply decode failed")
	// ErrCommand means the store rejected the command (wrong type, unknown command, etc).
	ErrCommand = errors.New("redis command rejected")

	ErrKeysRequired = errors.New("at least one key is required")
	ErrKeyRequired  = errors.New("key is required")
	ErrBadRequest   = errors.New("bad request")

	ErrSnapshotsDisabled = errors.New("snapshots history is disabled")
	ErrServiceNotStarted = errors.New("service is not started")
)

// Kind is a coarse classification of a facade failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnection
	KindDecode
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindDecode:
		return "decode"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// KindOf reports the Kind of err. A nil error is KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrConnection):
		return KindConnection
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrCommand):
		return KindCommand
	default:
		return KindUnknown
	}
}

// Classify wraps a raw client error into ErrConnection or ErrCommand.
// redis.Nil is returned untouched, it is not a failure.
func Classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	if KindOf(err) != KindUnknown {
		return err
	}

	var (
		redisErr redis.Error
		netErr   net.Error
	)
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, redis.ErrClosed),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ErrConnection, err)
	case errors.As(err, &redisErr):
		return fmt.Errorf("%w: %w", ErrCommand, err)
	default:
		// protocol level garbage, pool exhaustion and the like
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
}

// Decode builds an ErrDecode failure.
func Decode(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}
