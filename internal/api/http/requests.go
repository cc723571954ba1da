package http

import (
	"fmt"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
)

const maxKeysPerRequest = 1000

type apiReq interface {
	validate() error
}

type infoReq struct {
	strict bool
}

func (req infoReq) validate() error {
	return nil
}

type listKeysReq struct {
	pattern string
	strict  bool
}

func (req listKeysReq) validate() error {
	if req.pattern == "" {
		return fmt.Errorf("%w: empty pattern", ierrors.ErrBadRequest)
	}

	return nil
}

type viewKeyReq struct {
	key    string
	strict bool
}

func (req viewKeyReq) validate() error {
	if req.key == "" {
		return ierrors.ErrKeyRequired
	}

	return nil
}

type setValueReq struct {
	key   string
	Value *string `json:"value"`
}

func (req setValueReq) validate() error {
	if req.key == "" {
		return ierrors.ErrKeyRequired
	}
	if req.Value == nil {
		return fmt.Errorf("%w: value is missing", ierrors.ErrBadRequest)
	}

	return nil
}

type keysReq struct {
	Keys []string `json:"keys"`
}

func (req keysReq) validate() error {
	if len(req.Keys) == 0 {
		return ierrors.ErrKeysRequired
	}
	if len(req.Keys) > maxKeysPerRequest {
		return fmt.Errorf("%w: more than %d keys", ierrors.ErrBadRequest, maxKeysPerRequest)
	}

	return nil
}

type ttlReq struct {
	key string
}

func (req ttlReq) validate() error {
	if req.key == "" {
		return ierrors.ErrKeyRequired
	}

	return nil
}

type setExpiryReq struct {
	key          string
	Milliseconds *int64 `json:"milliseconds"`
}

func (req setExpiryReq) validate() error {
	if req.key == "" {
		return ierrors.ErrKeyRequired
	}
	if req.Milliseconds == nil {
		return fmt.Errorf("%w: milliseconds is missing", ierrors.ErrBadRequest)
	}

	return nil
}

type historyReq struct {
	name  string
	limit int64
}

func (req historyReq) validate() error {
	if req.name != domain.MetricMemory && req.name != domain.MetricDBSize {
		return fmt.Errorf("%w: unknown metric %q", ierrors.ErrBadRequest, req.name)
	}
	if req.limit < 0 {
		return fmt.Errorf("%w: negative limit", ierrors.ErrBadRequest)
	}

	return nil
}
