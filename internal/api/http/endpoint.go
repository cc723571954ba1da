package http

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
)

func healthEndpoint() endpoint.Endpoint {
	return func(_ context.Context, _ interface{}) (interface{}, error) {
		return healthRes{Status: "ok"}, nil
	}
}

func infoEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(infoReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		if !req.strict {
			return infoRes{entries: svc.ServerInfo(ctx)}, nil
		}

		res := svc.ServerInfoResult(ctx)
		if res.Status() == domain.StatusFailed {
			return nil, res.Err()
		}
		entries, ok := res.Get()
		if !ok {
			entries = []domain.ServerInfoEntry{}
		}

		return infoRes{entries: entries}, nil
	}
}

func memoryEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		snapshot, err := svc.MemoryUsage(ctx)
		if err != nil {
			return nil, err
		}

		return snapshotRes{snapshot: snapshot}, nil
	}
}

func dbSizeEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		snapshot, err := svc.KeyCount(ctx)
		if err != nil {
			return nil, err
		}

		return snapshotRes{snapshot: snapshot}, nil
	}
}

func listKeysEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(listKeysReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		if !req.strict {
			return keysRes{keys: svc.FindKeys(ctx, req.pattern)}, nil
		}

		res := svc.FindKeysResult(ctx, req.pattern)
		if res.Status() == domain.StatusFailed {
			return nil, res.Err()
		}
		keys, ok := res.Get()
		if !ok {
			keys = []string{}
		}

		return keysRes{keys: keys}, nil
	}
}

func viewKeyEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(viewKeyReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		if !req.strict {
			value, found := svc.Value(ctx, req.key)
			if !found {
				return valueRes{Key: req.key}, nil
			}
			return valueRes{Key: req.key, Value: &value}, nil
		}

		res := svc.ValueResult(ctx, req.key)
		if res.Status() == domain.StatusFailed {
			return nil, res.Err()
		}
		value, found := res.Get()
		if !found {
			return valueRes{Key: req.key}, nil
		}

		return valueRes{Key: req.key, Value: &value}, nil
	}
}

func setValueEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(setValueReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		ok, err := svc.SetValue(ctx, req.key, *req.Value)
		if err != nil {
			return nil, err
		}

		return setValueRes{OK: ok}, nil
	}
}

func deleteKeysEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(keysReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		deleted, err := svc.DeleteKeys(ctx, req.Keys...)
		if err != nil {
			return nil, err
		}

		return deleteRes{Deleted: deleted}, nil
	}
}

func existsKeysEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(keysReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		exists, err := svc.ExistsCount(ctx, req.Keys...)
		if err != nil {
			return nil, err
		}

		return existsRes{Exists: exists}, nil
	}
}

func viewTTLEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(ttlReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		ttl, err := svc.RemainingTTL(ctx, req.key)
		if err != nil {
			return nil, err
		}

		return ttlRes{Key: req.key, TTL: ttl}, nil
	}
}

func setExpiryEndpoint(svc service.RedisAdmin) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(setExpiryReq)
		if err := req.validate(); err != nil {
			return nil, err
		}

		applied, err := svc.SetExpiry(ctx, req.key, *req.Milliseconds)
		if err != nil {
			return nil, err
		}

		return setExpiryRes{Applied: applied}, nil
	}
}

func historyEndpoint(snapshotsSvc service.Snapshots) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(historyReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		if snapshotsSvc == nil {
			return nil, ierrors.ErrSnapshotsDisabled
		}

		snapshots, err := snapshotsSvc.History(ctx, req.name, req.limit)
		if err != nil {
			return nil, err
		}

		return historyRes{snapshots: snapshots}, nil
	}
}
