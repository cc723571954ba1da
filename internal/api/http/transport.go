package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/ilyadubrovsky/redis-admin/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	contentType = "application/json"
	keyParam    = "key"
	patternKey  = "pattern"
	strictKey   = "strict"
	nameKey     = "name"
	limitKey    = "limit"
	defPattern  = "*"
)

var errUnsupportedContentType = errors.New("unsupported content type")

// MakeHandler returns a HTTP handler for the admin API. snapshotsSvc may be nil,
// the history endpoint then answers with ErrSnapshotsDisabled.
func MakeHandler(svc service.RedisAdmin, snapshotsSvc service.Snapshots, logger zerolog.Logger) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(loggingErrorEncoder(logger, encodeError)),
	}

	r := chi.NewRouter()

	r.Get("/health", kithttp.NewServer(
		healthEndpoint(),
		kithttp.NopRequestDecoder,
		encodeResponse,
		opts...,
	).ServeHTTP)

	r.Get("/info", kithttp.NewServer(
		infoEndpoint(svc),
		decodeInfo,
		encodeResponse,
		opts...,
	).ServeHTTP)

	r.Get("/memory", kithttp.NewServer(
		memoryEndpoint(svc),
		kithttp.NopRequestDecoder,
		encodeResponse,
		opts...,
	).ServeHTTP)

	r.Get("/dbsize", kithttp.NewServer(
		dbSizeEndpoint(svc),
		kithttp.NopRequestDecoder,
		encodeResponse,
		opts...,
	).ServeHTTP)

	r.Route("/keys", func(r chi.Router) {
		r.Get("/", kithttp.NewServer(
			listKeysEndpoint(svc),
			decodeListKeys,
			encodeResponse,
			opts...,
		).ServeHTTP)

		r.Post("/delete", kithttp.NewServer(
			deleteKeysEndpoint(svc),
			decodeKeys,
			encodeResponse,
			opts...,
		).ServeHTTP)

		r.Post("/exists", kithttp.NewServer(
			existsKeysEndpoint(svc),
			decodeKeys,
			encodeResponse,
			opts...,
		).ServeHTTP)

		r.Get("/{key}", kithttp.NewServer(
			viewKeyEndpoint(svc),
			decodeViewKey,
			encodeResponse,
			opts...,
		).ServeHTTP)

		r.Put("/{key}", kithttp.NewServer(
			setValueEndpoint(svc),
			decodeSetValue,
			encodeResponse,
			opts...,
		).ServeHTTP)

		r.Get("/{key}/ttl", kithttp.NewServer(
			viewTTLEndpoint(svc),
			decodeTTL,
			encodeResponse,
			opts...,
		).ServeHTTP)

		r.Put("/{key}/ttl", kithttp.NewServer(
			setExpiryEndpoint(svc),
			decodeSetExpiry,
			encodeResponse,
			opts...,
		).ServeHTTP)
	})

	r.Get("/snapshots", kithttp.NewServer(
		historyEndpoint(snapshotsSvc),
		decodeHistory,
		encodeResponse,
		opts...,
	).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func decodeInfo(_ context.Context, r *http.Request) (interface{}, error) {
	strict, err := readBoolQuery(r, strictKey)
	if err != nil {
		return nil, err
	}

	return infoReq{strict: strict}, nil
}

func decodeListKeys(_ context.Context, r *http.Request) (interface{}, error) {
	strict, err := readBoolQuery(r, strictKey)
	if err != nil {
		return nil, err
	}

	pattern := defPattern
	if vals, ok := r.URL.Query()[patternKey]; ok && len(vals) > 0 {
		pattern = vals[0]
	}

	return listKeysReq{pattern: pattern, strict: strict}, nil
}

func decodeViewKey(_ context.Context, r *http.Request) (interface{}, error) {
	strict, err := readBoolQuery(r, strictKey)
	if err != nil {
		return nil, err
	}
	key, err := readKey(r)
	if err != nil {
		return nil, err
	}

	return viewKeyReq{key: key, strict: strict}, nil
}

func decodeSetValue(_ context.Context, r *http.Request) (interface{}, error) {
	key, err := readKey(r)
	if err != nil {
		return nil, err
	}

	req := setValueReq{key: key}
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeKeys(_ context.Context, r *http.Request) (interface{}, error) {
	var req keysReq
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeTTL(_ context.Context, r *http.Request) (interface{}, error) {
	key, err := readKey(r)
	if err != nil {
		return nil, err
	}

	return ttlReq{key: key}, nil
}

func decodeSetExpiry(_ context.Context, r *http.Request) (interface{}, error) {
	key, err := readKey(r)
	if err != nil {
		return nil, err
	}

	req := setExpiryReq{key: key}
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeHistory(_ context.Context, r *http.Request) (interface{}, error) {
	q := r.URL.Query()

	var limit int64
	if v := q.Get(limitKey); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid limit %q", ierrors.ErrBadRequest, v)
		}
		limit = parsed
	}

	return historyReq{name: q.Get(nameKey), limit: limit}, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if !strings.Contains(r.Header.Get("Content-Type"), contentType) {
		return errUnsupportedContentType
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ierrors.ErrBadRequest, err)
	}

	return nil
}

func readBoolQuery(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s %q", ierrors.ErrBadRequest, key, v)
	}

	return b, nil
}

// readKey unescapes the key path parameter. chi matches on the raw path when it is set,
// so a key holding "/" has to be sent as %2F, a bare slash never reaches {key}.
func readKey(r *http.Request) (string, error) {
	key := chi.URLParam(r, keyParam)
	if r.URL.RawPath == "" {
		return key, nil
	}

	key, err := url.PathUnescape(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ierrors.ErrBadRequest, err)
	}

	return key, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", contentType)

	if ar, ok := response.(Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}

		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

func loggingErrorEncoder(logger zerolog.Logger, enc kithttp.ErrorEncoder) kithttp.ErrorEncoder {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		logger.Warn().
			Str("kind", ierrors.KindOf(err).String()).
			Err(err).
			Msg("request failed")

		enc(ctx, err, w)
	}
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentType)

	switch {
	case errors.Is(err, ierrors.ErrConnection):
		w.WriteHeader(http.StatusServiceUnavailable)
	case errors.Is(err, ierrors.ErrDecode):
		w.WriteHeader(http.StatusBadGateway)
	case errors.Is(err, ierrors.ErrCommand),
		errors.Is(err, ierrors.ErrKeysRequired),
		errors.Is(err, ierrors.ErrKeyRequired),
		errors.Is(err, ierrors.ErrBadRequest):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, errUnsupportedContentType):
		w.WriteHeader(http.StatusUnsupportedMediaType)
	case errors.Is(err, ierrors.ErrSnapshotsDisabled):
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if err := json.NewEncoder(w).Encode(errorRes{Error: err.Error()}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
