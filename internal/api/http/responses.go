package http

import (
	"encoding/json"
	"net/http"

	"github.com/ilyadubrovsky/redis-admin/internal/domain"
)

// Response carries the status code and headers next to the encoded body.
type Response interface {
	Code() int
	Headers() map[string]string
	Empty() bool
}

var (
	_ Response = (*healthRes)(nil)
	_ Response = (*infoRes)(nil)
	_ Response = (*snapshotRes)(nil)
	_ Response = (*keysRes)(nil)
	_ Response = (*valueRes)(nil)
	_ Response = (*setValueRes)(nil)
	_ Response = (*deleteRes)(nil)
	_ Response = (*existsRes)(nil)
	_ Response = (*ttlRes)(nil)
	_ Response = (*setExpiryRes)(nil)
	_ Response = (*historyRes)(nil)
)

type okRes struct{}

func (okRes) Code() int {
	return http.StatusOK
}

func (okRes) Headers() map[string]string {
	return map[string]string{}
}

func (okRes) Empty() bool {
	return false
}

type healthRes struct {
	okRes
	Status string `json:"status"`
}

type infoRes struct {
	okRes
	entries []domain.ServerInfoEntry
}

func (res infoRes) MarshalJSON() ([]byte, error) {
	return json.Marshal(res.entries)
}

// snapshotRes keeps the {"create_time": ms, "<name>": value} shape of a snapshot.
type snapshotRes struct {
	okRes
	snapshot *domain.MetricSnapshot
}

func (res snapshotRes) MarshalJSON() ([]byte, error) {
	return res.snapshot.MarshalJSON()
}

type keysRes struct {
	okRes
	keys []string
}

func (res keysRes) MarshalJSON() ([]byte, error) {
	return json.Marshal(res.keys)
}

type valueRes struct {
	Key   string `json:"key"`
	Value *string `json:"value,omitempty"`
}

func (res valueRes) Code() int {
	if res.Value == nil {
		return http.StatusNotFound
	}

	return http.StatusOK
}

func (res valueRes) Headers() map[string]string {
	return map[string]string{}
}

func (res valueRes) Empty() bool {
	return false
}

type setValueRes struct {
	okRes
	OK bool `json:"ok"`
}

type deleteRes struct {
	okRes
	Deleted int64 `json:"deleted"`
}

type existsRes struct {
	okRes
	Exists int64 `json:"exists"`
}

type ttlRes struct {
	okRes
	Key string `json:"key"`
	TTL int64  `json:"ttl"`
}

type setExpiryRes struct {
	okRes
	Applied int64 `json:"applied"`
}

type historyRes struct {
	okRes
	snapshots []*domain.MetricSnapshot
}

func (res historyRes) MarshalJSON() ([]byte, error) {
	return json.Marshal(res.snapshots)
}

type errorRes struct {
	Error string `json:"error"`
}
