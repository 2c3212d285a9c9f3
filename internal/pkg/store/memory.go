// Package store holds the PersistentStore backends for saved trip history.
package store

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// Memory keeps blobs in process. Entries never expire.
type Memory struct {
	items *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{items: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v.([]byte)...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.items.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}
