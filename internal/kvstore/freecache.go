package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

var _ Store = (*FreecacheStore)(nil)

// FreecacheStore keeps values in process memory. Entries never expire but
// may be evicted when the cache is full.
type FreecacheStore struct {
	cache *freecache.Cache
}

func NewFreecacheStore(sizeMB int) *FreecacheStore {
	return &FreecacheStore{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (s *FreecacheStore) Get(_ context.Context, key string) (string, error) {
	val, err := s.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("freecache get %s: %w", key, err)
	}
	return string(val), nil
}

func (s *FreecacheStore) Set(_ context.Context, key, value string) error {
	if err := s.cache.Set([]byte(key), []byte(value), 0); err != nil {
		return fmt.Errorf("freecache set %s: %w", key, err)
	}
	return nil
}

func (s *FreecacheStore) Delete(_ context.Context, key string) error {
	s.cache.Del([]byte(key))
	return nil
}
