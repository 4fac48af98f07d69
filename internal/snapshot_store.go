package internal

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/perfindex/internal/config"
	"github.com/2beens/perfindex/internal/kvstore"
)

// SnapshotStore is the configured snapshot backend.
type SnapshotStore struct {
	kvstore.Store
	Backend string
	closer  func() error
}

func (s *SnapshotStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// NewSnapshotStore picks the backend from the config. The redis client is only
// required by the redis backend.
func NewSnapshotStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*SnapshotStore, error) {
	switch cfg.SnapshotStore {
	case config.SnapshotStoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("snapshot store %s: no redis client", cfg.SnapshotStore)
		}
		return &SnapshotStore{
			Store:   kvstore.NewRedisStore(rdb),
			Backend: cfg.SnapshotStore,
		}, nil
	case config.SnapshotStoreFreecache:
		log.Warnf("freecache snapshot store is process local, history is lost on restart")
		return &SnapshotStore{
			Store:   kvstore.NewFreecacheStore(cfg.FreecacheSizeMB),
			Backend: cfg.SnapshotStore,
		}, nil
	case config.SnapshotStoreSQLite:
		store, err := kvstore.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &SnapshotStore{
			Store:   store,
			Backend: cfg.SnapshotStore,
			closer:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot store: %s", cfg.SnapshotStore)
	}
}
