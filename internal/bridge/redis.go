package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/stridetrack/stridetrack/internal/models"
)

// RedisStore keeps the snapshot in Redis, for deployments where the widget
// process runs on a different host than the server (companion-sync mode).
// No TTL: a stale snapshot is still better than a placeholder.
type RedisStore struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client, key: "stridetrack:" + snapshotKey}, nil
}

func (s *RedisStore) Save(ctx context.Context, snap models.WidgetSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (models.WidgetSnapshot, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return models.WidgetSnapshot{}, fmt.Errorf("%w: no snapshot stored", models.ErrStaleSnapshot)
	}
	if err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("%w: %v", models.ErrStaleSnapshot, err)
	}

	var snap models.WidgetSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("%w: corrupt snapshot: %v", models.ErrStaleSnapshot, err)
	}
	return snap, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
