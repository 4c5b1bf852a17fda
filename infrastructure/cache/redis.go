package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/billychen0894/spareTalk-chat-app/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the shared state store handle. The caller owns the
// lifecycle: create on start, Close on shutdown, inject into repositories.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Db,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		PoolTimeout:  cfg.Redis.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s:%s: %w", cfg.Redis.Host, cfg.Redis.Port, err)
	}

	return client, nil
}
