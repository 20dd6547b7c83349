package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance named by REDIS_ADDR
// (host:port, default localhost:6379), with optional REDIS_PASSWORD and
// REDIS_DB.  Redis backs the token-bucket rate limiter on the auth routes
// and the response cache on the public catalog routes.  When the server
// cannot be reached at startup the constructor returns nil and both
// subsystems degrade to pass-through middleware.
func NewRedisClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     envStr("REDIS_ADDR", "localhost:6379"),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
