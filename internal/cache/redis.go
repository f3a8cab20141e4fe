package cache

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Client is the shared upstream-response cache connection; nil when disabled.
var Client *redis.Client

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// InitRedis connects Client to addr. An empty addr leaves the cache disabled,
// and an unreachable server is logged and disabled rather than fatal.
func InitRedis(ctx context.Context, addr string) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		Client = nil
		return
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			log.Fatalf("failed to parse REDIS_URL: %v", err)
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		log.Printf("Redis unavailable at %s, upstream cache disabled: %v", addr, err)
		_ = client.Close()
		Client = nil
		return
	}
	Client = client
	log.Println("Connected to Redis")
}
