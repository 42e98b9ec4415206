package utils

import (
	"context"
	"errors"
	"log"
	"time"

	"traceaq/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds checkout sessions and their processing markers.
	SessionCacheClient *redis.Client
	// AuthCacheClient holds token hashes and reset codes.
	AuthCacheClient *redis.Client
)

// ErrCacheMiss is returned by KVStore.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every Redis database the service uses.
func InitRedis() {
	SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session")
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "Auth")
}

// GetSessionCacheClient returns the client for checkout sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session")
	}
	return SessionCacheClient
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "Auth")
	}
	return AuthCacheClient
}

// RedisClients lists the connected clients for the health monitor.
func RedisClients() []*redis.Client {
	var out []*redis.Client
	for _, c := range []*redis.Client{SessionCacheClient, AuthCacheClient} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// KVStore is the small key/value surface the auth code needs.
type KVStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	// Incr bumps a counter and returns its new value. The ttl is set when the
	// counter is created.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisKV adapts a go-redis client to KVStore.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisKV) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
