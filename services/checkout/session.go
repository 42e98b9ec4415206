package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"

	"traceaq/models"
)

const (
	sessionKeyPrefix = "checkout:session:"
	lockKeyPrefix    = "checkout:lock:"
	lockTTL          = 2 * time.Minute
)

// Session is a checkout in progress. Passwords are never part of it.
type Session struct {
	ID        string              `json:"id"`
	Wizard    WizardSnapshot      `json:"wizard"`
	Quote     models.PricingQuote `json:"quote"`
	UserID    string              `json:"userId,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
	ExpiresAt time.Time           `json:"expiresAt"`
}

// RedisSessionStore keeps sessions as JSON documents with a sliding expiry.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	return &s, nil
}

// Save stores the session and pushes its expiry forward.
func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(r.ttl)

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}

func lockKey(id string, action Action) string {
	return lockKeyPrefix + id + ":" + string(action)
}

func (r *RedisSessionStore) Lock(ctx context.Context, id string, action Action) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(id, action), time.Now().Unix(), lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %s in progress: %w", action, err)
	}
	return ok, nil
}

func (r *RedisSessionStore) Unlock(ctx context.Context, id string, action Action) error {
	return r.client.Del(ctx, lockKey(id, action)).Err()
}
