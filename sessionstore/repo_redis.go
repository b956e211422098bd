package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "session:"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores sessions as JSON values with a TTL.
type RedisRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisRepo(client redis.UniversalClient, ttl time.Duration) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl}
}

// Connect opens a client for addr and pings it.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[sessionstore Connect] ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, sessionID string, s *session.Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("[sessionstore Upsert] encode: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+sessionID, data, r.ttl).Err(); err != nil {
		log.Error().Err(err).Dur("ttl", r.ttl).Msg("Redis SET session failed")
		return fmt.Errorf("[sessionstore Upsert] %w", err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}
	data, err := r.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		log.Error().Err(err).Msg("Redis GET session failed")
		return nil, fmt.Errorf("[sessionstore Get] %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("[sessionstore Get] decode: %w", err)
	}
	return &s, nil
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	return r.client.Del(ctx, keyPrefix+sessionID).Err()
}
