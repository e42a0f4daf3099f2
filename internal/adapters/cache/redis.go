package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisSessionStore keeps client protocol sessions under a TTL. Expiry is
// enforced entirely by Redis; an expired session simply stops existing.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return "skyline:session:" + sessionID
}

func (s *RedisSessionStore) Put(ctx context.Context, session domain.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return s.client.Set(ctx, sessionKey(session.SessionID), raw, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out domain.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

// RedisPresenceStore tracks live sessions per application in a sorted set
// scored by expiry, so counting online users is a prune plus a cardinality
// read instead of a keyspace scan.
type RedisPresenceStore struct {
	client *redis.Client
}

func NewRedisPresenceStore(client *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{client: client}
}

func presenceKey(appID uuid.UUID) string {
	return "skyline:online:" + appID.String()
}

func (s *RedisPresenceStore) Track(ctx context.Context, appID uuid.UUID, sessionID string, expiresAt time.Time) error {
	key := presenceKey(appID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{Score: float64(expiresAt.Unix()), Member: sessionID})
		// The set outlives its longest member by a margin so idle apps decay.
		p.ExpireAt(ctx, key, expiresAt.Add(time.Hour))
		return nil
	})
	return err
}

func (s *RedisPresenceStore) CountOnline(ctx context.Context, appID uuid.UUID, now time.Time) (int64, error) {
	key := presenceKey(appID)
	if err := s.client.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(now.Unix(), 10)).Err(); err != nil {
		return 0, err
	}
	return s.client.ZCard(ctx, key).Result()
}
