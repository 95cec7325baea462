package sessionstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/kasyus/kasyus-go/session"
	"github.com/kasyus/kasyus-go/users"
)

var _ session.Store = (*Redis)(nil)

// Redis keeps the session in a Redis instance, keyed by a caller-supplied
// prefix so multiple profiles can share one server. An optional TTL bounds
// how long a stale token can linger after the process disappears.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed session store. A zero ttl means the
// entries never expire on the Redis side.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "kasyus:session"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (s *Redis) tokenKey() string {
	return s.prefix + ":token"
}

func (s *Redis) userKey() string {
	return s.prefix + ":user"
}

func (s *Redis) Read(ctx context.Context) (string, *users.User, error) {
	token, err := s.client.Get(ctx, s.tokenKey()).Result()
	if err == redis.Nil {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "[Redis.Read] token key")
	}

	raw, err := s.client.Get(ctx, s.userKey()).Result()
	if err == redis.Nil {
		return token, nil, nil
	}
	if err != nil {
		return token, nil, errors.Wrap(err, "[Redis.Read] user key")
	}

	var user users.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return token, nil, nil
	}
	return token, &user, nil
}

func (s *Redis) WriteToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.tokenKey(), token, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "[Redis.WriteToken] SET")
	}
	return nil
}

func (s *Redis) WriteUser(ctx context.Context, user *users.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Redis.WriteUser] encoding profile")
	}
	if err := s.client.Set(ctx, s.userKey(), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "[Redis.WriteUser] SET")
	}
	return nil
}

func (s *Redis) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil {
		return errors.Wrap(err, "[Redis.Clear] DEL")
	}
	return nil
}
