package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"garage-client/pkg/response"
)

// RedisPersistence keeps the session under a single key with no TTL;
// the session lives until explicit sign-out, matching the browser
// client's localStorage behaviour.
type RedisPersistence struct {
	client *redis.Client
	key    string
}

func NewRedisPersistence(redisAddr, key string) (*RedisPersistence, error) {
	const op = "session.NewRedisPersistence"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisPersistence{client: client, key: key}, nil
}

func (r *RedisPersistence) Load(ctx context.Context) (*Session, error) {
	const op = "session.RedisPersistence.Load"

	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, nil
}

func (r *RedisPersistence) Save(ctx context.Context, sess *Session) error {
	const op = "session.RedisPersistence.Save"

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisPersistence) Clear(ctx context.Context) error {
	const op = "session.RedisPersistence.Clear"

	if _, err := r.client.Del(ctx, r.key).Result(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisPersistence) Close() error {
	return r.client.Close()
}
