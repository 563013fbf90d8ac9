package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskmanager/repository"
)

type loginAttemptRepository struct {
	client      redislib.UniversalClient
	prefix      string
	window      time.Duration
	maxAttempts int64
}

// NewLoginAttemptRepository creates a fixed-window failed-login counter.
// Each key gets INCR plus EXPIRE on its first hit; a success deletes it.
func NewLoginAttemptRepository(client redislib.UniversalClient, maxAttempts int, window time.Duration) repository.LoginAttemptRepository {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &loginAttemptRepository{
		client:      client,
		prefix:      "login_attempts:",
		window:      window,
		maxAttempts: int64(maxAttempts),
	}
}

func (r *loginAttemptRepository) Allowed(ctx context.Context, key string) (bool, error) {
	if r.maxAttempts <= 0 {
		return true, nil
	}
	count, err := r.client.Get(ctx, r.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return true, nil
		}
		return true, err
	}
	return count < r.maxAttempts, nil
}

func (r *loginAttemptRepository) Fail(ctx context.Context, key string) (int64, error) {
	redisKey := r.key(key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *loginAttemptRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
