package repository

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	// Allow reports whether another request under key fits within limit
	// requests per window. Fails open: Redis errors allow the request.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type rateLimitRepository struct {
	client *redis.Client
}

func NewRateLimitRepository(client *redis.Client) RateLimitRepository {
	return &rateLimitRepository{client: client}
}

func (r *rateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Hash the key so emails and IPs never land in Redis verbatim.
	hashed := fmt.Sprintf("ratelimit:%x", sha256.Sum256([]byte(key)))

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, hashed)
	pipe.ExpireNX(ctx, hashed, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}

	return incr.Val() <= int64(limit), nil
}
