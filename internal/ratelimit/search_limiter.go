package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/openconext/teams/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keySearch = "teams:search:%s"

// SearchLimiter throttles autocomplete queries per person. Without a redis
// address it is disabled and every request passes.
type SearchLimiter struct {
	enabled  bool
	bucket   *TokenBucket
	settings *config.SettingsHolder
}

func NewSearchLimiter(cfg config.Config, settings *config.SettingsHolder) *SearchLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &SearchLimiter{enabled: false}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})
	return &SearchLimiter{
		enabled:  true,
		bucket:   NewTokenBucket(client),
		settings: settings,
	}
}

func (l *SearchLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *SearchLimiter) Allow(ctx context.Context, personURN string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	current := l.settings.Current()
	key := fmt.Sprintf(keySearch, strings.TrimSpace(personURN))
	return l.bucket.Allow(ctx, key, current.SearchRateLimit, current.SearchRateBurst)
}
