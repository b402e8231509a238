package services

import (
	"context"
	"fmt"
	"time"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/redis/go-redis/v9"
)

// SweepLocker serialises dispatch of one (kind, lease, period) across
// overlapping sweep runs. The database watermark stays the authoritative
// gate; the lock only keeps concurrent instances from doing wasted work.
type SweepLocker interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// NewSweepLocker returns a Redis SETNX locker, or a no-op one when rdb is nil.
func NewSweepLocker(rdb *redis.Client) SweepLocker {
	if rdb == nil {
		return noopLocker{}
	}
	return &redisLocker{rdb: rdb, ttl: constants.SweepLockTTL}
}

func SweepLockKey(kind, leaseID, periodKey string) string {
	return fmt.Sprintf("%s:%s:%s:%s", constants.SweepLockPrefix, kind, leaseID, periodKey)
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (bool, error) { return true, nil }

type redisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX %s: %w", key, err)
	}
	return ok, nil
}
