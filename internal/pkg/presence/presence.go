package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "taskmanager:active:"

// Tracker marks authenticated users as recently active in Redis.
//
// Every mark is a TTL'd key, so the set of active users is simply the set of
// live keys. A nil Tracker (or nil client) disables tracking entirely.
type Tracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTracker(rdb *redis.Client, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Tracker{
		rdb: rdb,
		ttl: ttl,
	}
}

// Touch refreshes the activity marker for userID.
func (t *Tracker) Touch(ctx context.Context, userID int) error {
	if t == nil || t.rdb == nil {
		return nil
	}
	key := fmt.Sprintf("%s%d", keyPrefix, userID)
	if err := t.rdb.Set(ctx, key, "1", t.ttl).Err(); err != nil {
		return fmt.Errorf("presence set: %w", err)
	}
	return nil
}

// ActiveCount returns the number of users with a live activity marker.
func (t *Tracker) ActiveCount(ctx context.Context) (int, error) {
	if t == nil || t.rdb == nil {
		return 0, nil
	}
	var cursor uint64
	count := 0
	for {
		keys, next, err := t.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("presence scan: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// StartRefresher periodically publishes the active-user count until ctx ends.
// It returns immediately when tracking is disabled.
func (t *Tracker) StartRefresher(ctx context.Context, interval time.Duration, publish func(float64)) {
	if t == nil || t.rdb == nil || publish == nil {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := t.ActiveCount(ctx)
				if err != nil {
					continue
				}
				publish(float64(n))
			}
		}
	}()
}
