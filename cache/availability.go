package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/schedule"
)

// AvailabilityCache stores the occupied slots of a facility per date.
type AvailabilityCache interface {
	Get(ctx context.Context, facilityID int, date schedule.Date) ([]models.Slot, bool)
	Set(ctx context.Context, facilityID int, date schedule.Date, slots []models.Slot)
	Invalidate(ctx context.Context, facilityID int, date schedule.Date)
}

type redisAvailabilityCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewAvailabilityCache returns a Redis-backed cache, or a no-op one when rdb
// is nil.
func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) AvailabilityCache {
	if rdb == nil {
		return nopAvailabilityCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &redisAvailabilityCache{rdb: rdb, ttl: ttl, logger: logger}
}

func availabilityKey(facilityID int, date schedule.Date) string {
	return fmt.Sprintf("availability:%d:%s", facilityID, date)
}

func (c *redisAvailabilityCache) Get(ctx context.Context, facilityID int, date schedule.Date) ([]models.Slot, bool) {
	raw, err := c.rdb.Get(ctx, availabilityKey(facilityID, date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("availability cache read failed", slog.Int("facility_id", facilityID), slog.Any("error", err))
		}
		return nil, false
	}
	var slots []models.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *redisAvailabilityCache) Set(ctx context.Context, facilityID int, date schedule.Date, slots []models.Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, availabilityKey(facilityID, date), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", slog.Int("facility_id", facilityID), slog.Any("error", err))
	}
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context, facilityID int, date schedule.Date) {
	if err := c.rdb.Del(ctx, availabilityKey(facilityID, date)).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", slog.Int("facility_id", facilityID), slog.Any("error", err))
	}
}

type nopAvailabilityCache struct{}

func (nopAvailabilityCache) Get(context.Context, int, schedule.Date) ([]models.Slot, bool) {
	return nil, false
}

func (nopAvailabilityCache) Set(context.Context, int, schedule.Date, []models.Slot) {}

func (nopAvailabilityCache) Invalidate(context.Context, int, schedule.Date) {}
