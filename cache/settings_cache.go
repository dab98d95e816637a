package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Bt1Arena/db"
	"Bt1Arena/model"

	"github.com/go-redis/redis/v8"
)

// settingsTTL 设置缓存的过期时间
const settingsTTL = 30 * time.Minute

// GetSettingsKey 根据用户ID生成设置缓存的Redis键
func GetSettingsKey(userID int64) string {
	return fmt.Sprintf("settings:%d", userID)
}

// GetSettings reads the cached settings row for a user. The second return
// value reports a cache hit. A nil Redis client is treated as a miss so the
// service keeps working without the cache.
func GetSettings(ctx context.Context, userID int64) (*model.UserSettings, bool, error) {
	if db.RedisClient == nil {
		return nil, false, nil
	}

	val, err := db.RedisClient.Get(ctx, GetSettingsKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached settings: %w", err)
	}

	var settings model.UserSettings
	if err := json.Unmarshal([]byte(val), &settings); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached settings: %w", err)
	}
	return &settings, true, nil
}

// SetSettings caches a settings row with a TTL.
func SetSettings(ctx context.Context, settings *model.UserSettings) error {
	if db.RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	err = db.RedisClient.Set(ctx, GetSettingsKey(settings.UserID), data, settingsTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache settings: %w", err)
	}
	return nil
}

// InvalidateSettings drops the cached row after an upsert or account deletion.
func InvalidateSettings(ctx context.Context, userID int64) error {
	if db.RedisClient == nil {
		return nil
	}

	if err := db.RedisClient.Del(ctx, GetSettingsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached settings: %w", err)
	}
	return nil
}
