// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// CacheMojangProfile stores a resolved Mojang profile under the looked-up
// username so the validator can skip the network on repeat requests.
func CacheMojangProfile(ctx context.Context, username string, profile *model.MojangProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal mojang profile: %w", err)
	}

	key := fmt.Sprintf("mojang:%s", username)
	ttl := viper.GetDuration("redis.defaultCacheTTL")
	if err := RedisClient.Set(ctx, key, profileJSON, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache mojang profile: %w", err)
	}

	return nil
}

// GetCachedMojangProfile returns the cached profile for username, or
// redis.Nil when the entry is absent or expired.
func GetCachedMojangProfile(ctx context.Context, username string) (*model.MojangProfile, error) {
	key := fmt.Sprintf("mojang:%s", username)
	profileJSON, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var profile model.MojangProfile
	if err := json.Unmarshal(profileJSON, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached mojang profile: %w", err)
	}

	return &profile, nil
}
