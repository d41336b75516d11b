package database

import (
	"context"
	"fmt"
	"smartmarkers-service/internal/app/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedisClient(driverConfig *config.DriverConfig, log *zap.Logger) *redis.Client {
	var ctx = context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", driverConfig.Redis.Host, driverConfig.Redis.Port),
		Password: driverConfig.Redis.Password,
	})

	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		log.Fatal("Could not connect to Redis", zap.Error(err))
	}

	log.Info("Successfully connected to redis")
	return rdb
}
