package config

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Bootstrap struct {
	Router         *chi.Mux
	Redis          *redis.Client
	MongoDB        *mongo.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
	// WorkerStop if set will be called during Shutdown to stop background workers
	WorkerStop func()
}

// Shutdown stops the workers before closing the drivers they use.
func (b *Bootstrap) Shutdown(ctx context.Context) error {
	if b.WorkerStop != nil {
		b.WorkerStop()
		b.Logger.Info("Successfully stopped background workers")
	}

	err := b.Redis.Close()
	if err != nil {
		return err
	}
	b.Logger.Info("Successfully closing Redis")

	if b.RabbitMQ != nil && !b.RabbitMQ.IsClosed() {
		err = b.RabbitMQ.Close()
		if err != nil {
			return err
		}
		b.Logger.Info("Successfully closing RabbitMQ")
	}

	err = b.MongoDB.Disconnect(ctx)
	if err != nil {
		return err
	}
	b.Logger.Info("Successfully closing MongoDB")

	_ = b.Logger.Sync()
	return nil
}
