package database

import (
	"context"
	"fmt"
	"smartmarkers-service/internal/app/config"
	"smartmarkers-service/internal/pkg/constvars"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func NewMongoDB(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig, log *zap.Logger) *mongo.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connectionString := fmt.Sprintf(
		"mongodb://%s:%s@%s:%s",
		driverConfig.MongoDB.Username,
		driverConfig.MongoDB.Password,
		driverConfig.MongoDB.Host,
		driverConfig.MongoDB.Port,
	)
	dbOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(ctx, dbOptions)
	if err != nil {
		log.Fatal("Failed to connect to mongo database", zap.Error(err))
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("Failed to ping or test the connection to mongo database", zap.Error(err))
	}

	collection := client.Database(internalConfig.MongoDB.DbName).Collection(constvars.MongoCollectionSubmissionLogs)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		log.Warn("Failed to ensure submission log index", zap.Error(err))
	}

	log.Info("Successfully connected to mongo database")
	return client
}
