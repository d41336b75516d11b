package storage

import (
	"context"
	"fmt"
	"smartmarkers-service/internal/app/config"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// NewMinio also makes sure the archive bucket exists.
func NewMinio(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig, log *zap.Logger) *minio.Client {
	endPoint := fmt.Sprintf("%s:%s", driverConfig.Minio.Host, driverConfig.Minio.Port)
	minioClient, err := minio.New(endPoint, &minio.Options{
		Creds:  credentials.NewStaticV4(driverConfig.Minio.Username, driverConfig.Minio.Password, ""),
		Secure: driverConfig.Minio.UseSSL,
	})
	if err != nil {
		log.Fatal("Failed to initialize Minio Client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bucketName := internalConfig.Minio.BucketName
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("Failed to check Minio bucket", zap.String("bucket", bucketName), zap.Error(err))
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("Failed to create Minio bucket", zap.String("bucket", bucketName), zap.Error(err))
		}
	}

	log.Info("Successfully connected to minio", zap.String("bucket", bucketName))
	return minioClient
}
