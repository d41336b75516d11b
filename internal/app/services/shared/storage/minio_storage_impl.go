package storage

import (
	"bytes"
	"context"
	"fmt"
	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type minioStorage struct {
	MinioClient *minio.Client
	BucketName  string
	Log         *zap.Logger
}

func NewMinioStorage(minioClient *minio.Client, bucketName string, logger *zap.Logger) contracts.SubmissionArchive {
	return &minioStorage{
		MinioClient: minioClient,
		BucketName:  bucketName,
		Log:         logger,
	}
}

// ArchiveBundle stores the bundle JSON under
// sessions/<session>/<measure>/<task run>.json and returns the object name.
func (m *minioStorage) ArchiveBundle(ctx context.Context, sessionID string, bundle *models.SubmissionBundle) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	objectName := fmt.Sprintf(constvars.MinioSubmissionObjectFormat, sessionID, bundle.MeasureID, bundle.TaskRunID)
	m.Log.Info("minioStorage.ArchiveBundle called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBucketKey, m.BucketName),
		zap.String(constvars.LoggingObjectKey, objectName),
	)

	payload, err := json.Marshal(bundle.Bundle)
	if err != nil {
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	_, err = m.MinioClient.PutObject(
		ctx,
		m.BucketName,
		objectName,
		bytes.NewReader(payload),
		int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: constvars.MIMEApplicationFHIRJSON,
			UserMetadata: map[string]string{
				"status": string(bundle.Status()),
			},
		},
	)
	if err != nil {
		return "", exceptions.ErrMinioCreateObject(err, m.BucketName)
	}

	m.Log.Info("minioStorage.ArchiveBundle succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingObjectKey, objectName),
	)
	return objectName, nil
}
