package reports

import (
	"context"
	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubmissionLogMongoRepository struct {
	Collection *mongo.Collection
}

func NewSubmissionLogMongoRepository(db *mongo.Client, dbName string) contracts.SubmissionLogRepository {
	return &SubmissionLogMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionSubmissionLogs),
	}
}

// UpsertSubmissionLog keys the record on the task run, so repeated
// attempts for the same bundle update one document.
func (r *SubmissionLogMongoRepository) UpsertSubmissionLog(ctx context.Context, log *models.SubmissionLog) error {
	filter := bson.M{"_id": log.ID}
	update := bson.M{
		"$set": bson.M{
			"session_id":     log.SessionID,
			"measure_id":     log.MeasureID,
			"task_run_id":    log.TaskRunID,
			"patient_id":     log.PatientID,
			"server":         log.Server,
			"status":         log.Status,
			"failure_reason": log.FailureReason,
			"resource_count": log.ResourceCount,
			"summary":        log.Summary,
			"archive_object": log.ArchiveObject,
			"updated_at":     log.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": log.CreatedAt,
		},
	}

	_, err := r.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return exceptions.ErrMongoDBUpsertDocument(err)
	}
	return nil
}

func (r *SubmissionLogMongoRepository) FindBySessionID(ctx context.Context, sessionID string) ([]models.SubmissionLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var logs []models.SubmissionLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return logs, nil
}
