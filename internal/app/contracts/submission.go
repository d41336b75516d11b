package contracts

import (
	"context"
	"smartmarkers-service/internal/app/models"
)

type SubmissionArchive interface {
	ArchiveBundle(ctx context.Context, sessionID string, bundle *models.SubmissionBundle) (string, error)
}

type SubmissionEventPublisher interface {
	PublishSubmissionEvent(ctx context.Context, event *models.SubmissionEvent) error
}

type SubmissionLogRepository interface {
	UpsertSubmissionLog(ctx context.Context, log *models.SubmissionLog) error
	FindBySessionID(ctx context.Context, sessionID string) ([]models.SubmissionLog, error)
}

type ReportsUsecase interface {
	NewRecorder(sessionID, patientID, server string) models.SubmissionRecorder
	FindSubmissionLogs(ctx context.Context, sessionID string) ([]models.SubmissionLog, error)
}
