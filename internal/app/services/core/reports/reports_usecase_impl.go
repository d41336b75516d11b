package reports

import (
	"context"
	"time"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

type reportsUsecase struct {
	SubmissionLogRepository contracts.SubmissionLogRepository
	SubmissionArchive       contracts.SubmissionArchive
	EventPublisher          contracts.SubmissionEventPublisher
	Log                     *zap.Logger
	now                     func() time.Time
}

// NewReportsUsecase keeps the submission audit trail. archive and
// publisher are optional and skipped when nil.
func NewReportsUsecase(
	submissionLogRepository contracts.SubmissionLogRepository,
	archive contracts.SubmissionArchive,
	publisher contracts.SubmissionEventPublisher,
	logger *zap.Logger,
) contracts.ReportsUsecase {
	return &reportsUsecase{
		SubmissionLogRepository: submissionLogRepository,
		SubmissionArchive:       archive,
		EventPublisher:          publisher,
		Log:                     logger,
		now:                     time.Now,
	}
}

func (uc *reportsUsecase) NewRecorder(sessionID, patientID, server string) models.SubmissionRecorder {
	return &auditRecorder{
		usecase:   uc,
		sessionID: sessionID,
		patientID: patientID,
		server:    server,
	}
}

func (uc *reportsUsecase) FindSubmissionLogs(ctx context.Context, sessionID string) ([]models.SubmissionLog, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("reportsUsecase.FindSubmissionLogs called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	logs, err := uc.SubmissionLogRepository.FindBySessionID(ctx, sessionID)
	if err != nil {
		uc.Log.Error("reportsUsecase.FindSubmissionLogs error calling SubmissionLogRepository.FindBySessionID",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return logs, nil
}

type auditRecorder struct {
	usecase   *reportsUsecase
	sessionID string
	patientID string
	server    string
}

// RecordSubmission never fails the submission it observes: every audit
// error is logged and swallowed.
func (r *auditRecorder) RecordSubmission(ctx context.Context, bundle *models.SubmissionBundle) {
	uc := r.usecase
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	status := bundle.Status()
	uc.Log.Info("auditRecorder.RecordSubmission called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, r.sessionID),
		zap.String(constvars.LoggingTaskRunIDKey, bundle.TaskRunID),
		zap.String(constvars.LoggingStatusKey, string(status)),
	)

	now := uc.now()
	entry := &models.SubmissionLog{
		ID:            bundle.TaskRunID,
		SessionID:     r.sessionID,
		MeasureID:     bundle.MeasureID,
		TaskRunID:     bundle.TaskRunID,
		PatientID:     r.patientID,
		Server:        r.server,
		Status:        string(status),
		FailureReason: bundle.FailureReason(),
		ResourceCount: bundle.ResourceCount(),
		Summary:       bundle.Summary(),
		CreatedAt:     bundle.CreatedAt,
		UpdatedAt:     now,
	}

	if uc.SubmissionArchive != nil && status == models.SubmissionStatusSubmitted {
		object, err := uc.SubmissionArchive.ArchiveBundle(ctx, r.sessionID, bundle)
		if err != nil {
			uc.Log.Warn("auditRecorder.RecordSubmission error calling SubmissionArchive.ArchiveBundle",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		} else {
			entry.ArchiveObject = object
		}
	}

	if err := uc.SubmissionLogRepository.UpsertSubmissionLog(ctx, entry); err != nil {
		uc.Log.Warn("auditRecorder.RecordSubmission error calling SubmissionLogRepository.UpsertSubmissionLog",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}

	if uc.EventPublisher == nil {
		return
	}
	event := &models.SubmissionEvent{
		SessionID:     r.sessionID,
		MeasureID:     bundle.MeasureID,
		TaskRunID:     bundle.TaskRunID,
		PatientID:     r.patientID,
		Status:        string(status),
		FailureReason: bundle.FailureReason(),
		OccurredAt:    now,
	}
	if err := uc.EventPublisher.PublishSubmissionEvent(ctx, event); err != nil {
		uc.Log.Warn("auditRecorder.RecordSubmission error calling EventPublisher.PublishSubmissionEvent",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
}
