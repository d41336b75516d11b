package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockSubmissionLogRepository struct {
	mock.Mock
}

func (m *MockSubmissionLogRepository) UpsertSubmissionLog(ctx context.Context, log *models.SubmissionLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockSubmissionLogRepository) FindBySessionID(ctx context.Context, sessionID string) ([]models.SubmissionLog, error) {
	args := m.Called(ctx, sessionID)
	logs, _ := args.Get(0).([]models.SubmissionLog)
	return logs, args.Error(1)
}

type MockSubmissionArchive struct {
	mock.Mock
}

func (m *MockSubmissionArchive) ArchiveBundle(ctx context.Context, sessionID string, bundle *models.SubmissionBundle) (string, error) {
	args := m.Called(ctx, sessionID, bundle)
	return args.String(0), args.Error(1)
}

type MockSubmissionEventPublisher struct {
	mock.Mock
}

func (m *MockSubmissionEventPublisher) PublishSubmissionEvent(ctx context.Context, event *models.SubmissionEvent) error {
	return m.Called(ctx, event).Error(0)
}

func submittedBundle() *models.SubmissionBundle {
	bundle := models.NewSubmissionBundle("run-1", "phq9", &fhir_dto.FHIRBundle{
		ResourceType: "Bundle",
		Type:         "collection",
		Entry: []fhir_dto.Entry{
			{Resource: []byte(`{"resourceType":"QuestionnaireResponse"}`)},
		},
	}, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	bundle.MarkShouldSubmit()
	bundle.MarkSubmitted(time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC))
	return bundle
}

func TestRecordSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("Archives, logs and publishes a submitted bundle", func(t *testing.T) {
		repo := new(MockSubmissionLogRepository)
		archive := new(MockSubmissionArchive)
		publisher := new(MockSubmissionEventPublisher)
		bundle := submittedBundle()

		archive.On("ArchiveBundle", ctx, "s-1", bundle).Return("sessions/s-1/phq9/run-1.json", nil)
		repo.On("UpsertSubmissionLog", ctx, mock.MatchedBy(func(log *models.SubmissionLog) bool {
			return log.ID == "run-1" &&
				log.Status == "submitted" &&
				log.ArchiveObject == "sessions/s-1/phq9/run-1.json" &&
				log.ResourceCount == 1 &&
				log.PatientID == "p-1"
		})).Return(nil)
		publisher.On("PublishSubmissionEvent", ctx, mock.MatchedBy(func(event *models.SubmissionEvent) bool {
			return event.TaskRunID == "run-1" && event.Status == "submitted"
		})).Return(nil)

		usecase := NewReportsUsecase(repo, archive, publisher, zap.NewNop())
		usecase.NewRecorder("s-1", "p-1", "fhir.example.org").RecordSubmission(ctx, bundle)

		repo.AssertExpectations(t)
		archive.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Failed bundles are not archived", func(t *testing.T) {
		repo := new(MockSubmissionLogRepository)
		archive := new(MockSubmissionArchive)
		bundle := models.NewSubmissionBundle("run-2", "phq9", &fhir_dto.FHIRBundle{}, time.Now())
		bundle.MarkShouldSubmit()
		bundle.MarkFailed(errors.New("server returned 500"))

		repo.On("UpsertSubmissionLog", ctx, mock.MatchedBy(func(log *models.SubmissionLog) bool {
			return log.Status == "failed" && log.FailureReason != "" && log.ArchiveObject == ""
		})).Return(nil)

		usecase := NewReportsUsecase(repo, archive, nil, zap.NewNop())
		usecase.NewRecorder("s-1", "p-1", "").RecordSubmission(ctx, bundle)

		repo.AssertExpectations(t)
		archive.AssertNotCalled(t, "ArchiveBundle", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Audit failures are swallowed", func(t *testing.T) {
		repo := new(MockSubmissionLogRepository)
		archive := new(MockSubmissionArchive)
		publisher := new(MockSubmissionEventPublisher)
		bundle := submittedBundle()

		archive.On("ArchiveBundle", ctx, "s-1", bundle).Return("", errors.New("bucket missing"))
		repo.On("UpsertSubmissionLog", ctx, mock.Anything).Return(errors.New("mongo down"))
		publisher.On("PublishSubmissionEvent", ctx, mock.Anything).Return(errors.New("broker down"))

		usecase := NewReportsUsecase(repo, archive, publisher, zap.NewNop())

		assert.NotPanics(t, func() {
			usecase.NewRecorder("s-1", "p-1", "").RecordSubmission(ctx, bundle)
		})
		publisher.AssertExpectations(t)
	})
}

func TestFindSubmissionLogs(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubmissionLogRepository)
	repo.On("FindBySessionID", ctx, "s-1").Return([]models.SubmissionLog{{ID: "run-1"}}, nil)
	repo.On("FindBySessionID", ctx, "s-2").Return(nil, errors.New("mongo down"))

	usecase := NewReportsUsecase(repo, nil, nil, zap.NewNop())

	logs, err := usecase.FindSubmissionLogs(ctx, "s-1")
	assert.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = usecase.FindSubmissionLogs(ctx, "s-2")
	assert.Error(t, err)
}
