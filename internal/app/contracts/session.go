package contracts

import (
	"context"
	"smartmarkers-service/internal/pkg/dto/requests"
	"smartmarkers-service/internal/pkg/dto/responses"
)

type SessionUsecase interface {
	CreateSession(ctx context.Context, request *requests.CreateSession) (*responses.Session, error)
	GetSession(ctx context.Context, sessionID string) (*responses.Session, error)
	CompleteTask(ctx context.Context, sessionID, taskID string, request *requests.CompleteTask) (*responses.TaskCompletion, error)
	GetSubmissionStep(ctx context.Context, sessionID string) (*responses.SubmissionStep, error)
	AnswerSubmissionStep(ctx context.Context, sessionID string, request *requests.AnswerSubmissionStep) (*responses.SubmissionStep, error)
	BackSubmissionStep(ctx context.Context, sessionID string) (*responses.SubmissionStep, error)
	NavigateNext(ctx context.Context, sessionID string) (*responses.Navigation, error)
	NavigateBack(ctx context.Context, sessionID string, request *requests.NavigateBack) (*responses.Navigation, error)
	EndSession(ctx context.Context, sessionID string) error
	ListSubmissions(ctx context.Context, sessionID string) ([]responses.SubmissionLog, error)
	EvictExpiredSessions(ctx context.Context) (int, error)
}

type SessionCache interface {
	SaveSummary(ctx context.Context, summary *responses.Session) error
	FindSummary(ctx context.Context, sessionID string) (*responses.Session, error)
	DeleteSummary(ctx context.Context, sessionID string) error
}
