package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"smartmarkers-service/internal/app/config"
	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/app/services/navigation"
	"smartmarkers-service/internal/app/services/session"
	"smartmarkers-service/internal/app/services/shared/jwtmanager"
	"smartmarkers-service/internal/app/services/shared/verification"
	"smartmarkers-service/internal/app/services/submission"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/dto/requests"
	"smartmarkers-service/internal/pkg/dto/responses"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"
	"smartmarkers-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// VerificationTokens issues and checks the tokens that let a clinician
// leave a verified session. *jwtmanager.JWTManager satisfies it.
type VerificationTokens interface {
	verification.TokenVerifier
	CreateToken(ctx context.Context, in *jwtmanager.CreateTokenInput) (*jwtmanager.CreateTokenOutput, error)
}

const (
	NavigationOutcomeAdvanced = "advanced"
	NavigationOutcomeFinished = "finished"
)

type sessionUsecase struct {
	InstrumentFactory contracts.InstrumentFactory
	ProfileFhirClient contracts.ProfileFhirClient
	BundleFhirClient  contracts.BundleFhirClient
	ReportsUsecase    contracts.ReportsUsecase
	SessionCache      contracts.SessionCache
	LockerService     contracts.LockerService
	Tokens            VerificationTokens
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionRuntime
	now      func() time.Time
}

// NewSessionUsecase keeps live sessions in process memory. Redis only
// mirrors their summaries and serializes submissions. tokens may be nil,
// in which case verified sessions can only be left with their passcode.
func NewSessionUsecase(
	instrumentFactory contracts.InstrumentFactory,
	profileFhirClient contracts.ProfileFhirClient,
	bundleFhirClient contracts.BundleFhirClient,
	reportsUsecase contracts.ReportsUsecase,
	sessionCache contracts.SessionCache,
	lockerService contracts.LockerService,
	tokens VerificationTokens,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.SessionUsecase {
	return &sessionUsecase{
		InstrumentFactory: instrumentFactory,
		ProfileFhirClient: profileFhirClient,
		BundleFhirClient:  bundleFhirClient,
		ReportsUsecase:    reportsUsecase,
		SessionCache:      sessionCache,
		LockerService:     lockerService,
		Tokens:            tokens,
		InternalConfig:    internalConfig,
		Log:               logger,
		sessions:          make(map[string]*sessionRuntime),
		now:               time.Now,
	}
}

func (uc *sessionUsecase) CreateSession(ctx context.Context, request *requests.CreateSession) (*responses.Session, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.CreateSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(request.Instruments)),
	)

	instruments := make([]models.Instrument, 0, len(request.Instruments))
	for i := range request.Instruments {
		instrument, err := uc.InstrumentFactory.Build(&request.Instruments[i])
		if err != nil {
			uc.Log.Error("sessionUsecase.CreateSession error calling InstrumentFactory.Build",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingInstrumentKey, request.Instruments[i].Identifier),
				zap.Error(err),
			)
			return nil, err
		}
		instruments = append(instruments, instrument)
	}

	patient, err := uc.resolvePatient(ctx, request.PatientReference)
	if err != nil {
		return nil, err
	}

	var server *models.Server
	if request.SubmitResults {
		name := request.ServerName
		if name == "" {
			name = uc.InternalConfig.FHIR.ServerName
		}
		server = &models.Server{
			Name:    name,
			BaseURL: uc.InternalConfig.FHIR.BaseUrl,
			Client:  uc.BundleFhirClient,
		}
	}

	sess := &models.Session{
		ID:         utils.GenerateSessionID(),
		Patient:    patient,
		Server:     server,
		VerifyUser: request.VerifyUser,
		CreatedAt:  uc.now(),
	}
	for _, instrument := range instruments {
		sess.Measures = append(sess.Measures, models.NewMeasure(instrument, patient, server))
	}

	rt := &sessionRuntime{session: sess, lastAccess: uc.now()}
	if request.Passcode != "" {
		hash, err := utils.HashPassword(request.Passcode)
		if err != nil {
			return nil, exceptions.ErrServerProcess(err)
		}
		rt.passcodeHash = hash
	}

	patientID, serverHost := "", ""
	if patient != nil {
		patientID = patient.ID
	}
	if server != nil {
		serverHost = server.Host()
	}
	sessionID := sess.ID
	controller, err := session.NewController(sess, session.Dependencies{
		Log:            uc.Log,
		Recorder:       uc.ReportsUsecase.NewRecorder(sessionID, patientID, serverHost),
		OnSessionEnded: func() { uc.unregister(sessionID) },
	})
	if err != nil {
		uc.Log.Error("sessionUsecase.CreateSession error calling session.NewController",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	preparation, err := controller.Prepare(ctx)
	if err != nil {
		uc.Log.Error("sessionUsecase.CreateSession error calling Controller.Prepare",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, sessionID),
			zap.Error(err),
		)
		return nil, err
	}
	rt.preparation = preparation
	for _, failure := range preparation.Failures {
		rt.failures = append(rt.failures, responses.PreparationFailure{MeasureID: failure.MeasureID, Reason: failure.Err.Error()})
	}
	if preparation.Warning != nil {
		rt.warning = constvars.CreateSessionDegradedMessage
	}

	uc.mu.Lock()
	uc.sessions[sessionID] = rt
	uc.mu.Unlock()

	summary := rt.summary()
	uc.cacheSummary(ctx, summary)

	if sess.VerifyUser && uc.Tokens != nil {
		token, err := uc.Tokens.CreateToken(ctx, &jwtmanager.CreateTokenInput{Subject: sessionID})
		if err != nil {
			uc.Log.Warn("sessionUsecase.CreateSession error calling Tokens.CreateToken",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		} else {
			summary.VerificationToken = token.Token
		}
	}

	uc.Log.Info("sessionUsecase.CreateSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
		zap.Int(constvars.LoggingCountKey, len(summary.Items)),
		zap.Int(constvars.LoggingFailedCountKey, len(rt.failures)),
	)
	return summary, nil
}

// resolvePatient returns nil for an empty reference and for practitioner
// profiles; only a patient can be the subject of submitted results.
func (uc *sessionUsecase) resolvePatient(ctx context.Context, reference string) (*fhir_dto.Patient, error) {
	if reference == "" {
		return nil, nil
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	profile, err := uc.ProfileFhirClient.FindProfile(ctx, reference)
	if err != nil {
		uc.Log.Error("sessionUsecase.resolvePatient error calling ProfileFhirClient.FindProfile",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingResourceIDKey, reference),
			zap.Error(err),
		)
		return nil, err
	}
	if profile.Type != models.ProfileTypePatient {
		uc.Log.Info("sessionUsecase.resolvePatient practitioner session without patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingResourceIDKey, profile.Reference()),
		)
		return nil, nil
	}
	return profile.Patient, nil
}

func (uc *sessionUsecase) GetSession(ctx context.Context, sessionID string) (*responses.Session, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.GetSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	if rt, ok := uc.lookup(sessionID); ok {
		return rt.summary(), nil
	}

	cached, err := uc.SessionCache.FindSummary(ctx, sessionID)
	if err != nil {
		uc.Log.Warn("sessionUsecase.GetSession error calling SessionCache.FindSummary",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
	if cached == nil {
		return nil, exceptions.ErrSessionNotFoundError(sessionID)
	}
	return cached, nil
}

func (uc *sessionUsecase) CompleteTask(ctx context.Context, sessionID, taskID string, request *requests.CompleteTask) (*responses.TaskCompletion, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.CompleteTask called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
		zap.String(constvars.LoggingTaskIDKey, taskID),
	)

	rt, err := uc.live(sessionID)
	if err != nil {
		return nil, err
	}
	item, ok := rt.preparation.Container.Item(taskID)
	if !ok || item.Kind != navigation.ItemKindMeasure {
		return nil, exceptions.ErrTaskNotFoundError(taskID)
	}

	result, err := taskResult(item.Task, request)
	if err != nil {
		return nil, err
	}

	bundle, err := item.Measure.Complete(ctx, result)
	if err != nil {
		uc.Log.Error("sessionUsecase.CompleteTask error calling Measure.Complete",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMeasureIDKey, item.Measure.Identifier()),
			zap.Error(err),
		)
		return nil, err
	}

	response := &responses.TaskCompletion{SessionID: sessionID, TaskID: taskID}
	if bundle != nil {
		response.TaskRunID = bundle.TaskRunID
		response.ResourceCount = bundle.ResourceCount()
		response.Summary = bundle.Summary()
	}
	uc.cacheSummary(ctx, rt.summary())

	uc.Log.Info("sessionUsecase.CompleteTask succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTaskRunIDKey, response.TaskRunID),
		zap.Int(constvars.LoggingCountKey, response.ResourceCount),
	)
	return response, nil
}

// taskResult maps the request onto the task, rejecting answers for steps
// the task does not have.
func taskResult(task *models.Task, request *requests.CompleteTask) (*models.TaskResult, error) {
	result := &models.TaskResult{
		TaskID:      task.ID,
		StartDate:   request.StartDate,
		EndDate:     request.EndDate,
		StepResults: make(map[string]models.StepResult, len(request.StepResults)),
	}
	for _, r := range request.StepResults {
		if _, ok := task.Step(r.StepID); !ok {
			return nil, exceptions.ErrStepNotAnswerableError(r.StepID)
		}
		result.StepResults[r.StepID] = models.StepResult{
			StepID:  r.StepID,
			Choices: r.Choices,
			Text:    r.Text,
			Number:  r.Number,
			Boolean: r.Boolean,
			Payload: []byte(r.Payload),
		}
	}
	return result, nil
}

func (uc *sessionUsecase) GetSubmissionStep(ctx context.Context, sessionID string) (*responses.SubmissionStep, error) {
	rt, err := uc.live(sessionID)
	if err != nil {
		return nil, err
	}
	flow := rt.preparation.Submission
	if flow == nil {
		return nil, exceptions.ErrTaskNotFoundError(submission.TaskID)
	}
	return submissionStep(sessionID, flow, flow.Current()), nil
}

// AnswerSubmissionStep holds the session's submission lock for the whole
// answer, so a double tap cannot post the same bundles twice.
func (uc *sessionUsecase) AnswerSubmissionStep(ctx context.Context, sessionID string, request *requests.AnswerSubmissionStep) (*responses.SubmissionStep, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.AnswerSubmissionStep called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
		zap.String(constvars.LoggingStepIDKey, request.StepID),
	)

	rt, err := uc.live(sessionID)
	if err != nil {
		return nil, err
	}
	flow := rt.preparation.Submission
	if flow == nil {
		return nil, exceptions.ErrTaskNotFoundError(submission.TaskID)
	}

	lockKey := fmt.Sprintf(constvars.RedisKeySubmissionLockFormat, sessionID)
	lockTTL := time.Duration(uc.InternalConfig.Submission.LockTTLInSeconds) * time.Second
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrSubmissionLockedError(sessionID)
	}
	defer func() {
		// The request context may already be done; release on a fresh one.
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := uc.LockerService.Unlock(unlockCtx, lockKey, lockValue); err != nil {
			uc.Log.Warn("sessionUsecase.AnswerSubmissionStep error calling LockerService.Unlock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
	}()

	step, err := flow.Answer(ctx, models.StepResult{
		StepID:  request.StepID,
		Choices: request.Choices,
		Boolean: request.Boolean,
	})
	if err != nil {
		return nil, err
	}

	uc.cacheSummary(ctx, rt.summary())
	return submissionStep(sessionID, flow, step), nil
}

func (uc *sessionUsecase) BackSubmissionStep(ctx context.Context, sessionID string) (*responses.SubmissionStep, error) {
	rt, err := uc.live(sessionID)
	if err != nil {
		return nil, err
	}
	flow := rt.preparation.Submission
	if flow == nil {
		return nil, exceptions.ErrTaskNotFoundError(submission.TaskID)
	}
	step, _, err := flow.Back()
	if err != nil {
		return nil, err
	}
	return submissionStep(sessionID, flow, step), nil
}

func submissionStep(sessionID string, flow *submission.Flow, step models.Step) *responses.SubmissionStep {
	response := &responses.SubmissionStep{
		SessionID: sessionID,
		Step:      step,
		Finished:  flow.Finished(),
	}
	for _, err := range flow.SubmissionErrors() {
		response.Errors = append(response.Errors, err.Error())
	}
	return response
}

func (uc *sessionUsecase) NavigateNext(ctx context.Context, sessionID string) (*responses.Navigation, error) {
	rt, err := uc.live(sessionID)
	if err != nil {
		return nil, err
	}
	container := rt.preparation.Container

	item, ok, err := container.Advance(ctx)
	if err != nil {
		return nil, err
	}
	response := &responses.Navigation{
		SessionID: sessionID,
		Outcome:   NavigationOutcomeFinished,
		Position:  container.Position(),
		Dismissed: container.Dismissed(),
	}
	if ok {
		current := sessionItem(item)
		response.Outcome = NavigationOutcomeAdvanced
		response.Current = &current
		uc.cacheSummary(ctx, rt.summary())
	}
	return response, nil
}

// NavigateBack pops one item. Leaving a verified session from its first
// item requires the session passcode or its verification token.
func (uc *sessionUsecase) NavigateBack(ctx context.Context, sessionID string, request *requests.NavigateBack) (*responses.Navigation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	rt, err := uc.live(sessionID)
	if err != nil {
		return nil, err
	}
	container := rt.preparation.Container

	challenges := []contracts.VerificationChallenge{
		verification.NewPasscodeChallenge(rt.passcodeHash, request.Passcode),
	}
	if uc.Tokens != nil {
		challenges = append(challenges, verification.NewTokenChallenge(uc.Tokens, sessionID, request.Token))
	}

	outcome, err := container.Pop(ctx, verification.Any(challenges...))
	if err != nil {
		if errors.Is(err, exceptions.ErrVerificationFailed) {
			utils.LogSecurityEvent(uc.Log, "session_exit_verification_failed", requestID, "medium",
				zap.String(constvars.LoggingSessionIDKey, sessionID),
			)
		}
		return nil, err
	}

	response := &responses.Navigation{
		SessionID: sessionID,
		Outcome:   string(outcome),
		Position:  container.Position(),
		Dismissed: container.Dismissed(),
	}
	if current, ok := container.Current(); ok && !response.Dismissed {
		item := sessionItem(current)
		response.Current = &item
		uc.cacheSummary(ctx, rt.summary())
	}
	return response, nil
}

func (uc *sessionUsecase) EndSession(ctx context.Context, sessionID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("sessionUsecase.EndSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	rt, ok := uc.lookup(sessionID)
	if !ok {
		return exceptions.ErrSessionNotFoundError(sessionID)
	}
	rt.preparation.Container.Dismiss()
	return nil
}

func (uc *sessionUsecase) ListSubmissions(ctx context.Context, sessionID string) ([]responses.SubmissionLog, error) {
	logs, err := uc.ReportsUsecase.FindSubmissionLogs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	response := make([]responses.SubmissionLog, 0, len(logs))
	for _, log := range logs {
		response = append(response, responses.SubmissionLog{
			MeasureID:     log.MeasureID,
			TaskRunID:     log.TaskRunID,
			Status:        log.Status,
			FailureReason: log.FailureReason,
			ResourceCount: log.ResourceCount,
			Summary:       log.Summary,
			UpdatedAt:     log.UpdatedAt,
		})
	}
	return response, nil
}

// EvictExpiredSessions dismisses every session idle for longer than the
// configured TTL. Dismissal fires the session-ended notification, which
// unregisters the session.
func (uc *sessionUsecase) EvictExpiredSessions(ctx context.Context) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	ttl := time.Duration(uc.InternalConfig.Session.TTLInMinutes) * time.Minute
	cutoff := uc.now().Add(-ttl)

	uc.mu.RLock()
	var expired []*sessionRuntime
	for _, rt := range uc.sessions {
		if rt.idleSince().Before(cutoff) {
			expired = append(expired, rt)
		}
	}
	uc.mu.RUnlock()

	for _, rt := range expired {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		rt.preparation.Container.Dismiss()
	}

	uc.Log.Info("sessionUsecase.EvictExpiredSessions succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(expired)),
	)
	return len(expired), nil
}

func (uc *sessionUsecase) lookup(sessionID string) (*sessionRuntime, bool) {
	uc.mu.RLock()
	rt, ok := uc.sessions[sessionID]
	uc.mu.RUnlock()
	if ok {
		rt.touch(uc.now())
	}
	return rt, ok
}

// live returns a registered session whose container is still presented.
func (uc *sessionUsecase) live(sessionID string) (*sessionRuntime, error) {
	rt, ok := uc.lookup(sessionID)
	if !ok {
		return nil, exceptions.ErrSessionNotFoundError(sessionID)
	}
	if rt.preparation.Container.Dismissed() {
		return nil, exceptions.ErrSessionDismissedError()
	}
	return rt, nil
}

func (uc *sessionUsecase) unregister(sessionID string) {
	uc.mu.Lock()
	delete(uc.sessions, sessionID)
	uc.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := uc.SessionCache.DeleteSummary(ctx, sessionID); err != nil {
		uc.Log.Warn("sessionUsecase.unregister error calling SessionCache.DeleteSummary",
			zap.String(constvars.LoggingSessionIDKey, sessionID),
			zap.Error(err),
		)
	}
	uc.Log.Info("sessionUsecase.unregister session ended",
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)
}

func (uc *sessionUsecase) cacheSummary(ctx context.Context, summary *responses.Session) {
	if err := uc.SessionCache.SaveSummary(ctx, summary); err != nil {
		requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		uc.Log.Warn("sessionUsecase.cacheSummary error calling SessionCache.SaveSummary",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
}
