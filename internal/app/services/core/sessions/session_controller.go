package sessions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"smartmarkers-service/internal/app/config"
	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/dto/requests"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type SessionController struct {
	Log            *zap.Logger
	SessionUsecase contracts.SessionUsecase
	InternalConfig *config.InternalConfig
}

func NewSessionController(logger *zap.Logger, sessionUsecase contracts.SessionUsecase, internalConfig *config.InternalConfig) *SessionController {
	return &SessionController{
		Log:            logger,
		SessionUsecase: sessionUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	requestID, ok := ctrl.requestID(w, r, "CreateSession")
	if !ok {
		return
	}

	request := new(requests.CreateSession)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("SessionController.CreateSession error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("SessionController.CreateSession validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(ctrl.InternalConfig.Session.PrepareTimeoutSec)*time.Second)
	defer cancel()

	response, err := ctrl.SessionUsecase.CreateSession(ctx, request)
	if err != nil {
		ctrl.usecaseError(w, "CreateSession", requestID, err)
		return
	}

	message := constvars.CreateSessionSuccessMessage
	if response.Warning != "" {
		message = constvars.CreateSessionDegradedMessage
	}
	ctrl.Log.Info("SessionController.CreateSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, response.SessionID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, message, response)
}

func (ctrl *SessionController) GetSession(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "GetSession")
	if !ok {
		return
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	response, err := ctrl.SessionUsecase.GetSession(ctx, sessionID)
	if err != nil {
		ctrl.usecaseError(w, "GetSession", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetSessionSuccessMessage, response)
}

func (ctrl *SessionController) EndSession(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "EndSession")
	if !ok {
		return
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	if err := ctrl.SessionUsecase.EndSession(ctx, sessionID); err != nil {
		ctrl.usecaseError(w, "EndSession", requestID, err)
		return
	}

	ctrl.Log.Info("SessionController.EndSession succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.DeleteSessionSuccessMessage, nil)
}

func (ctrl *SessionController) CompleteTask(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "CompleteTask")
	if !ok {
		return
	}
	taskID := chi.URLParam(r, constvars.URLParamTaskID)
	if taskID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(errors.New("parameter is missing from url path"), constvars.URLParamTaskID))
		return
	}

	request := new(requests.CompleteTask)
	if !ctrl.decodeAndValidate(w, r, "CompleteTask", requestID, request) {
		return
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	response, err := ctrl.SessionUsecase.CompleteTask(ctx, sessionID, taskID, request)
	if err != nil {
		ctrl.usecaseError(w, "CompleteTask", requestID, err)
		return
	}

	ctrl.Log.Info("SessionController.CompleteTask succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTaskIDKey, taskID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CompleteTaskSuccessMessage, response)
}

func (ctrl *SessionController) GetSubmissionStep(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "GetSubmissionStep")
	if !ok {
		return
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	response, err := ctrl.SessionUsecase.GetSubmissionStep(ctx, sessionID)
	if err != nil {
		ctrl.usecaseError(w, "GetSubmissionStep", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetSubmissionStepSuccessMessage, response)
}

// AnswerSubmissionStep may post bundles to the FHIR server, so it runs on
// the submission timeout rather than the request timeout.
func (ctrl *SessionController) AnswerSubmissionStep(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "AnswerSubmissionStep")
	if !ok {
		return
	}

	request := new(requests.AnswerSubmissionStep)
	if !ctrl.decodeAndValidate(w, r, "AnswerSubmissionStep", requestID, request) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(ctrl.InternalConfig.Submission.RequestTimeoutInSecs)*time.Second)
	defer cancel()

	response, err := ctrl.SessionUsecase.AnswerSubmissionStep(ctx, sessionID, request)
	if err != nil {
		ctrl.usecaseError(w, "AnswerSubmissionStep", requestID, err)
		return
	}

	ctrl.Log.Info("SessionController.AnswerSubmissionStep succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
		zap.Bool("finished", response.Finished),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AnswerSubmissionStepSuccessMessage, response)
}

func (ctrl *SessionController) BackSubmissionStep(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "BackSubmissionStep")
	if !ok {
		return
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	response, err := ctrl.SessionUsecase.BackSubmissionStep(ctx, sessionID)
	if err != nil {
		ctrl.usecaseError(w, "BackSubmissionStep", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.NavigateSubmissionStepSuccessMessage, response)
}

func (ctrl *SessionController) NavigateNext(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "NavigateNext")
	if !ok {
		return
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	response, err := ctrl.SessionUsecase.NavigateNext(ctx, sessionID)
	if err != nil {
		ctrl.usecaseError(w, "NavigateNext", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.NavigateSessionSuccessMessage, response)
}

// NavigateBack accepts an empty body; credentials are only needed when
// leaving a verified session.
func (ctrl *SessionController) NavigateBack(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "NavigateBack")
	if !ok {
		return
	}

	request := new(requests.NavigateBack)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, request); err != nil {
			ctrl.Log.Error("SessionController.NavigateBack error decoding JSON",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
			return
		}
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	response, err := ctrl.SessionUsecase.NavigateBack(ctx, sessionID, request)
	if err != nil {
		ctrl.usecaseError(w, "NavigateBack", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.NavigateSessionSuccessMessage, response)
}

func (ctrl *SessionController) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	requestID, sessionID, ok := ctrl.sessionRequest(w, r, "ListSubmissions")
	if !ok {
		return
	}

	ctx, cancel := ctrl.requestContext(r)
	defer cancel()

	response, err := ctrl.SessionUsecase.ListSubmissions(ctx, sessionID)
	if err != nil {
		ctrl.usecaseError(w, "ListSubmissions", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ListSubmissionsSuccessMessage, response)
}

func (ctrl *SessionController) requestID(w http.ResponseWriter, r *http.Request, method string) (string, bool) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("SessionController." + method + " requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerProcess(errors.New("missing request id")))
		return "", false
	}
	ctrl.Log.Info("SessionController."+method+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return requestID, true
}

func (ctrl *SessionController) sessionRequest(w http.ResponseWriter, r *http.Request, method string) (string, string, bool) {
	requestID, ok := ctrl.requestID(w, r, method)
	if !ok {
		return "", "", false
	}

	sessionID := chi.URLParam(r, constvars.URLParamSessionID)
	if err := utils.ValidateUrlParamID(sessionID); err != nil {
		ctrl.Log.Error("SessionController."+method+" invalid session id",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, sessionID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamSessionID))
		return "", "", false
	}
	return requestID, sessionID, true
}

func (ctrl *SessionController) decodeAndValidate(w http.ResponseWriter, r *http.Request, method, requestID string, request interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("SessionController."+method+" error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return false
	}
	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("SessionController."+method+" validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return false
	}
	return true
}

func (ctrl *SessionController) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), time.Duration(ctrl.InternalConfig.App.RequestTimeoutInSeconds)*time.Second)
}

func (ctrl *SessionController) usecaseError(w http.ResponseWriter, method, requestID string, err error) {
	ctrl.Log.Error("SessionController."+method+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}
