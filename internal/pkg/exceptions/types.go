package exceptions

import (
	"fmt"
	"smartmarkers-service/internal/pkg/constvars"
)

var (
	ErrURLParamIDValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevURLParamIDValidation, paramName))
	}
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrServerProcess = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientCannotProcessRequest, constvars.ErrDevServerProcess)
	}
	ErrPanicRecovered = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevPanicRecovered)
	}
	ErrInvalidAPIKey = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotAuthorized, constvars.ErrDevInvalidAPIKey)
	}
	ErrRequestBodyTooLarge = func(err error, limitInMegabyte int) *CustomError {
		return BuildNewCustomError(err, constvars.StatusRequestTooLarge, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevRequestBodyTooLarge, limitInMegabyte))
	}

	// Session orchestration
	ErrSessionMissingTaskError = func(err error) *CustomError {
		return buildKindError(ErrSessionMissingTask, err, constvars.StatusUnprocessableEntity, constvars.ErrClientSessionCannotStart, constvars.ErrDevSessionMissingTask)
	}
	ErrSessionCreatedWithMissingTasksError = func(err error) *CustomError {
		return buildKindError(ErrSessionCreatedWithMissingTasks, err, constvars.StatusOK, constvars.ErrClientCannotProcessRequest, constvars.ErrDevSessionCreatedWithMissingTasks)
	}
	ErrSessionNotFoundError = func(sessionID string) *CustomError {
		return buildKindError(ErrSessionNotFound, nil, constvars.StatusNotFound, constvars.ErrClientSessionNotFound, fmt.Sprintf(constvars.ErrDevSessionNotFound, sessionID))
	}
	ErrSessionDismissedError = func() *CustomError {
		return buildKindError(ErrSessionDismissed, nil, constvars.StatusGone, constvars.ErrClientSessionNotFound, constvars.ErrDevSessionDismissed)
	}
	ErrTaskNotFoundError = func(taskID string) *CustomError {
		return buildKindError(ErrTaskNotFound, nil, constvars.StatusNotFound, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevTaskNotFound, taskID))
	}
	ErrStepNotAnswerableError = func(stepID string) *CustomError {
		return buildKindError(ErrStepNotAnswerable, nil, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevStepNotAnswerable, stepID))
	}
	ErrDuplicateStepIdentifierError = func(stepID, taskID string) *CustomError {
		return buildKindError(ErrDuplicateStepIdentifier, nil, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevDuplicateStepIdentifier, stepID, taskID))
	}
	ErrMalformedInstrumentError = func(reason string) *CustomError {
		return buildKindError(ErrMalformedInstrument, nil, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevMalformedInstrument, reason))
	}
	ErrUnsupportedInstrumentKind = func(kind string) *CustomError {
		return buildKindError(ErrMalformedInstrument, nil, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevUnsupportedInstrumentKind, kind))
	}
	ErrPrepareTask = func(err error, measureID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevPrepareTask, measureID))
	}
	ErrGenerateResultBundle = func(err error, measureID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevGenerateResultBundle, measureID))
	}

	// Submission
	ErrConsentNotGivenError = func() *CustomError {
		return buildKindError(ErrConsentNotGiven, nil, constvars.StatusForbidden, constvars.ErrClientNotAuthorized, constvars.ErrDevConsentNotGiven)
	}
	ErrSubmissionFailedError = func(err error, measureID string) *CustomError {
		return buildKindError(ErrSubmissionFailed, err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevSubmissionFailed, measureID))
	}
	ErrSubmissionLockedError = func(sessionID string) *CustomError {
		return buildKindError(ErrSubmissionLocked, nil, constvars.StatusConflict, constvars.ErrClientSubmissionInProgress, fmt.Sprintf(constvars.ErrDevSubmissionLocked, sessionID))
	}
	ErrNoServerForSubmission = func() *CustomError {
		return buildKindError(ErrSubmissionFailed, nil, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, constvars.ErrDevNoServerForSubmission)
	}
	ErrNoPatientForSubmission = func() *CustomError {
		return buildKindError(ErrSubmissionFailed, nil, constvars.StatusUnprocessableEntity, constvars.ErrClientCannotProcessRequest, constvars.ErrDevNoPatientForSubmission)
	}
	ErrVerificationFailedError = func(err error) *CustomError {
		return buildKindError(ErrVerificationFailed, err, constvars.StatusUnauthorized, constvars.ErrClientVerificationFailed, constvars.ErrDevVerificationFailed)
	}
	ErrVerificationTokenInvalid = func(err error) *CustomError {
		return buildKindError(ErrVerificationFailed, err, constvars.StatusUnauthorized, constvars.ErrClientVerificationFailed, fmt.Sprintf(constvars.ErrDevVerificationTokenInvalid, err))
	}

	// Profile resolution
	ErrUserNotPractitionerOrPatientError = func(resourceType string) *CustomError {
		return buildKindError(ErrUserNotPractitionerOrPatient, nil, constvars.StatusForbidden, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevUserNotPractitionerOrPatient, resourceType))
	}
	ErrProfileMissingError = func(err error, reference string) *CustomError {
		return buildKindError(ErrProfileMissing, err, constvars.StatusNotFound, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevProfileMissing, reference))
	}

	// Mongo DB
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindDocument)
	}
	ErrMongoDBUpsertDocument = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToUpsertDocument)
	}

	// Minio
	ErrMinioCreateObject = func(err error, bucketName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioFailedToCreateObject, bucketName))
	}

	// Redis
	ErrRedisGetNoData = func(err error, redisKey string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisGetNoData, redisKey))
	}
	ErrRedisSet = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData)
	}
	ErrRedisDelete = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDelete)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock)
	}

	// RabbitMQ
	ErrRabbitMQPublishMessage = func(err error, queueName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublishMessage, queueName))
	}

	// HTTP
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCreateHTTPRequest)
	}
	ErrSendHTTPRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, constvars.ErrDevSendHTTPRequest)
	}

	// FHIR
	ErrCreateFHIRResource = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevSparkCreateFHIRResource, resource))
	}
	ErrGetFHIRResource = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevSparkGetFHIRResource, resource))
	}
	ErrSearchFHIRResource = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevSparkSearchFHIRResource, resource))
	}
	ErrDecodeResponse = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevSparkDecodeFHIRResourceResponse, resource))
	}

	// Adaptive engine and device sources
	ErrAdaptiveEngineRequest = func(err error, formOID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevAdaptiveEngineRequest, formOID))
	}
	ErrDeviceSourceRequest = func(err error, source string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevDeviceSourceRequest, source))
	}
)
