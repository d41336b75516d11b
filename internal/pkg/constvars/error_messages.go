package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":        "is required",
	"min":             "must be at least %s",
	"max":             "maximum at %s",
	"oneof":           "must be one of [%s]",
	"gt":              "must be greater than %s",
	"gte":             "must be greater than or equal to %s",
	"url":             "must be a valid URL",
	"uuid":            "must be a valid UUID",
	"dive":            "contains an invalid element",
	"required_if":     "is required when %s is %s",
	"fhir_reference":  "must be a FHIR reference such as Patient/123",
	"instrument_kind": "must be one of [questionnaire, adaptive_questionnaire, device_activity, web_instrument, clinical_record_import]",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":         true,
	"max":         true,
	"gt":          true,
	"gte":         true,
	"oneof":       true,
	"required_if": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientSessionNotFound               = "your session ended, please start a new one"
	ErrClientSessionCannotStart            = "none of the requested measures could be prepared"
	ErrClientVerificationFailed            = "we could not verify your identity"
	ErrClientSubmissionInProgress          = "a submission for this session is already running"
)

// Error messages for developers
const (
	ErrDevInvalidInput             = "invalid input"
	ErrDevCannotParseJSON          = "cannot parse JSON into struct or other data types"
	ErrDevCannotMarshalJSON        = "cannot convert struct or other data types to JSON"
	ErrDevValidationFailed         = "validation failed"
	ErrDevURLParamIDValidation     = "invalid URL param %s"
	ErrDevCreateHTTPRequest        = "failed to create HTTP request"
	ErrDevSendHTTPRequest          = "failed to send HTTP request"
	ErrDevServerDeadlineExceeded   = "server deadline exceeded"
	ErrDevServerProcess            = "server failed to process the request"
	ErrDevInvalidAPIKey            = "invalid or missing API key"
	ErrDevRequestBodyTooLarge      = "request body exceeds %d MB"
	ErrDevPanicRecovered           = "recovered from panic"
	ErrDevDBFailedToFindDocument   = "failed to find document"
	ErrDevDBFailedToUpsertDocument = "failed to upsert document"

	// Session orchestration
	ErrDevSessionMissingTask             = "session has no prepared task"
	ErrDevSessionCreatedWithMissingTasks = "session created with missing tasks"
	ErrDevSessionNotFound                = "session %s not found"
	ErrDevSessionDismissed               = "session container already dismissed"
	ErrDevTaskNotFound                   = "task %s not found in session"
	ErrDevStepNotAnswerable              = "step %s does not accept an answer"
	ErrDevDuplicateStepIdentifier        = "duplicate step identifier %s in task %s"
	ErrDevMalformedInstrument            = "malformed instrument: %s"
	ErrDevUnsupportedInstrumentKind      = "unsupported instrument kind %s"
	ErrDevPrepareTask                    = "failed to prepare task for measure %s"
	ErrDevGenerateResultBundle           = "failed to generate result bundle for measure %s"

	// Submission
	ErrDevConsentNotGiven          = "consent to submit was not given"
	ErrDevSubmissionFailed         = "submission of %s failed"
	ErrDevSubmissionLocked         = "submission lock for session %s is held by another request"
	ErrDevNoServerForSubmission    = "no server configured for submission"
	ErrDevNoPatientForSubmission   = "no patient configured for submission"
	ErrDevVerificationFailed       = "identity verification challenge failed"
	ErrDevVerificationTokenInvalid = "verification token invalid: %s"

	// Profile resolution
	ErrDevUserNotPractitionerOrPatient = "proserver user is neither practitioner nor patient: %s"
	ErrDevProfileMissing               = "profile %s missing on server"

	// Spark messages
	ErrDevSparkCreateFHIRResource         = "failed to create FHIR %s on the FHIR server"
	ErrDevSparkGetFHIRResource            = "failed to get FHIR %s from the FHIR server"
	ErrDevSparkSearchFHIRResource         = "failed to search FHIR %s on the FHIR server"
	ErrDevSparkDecodeFHIRResourceResponse = "failed to decode FHIR %s response"

	// Adaptive engine and device web sources
	ErrDevAdaptiveEngineRequest = "adaptive engine request for form %s failed"
	ErrDevDeviceSourceRequest   = "device source %s request failed"

	// Redis
	ErrDevRedisGetNoData = "no data found in redis for key %s"
	ErrDevRedisGetData   = "failed to get data from redis"
	ErrDevRedisSetData   = "failed to set data to redis"
	ErrDevRedisDelete    = "failed to delete data from redis"
	ErrDevRedisUnlock    = "failed to release redis lock"

	// Minio
	ErrDevMinioFailedToCreateObject = "failed to create object in bucket %s"

	// RabbitMQ
	ErrDevRabbitMQPublishMessage = "failed to publish message to queue %s"
)
