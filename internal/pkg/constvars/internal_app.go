package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "SMRTMKR_SVC_"
)

const (
	ResourceSessions = "sessions"
)

const (
	RedisKeySessionSummaryFormat  = "session:summary:%s"
	RedisKeySubmissionLockFormat  = "session:submission:lock:%s"
	MongoCollectionSubmissionLogs = "submission_bundles"
	RabbitMQSubmissionEventsQueue = "submission_events"
	MinioSubmissionObjectFormat   = "sessions/%s/%s/%s.json"
)

const (
	DEFAULT_FHIR_SERVER_NAME          = "SMART on FHIR server"
	DEFAULT_SESSION_TTL_IN_MINUTES    = 60
	DEFAULT_SESSION_JANITOR_CRON_SPEC = "@every 5m"
	DEFAULT_SUBMISSION_LOCK_TTL       = 60
)
