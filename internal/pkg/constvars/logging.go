package constvars

const (
	LoggingRequestIDKey    = "request_id"
	LoggingSessionIDKey    = "session_id"
	LoggingMeasureIDKey    = "measure_id"
	LoggingTaskIDKey       = "task_id"
	LoggingTaskRunIDKey    = "task_run_id"
	LoggingStepIDKey       = "step_id"
	LoggingInstrumentKey   = "instrument"
	LoggingResourceTypeKey = "resource_type"
	LoggingResourceIDKey   = "resource_id"
	LoggingPatientIDKey    = "patient_id"
	LoggingServerKey       = "server"
	LoggingRedisKey        = "redis_key"
	LoggingLockValueKey    = "lock_value"
	LoggingQueueKey        = "queue"
	LoggingBucketKey       = "bucket"
	LoggingObjectKey       = "object"
	LoggingCountKey        = "count"
	LoggingFailedCountKey  = "failed_count"
	LoggingStatusKey       = "status"
	LoggingURLKey          = "url"
	LoggingOperationKey    = "operation"

	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingQueryKey      = "query"
	LoggingStatusCodeKey = "status_code"
	LoggingDurationKey   = "duration"
	LoggingSuccessKey    = "success"
)
