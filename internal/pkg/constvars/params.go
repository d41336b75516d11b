package constvars

const (
	URLParamSessionID = "session_id"
	URLParamTaskID    = "task_id"
)
