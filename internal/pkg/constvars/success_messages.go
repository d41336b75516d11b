package constvars

const (
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	CreateSessionSuccessMessage          = "session prepared successfully"
	CreateSessionDegradedMessage         = "session prepared with missing tasks"
	GetSessionSuccessMessage             = "get session successfully"
	DeleteSessionSuccessMessage          = "session ended successfully"
	CompleteTaskSuccessMessage           = "task result recorded successfully"
	GetSubmissionStepSuccessMessage      = "get submission step successfully"
	AnswerSubmissionStepSuccessMessage   = "submission step answered successfully"
	NavigateSubmissionStepSuccessMessage = "submission step navigated successfully"
	NavigateSessionSuccessMessage        = "session navigated successfully"
	ListSubmissionsSuccessMessage        = "list submissions successfully"
)
