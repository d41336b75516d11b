package responses

import "time"

type Session struct {
	SessionID  string               `json:"session_id"`
	PatientID  string               `json:"patient_id,omitempty"`
	Server     string               `json:"server,omitempty"`
	VerifyUser bool                 `json:"verify_user"`
	CreatedAt  time.Time            `json:"created_at"`
	Position   int                  `json:"position"`
	Dismissed  bool                 `json:"dismissed"`
	Items      []SessionItem        `json:"items,omitempty"`
	Failures   []PreparationFailure `json:"failures,omitempty"`
	Warning    string               `json:"warning,omitempty"`

	// VerificationToken is returned once, on creation, and never cached.
	VerificationToken string `json:"verification_token,omitempty"`
}

type SessionItem struct {
	ID            string      `json:"id"`
	Kind          string      `json:"kind"`
	Title         string      `json:"title"`
	MeasureStatus string      `json:"measure_status,omitempty"`
	Task          interface{} `json:"task,omitempty"`
}

type PreparationFailure struct {
	MeasureID string `json:"measure_id"`
	Reason    string `json:"reason"`
}

type TaskCompletion struct {
	SessionID     string `json:"session_id"`
	TaskID        string `json:"task_id"`
	TaskRunID     string `json:"task_run_id,omitempty"`
	ResourceCount int    `json:"resource_count"`
	Summary       string `json:"summary,omitempty"`
}

type SubmissionStep struct {
	SessionID string      `json:"session_id"`
	Step      interface{} `json:"step"`
	Finished  bool        `json:"finished"`
	Errors    []string    `json:"errors,omitempty"`
}

type Navigation struct {
	SessionID string       `json:"session_id"`
	Outcome   string       `json:"outcome"`
	Position  int          `json:"position"`
	Current   *SessionItem `json:"current,omitempty"`
	Dismissed bool         `json:"dismissed"`
}

type SubmissionLog struct {
	MeasureID     string    `json:"measure_id"`
	TaskRunID     string    `json:"task_run_id"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	ResourceCount int       `json:"resource_count"`
	Summary       string    `json:"summary,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
