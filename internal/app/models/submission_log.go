package models

import "time"

// SubmissionLog is the audit record kept for every submission bundle.
type SubmissionLog struct {
	ID            string    `json:"id" bson:"_id"`
	SessionID     string    `json:"session_id" bson:"session_id"`
	MeasureID     string    `json:"measure_id" bson:"measure_id"`
	TaskRunID     string    `json:"task_run_id" bson:"task_run_id"`
	PatientID     string    `json:"patient_id,omitempty" bson:"patient_id,omitempty"`
	Server        string    `json:"server,omitempty" bson:"server,omitempty"`
	Status        string    `json:"status" bson:"status"`
	FailureReason string    `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	ResourceCount int       `json:"resource_count" bson:"resource_count"`
	Summary       string    `json:"summary,omitempty" bson:"summary,omitempty"`
	ArchiveObject string    `json:"archive_object,omitempty" bson:"archive_object,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// SubmissionEvent is published once a bundle reaches a final submission state.
type SubmissionEvent struct {
	SessionID     string    `json:"session_id"`
	MeasureID     string    `json:"measure_id"`
	TaskRunID     string    `json:"task_run_id"`
	PatientID     string    `json:"patient_id,omitempty"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
