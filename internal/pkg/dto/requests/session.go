package requests

import (
	"time"

	"github.com/goccy/go-json"
)

type CreateSession struct {
	PatientReference string              `json:"patient_reference" validate:"omitempty,fhir_reference"`
	SubmitResults    bool                `json:"submit_results"`
	ServerName       string              `json:"server_name" validate:"omitempty,max=120"`
	VerifyUser       bool                `json:"verify_user"`
	Passcode         string              `json:"passcode" validate:"required_if=VerifyUser true,omitempty,min=4,max=64"`
	Instruments      []InstrumentRequest `json:"instruments" validate:"required,min=1,dive"`
}

type InstrumentRequest struct {
	Kind            string         `json:"kind" validate:"required,instrument_kind"`
	Identifier      string         `json:"identifier" validate:"required,max=128"`
	Title           string         `json:"title" validate:"required,max=256"`
	Code            *CodingRequest `json:"code" validate:"omitempty"`
	QuestionnaireID string         `json:"questionnaire_id" validate:"required_if=Kind questionnaire"`
	FormOID         string         `json:"form_oid" validate:"required_if=Kind adaptive_questionnaire"`
	SourceURL       string         `json:"source_url" validate:"required_if=Kind web_instrument,omitempty,url"`
	PeriodDays      int            `json:"period_days" validate:"omitempty,min=1,max=90"`
	ResourceTypes   []string       `json:"resource_types" validate:"required_if=Kind clinical_record_import,dive,required"`
}

type CodingRequest struct {
	System  string `json:"system" validate:"required"`
	Code    string `json:"code" validate:"required"`
	Display string `json:"display"`
}

type CompleteTask struct {
	StartDate   time.Time           `json:"start_date"`
	EndDate     time.Time           `json:"end_date"`
	StepResults []StepResultRequest `json:"step_results" validate:"dive"`
}

type StepResultRequest struct {
	StepID  string          `json:"step_id" validate:"required"`
	Choices []string        `json:"choices"`
	Text    *string         `json:"text"`
	Number  *float64        `json:"number"`
	Boolean *bool           `json:"boolean"`
	Payload json.RawMessage `json:"payload"`
}

type AnswerSubmissionStep struct {
	StepID  string   `json:"step_id" validate:"required"`
	Choices []string `json:"choices"`
	Boolean *bool    `json:"boolean"`
}

type NavigateBack struct {
	Passcode string `json:"passcode"`
	Token    string `json:"token"`
}
