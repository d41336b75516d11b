package models

import (
	"context"
	"smartmarkers-service/internal/pkg/fhir_dto"
)

type InstrumentKind string

const (
	InstrumentKindQuestionnaire         InstrumentKind = "questionnaire"
	InstrumentKindAdaptiveQuestionnaire InstrumentKind = "adaptive_questionnaire"
	InstrumentKindDeviceActivity        InstrumentKind = "device_activity"
	InstrumentKindWebInstrument         InstrumentKind = "web_instrument"
	InstrumentKindClinicalRecordImport  InstrumentKind = "clinical_record_import"
)

type Coding struct {
	System  string `json:"system" bson:"system"`
	Code    string `json:"code" bson:"code"`
	Display string `json:"display,omitempty" bson:"display,omitempty"`
}

// InstrumentMetadata is immutable once the instrument is built.
type InstrumentMetadata struct {
	Kind          InstrumentKind `json:"kind"`
	Identifier    string         `json:"identifier"`
	Title         string         `json:"title"`
	Code          *Coding        `json:"code,omitempty"`
	Category      string         `json:"category,omitempty"`
	ResourceTypes []string       `json:"resource_types,omitempty"`
}

// Instrument produces a presentable task for a measure and turns the
// completed task result into a FHIR bundle. GenerateResultBundle returns
// a nil bundle and nil error when the result carries nothing to submit.
type Instrument interface {
	Metadata() InstrumentMetadata
	PrepareTask(ctx context.Context, measure *Measure) (*Task, error)
	GenerateResultBundle(ctx context.Context, measure *Measure, result *TaskResult) (*fhir_dto.FHIRBundle, error)
}
