package instruments

import (
	"context"
	"fmt"
	"time"

	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
)

const (
	activityIntroStepID  = "introduction"
	activitySampleStepID = "activity-samples"
	activityDateLayout   = "2006-01-02"
	defaultActivityDays  = 7
)

// deviceActivityInstrument collects daily step counts. The query itself
// runs against the health store on the patient's device; the task tells
// the device which window to read and the result carries the samples back.
type deviceActivityInstrument struct {
	metadata   models.InstrumentMetadata
	periodDays int
	now        func() time.Time
}

func (d *deviceActivityInstrument) Metadata() models.InstrumentMetadata {
	return d.metadata
}

func (d *deviceActivityInstrument) window() (time.Time, time.Time) {
	end := d.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -d.periodDays)
	return start, end
}

func (d *deviceActivityInstrument) PrepareTask(ctx context.Context, measure *models.Measure) (*models.Task, error) {
	start, end := d.window()
	return &models.Task{
		ID:    d.metadata.Identifier,
		Title: d.metadata.Title,
		Steps: []models.Step{
			{
				ID:   activityIntroStepID,
				Kind: models.StepKindInstruction,
				Text: fmt.Sprintf("Your daily step counts for the last %d days will be read from your device.", d.periodDays),
			},
			{
				ID:     activitySampleStepID,
				Kind:   models.StepKindDeviceFetch,
				Title:  d.metadata.Title,
				Text:   start.Format(activityDateLayout) + "/" + end.Format(activityDateLayout),
				Format: models.AnswerFormatPayload,
			},
		},
	}, nil
}

func (d *deviceActivityInstrument) GenerateResultBundle(ctx context.Context, measure *models.Measure, result *models.TaskResult) (*fhir_dto.FHIRBundle, error) {
	stepResult, ok := result.Result(activitySampleStepID)
	if !ok || len(stepResult.Payload) == 0 {
		return nil, nil
	}

	var samples []models.ActivitySample
	if err := json.Unmarshal(stepResult.Payload, &samples); err != nil {
		return nil, err
	}

	var observations []interface{}
	for _, sample := range samples {
		day, err := time.Parse(activityDateLayout, sample.Date)
		if err != nil {
			return nil, fmt.Errorf("activity sample date %q: %w", sample.Date, err)
		}
		if sample.Steps <= 0 {
			continue
		}
		observations = append(observations, &fhir_dto.Observation{
			ResourceType: constvars.ResourceObservation,
			Status:       constvars.FhirObservationStatusFinal,
			Category:     observationCategory(constvars.ObservationCatActivity),
			Code:         codeableConcept(constvars.CodingSystemLOINC, constvars.LoincStepCount24Hours, "Number of steps in 24 hour Measured"),
			Subject:      subjectOf(measure),
			EffectivePeriod: &fhir_dto.Period{
				Start: day.Format(time.RFC3339),
				End:   day.Add(24*time.Hour - time.Second).Format(time.RFC3339),
			},
			ValueQuantity: &fhir_dto.Quantity{
				Value:  sample.Steps,
				Unit:   "steps/day",
				System: constvars.CodingSystemUCUM,
				Code:   constvars.UcumStepsPerDay,
			},
		})
	}
	return newResultBundle(observations...)
}
