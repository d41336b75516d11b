package instruments

import (
	"context"
	"fmt"
	"time"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"
)

const webReadingsStepID = "readings"

// webInstrument imports blood pressure readings from a cuff vendor's web API.
type webInstrument struct {
	metadata  models.InstrumentMetadata
	sourceURL string
	client    contracts.DeviceReadingClient
}

func (w *webInstrument) Metadata() models.InstrumentMetadata {
	return w.metadata
}

func (w *webInstrument) PrepareTask(ctx context.Context, measure *models.Measure) (*models.Task, error) {
	readings, err := w.client.FetchBloodPressureReadings(ctx, w.sourceURL)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("no readings available from %s", w.sourceURL)
	}

	step := models.Step{
		ID:     webReadingsStepID,
		Kind:   models.StepKindQuestion,
		Title:  "Select the readings to include",
		Format: models.AnswerFormatMultiChoice,
	}
	for _, reading := range readings {
		step.Choices = append(step.Choices, models.Choice{
			Value:  reading.ID,
			Label:  fmt.Sprintf("%.0f/%.0f mmHg", reading.Systolic, reading.Diastolic),
			Detail: reading.MeasuredAt.UTC().Format(time.RFC1123),
		})
	}
	return &models.Task{ID: w.metadata.Identifier, Title: w.metadata.Title, Steps: []models.Step{step}}, nil
}

func (w *webInstrument) GenerateResultBundle(ctx context.Context, measure *models.Measure, result *models.TaskResult) (*fhir_dto.FHIRBundle, error) {
	stepResult, ok := result.Result(webReadingsStepID)
	if !ok || len(stepResult.Choices) == 0 {
		return nil, nil
	}
	selected := make(map[string]bool, len(stepResult.Choices))
	for _, id := range stepResult.Choices {
		selected[id] = true
	}

	readings, err := w.client.FetchBloodPressureReadings(ctx, w.sourceURL)
	if err != nil {
		return nil, err
	}

	var observations []interface{}
	for _, reading := range readings {
		if !selected[reading.ID] {
			continue
		}
		observations = append(observations, bloodPressureObservation(reading, subjectOf(measure)))
	}
	return newResultBundle(observations...)
}

func bloodPressureObservation(reading models.BloodPressureReading, subject *fhir_dto.Reference) *fhir_dto.Observation {
	pressure := func(value float64) *fhir_dto.Quantity {
		return &fhir_dto.Quantity{
			Value:  value,
			Unit:   "mmHg",
			System: constvars.CodingSystemUCUM,
			Code:   constvars.UcumMillimeterMercury,
		}
	}
	observation := &fhir_dto.Observation{
		ResourceType:      constvars.ResourceObservation,
		Status:            constvars.FhirObservationStatusFinal,
		Category:          observationCategory(constvars.ObservationCatVitalSign),
		Code:              codeableConcept(constvars.CodingSystemLOINC, constvars.LoincBloodPressurePanel, "Blood pressure panel with all children optional"),
		Subject:           subject,
		EffectiveDateTime: reading.MeasuredAt.UTC().Format(time.RFC3339),
		Identifier:        []fhir_dto.Identifier{{System: "urn:device-reading", Value: reading.ID}},
		Component: []fhir_dto.ObservationComponent{
			{
				Code:          codeableConcept(constvars.CodingSystemLOINC, constvars.LoincSystolicPressure, "Systolic blood pressure"),
				ValueQuantity: pressure(reading.Systolic),
			},
			{
				Code:          codeableConcept(constvars.CodingSystemLOINC, constvars.LoincDiastolicPressure, "Diastolic blood pressure"),
				ValueQuantity: pressure(reading.Diastolic),
			},
		},
	}
	if reading.DeviceModel != "" {
		observation.Device = &fhir_dto.Reference{Display: reading.DeviceModel}
	}
	return observation
}
