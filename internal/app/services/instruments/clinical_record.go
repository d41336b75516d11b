package instruments

import (
	"context"
	"errors"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"golang.org/x/sync/errgroup"
)

const (
	clinicalAuthorizeStepID = "authorize"
	clinicalSelectStepID    = "resource-types"
)

// clinicalRecordInstrument copies the patient's existing clinical records
// of the configured resource types.
type clinicalRecordInstrument struct {
	metadata models.InstrumentMetadata
	client   contracts.ResourceSearchFhirClient
}

func (c *clinicalRecordInstrument) Metadata() models.InstrumentMetadata {
	return c.metadata
}

func (c *clinicalRecordInstrument) PrepareTask(ctx context.Context, measure *models.Measure) (*models.Task, error) {
	if measure == nil || measure.Patient == nil || measure.Patient.ID == "" {
		return nil, errors.New("clinical record import needs a patient")
	}

	selectStep := models.Step{
		ID:     clinicalSelectStepID,
		Kind:   models.StepKindQuestion,
		Title:  "Choose the records to share",
		Format: models.AnswerFormatMultiChoice,
	}
	for _, resourceType := range c.metadata.ResourceTypes {
		selectStep.Choices = append(selectStep.Choices, models.Choice{Value: resourceType, Label: resourceType})
	}

	return &models.Task{
		ID:    c.metadata.Identifier,
		Title: c.metadata.Title,
		Steps: []models.Step{
			{
				ID:   clinicalAuthorizeStepID,
				Kind: models.StepKindInstruction,
				Text: "Your health records will be read from your clinical record and shared with the study.",
			},
			selectStep,
		},
	}, nil
}

func (c *clinicalRecordInstrument) GenerateResultBundle(ctx context.Context, measure *models.Measure, result *models.TaskResult) (*fhir_dto.FHIRBundle, error) {
	stepResult, ok := result.Result(clinicalSelectStepID)
	if !ok || len(stepResult.Choices) == 0 || measure.Patient == nil {
		return nil, nil
	}

	allowed := make(map[string]bool, len(c.metadata.ResourceTypes))
	for _, resourceType := range c.metadata.ResourceTypes {
		allowed[resourceType] = true
	}
	var resourceTypes []string
	for _, resourceType := range stepResult.Choices {
		if allowed[resourceType] {
			resourceTypes = append(resourceTypes, resourceType)
		}
	}

	found := make([][]fhir_dto.Entry, len(resourceTypes))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, resourceType := range resourceTypes {
		group.Go(func() error {
			resources, err := c.client.SearchByPatient(groupCtx, resourceType, measure.Patient.ID)
			if err != nil {
				return err
			}
			for _, resource := range resources {
				found[i] = append(found[i], fhir_dto.Entry{Resource: []byte(resource)})
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var entries []fhir_dto.Entry
	for _, batch := range found {
		entries = append(entries, batch...)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return collectionBundle(entries), nil
}
