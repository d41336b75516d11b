package contracts

import (
	"context"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
)

type BundleFhirClient interface {
	PostTransactionBundle(ctx context.Context, bundle *fhir_dto.FHIRBundle) (*fhir_dto.FHIRBundle, error)
}

type QuestionnaireFhirClient interface {
	FindQuestionnaireByID(ctx context.Context, questionnaireID string) (*fhir_dto.Questionnaire, error)
}

type ResourceSearchFhirClient interface {
	SearchByPatient(ctx context.Context, resourceType, patientID string) ([]json.RawMessage, error)
}

type ProfileFhirClient interface {
	FindProfile(ctx context.Context, reference string) (*models.Profile, error)
}
