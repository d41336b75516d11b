package models

import (
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"
	"smartmarkers-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// subjectResourceTypes are the resource types that carry a subject reference.
var subjectResourceTypes = map[string]bool{
	constvars.ResourceObservation:           true,
	constvars.ResourceQuestionnaireResponse: true,
	constvars.ResourceCondition:             true,
	constvars.ResourceMedicationRequest:     true,
	constvars.ResourceProcedure:             true,
	constvars.ResourceDiagnosticReport:      true,
}

// patientReferenceResourceTypes reference the patient through "patient" instead.
var patientReferenceResourceTypes = map[string]bool{
	constvars.ResourceAllergyIntolerance: true,
	constvars.ResourceImmunization:       true,
}

// BuildTransaction merges the entries of the given bundles into a single
// transaction bundle. Every entry gets a fresh urn:uuid fullUrl and a POST
// request; server-assigned id and meta are dropped and the patient is
// stamped as subject where a resource does not name one.
func BuildTransaction(bundles []*SubmissionBundle, patientID string) (*fhir_dto.FHIRBundle, error) {
	transaction := &fhir_dto.FHIRBundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeTransaction,
	}

	for _, submission := range bundles {
		if submission == nil || submission.Bundle == nil {
			continue
		}
		for _, entry := range submission.Bundle.Entry {
			resource, resourceType, err := prepareTransactionResource(entry.Resource, patientID)
			if err != nil {
				return nil, err
			}
			transaction.Entry = append(transaction.Entry, fhir_dto.Entry{
				FullUrl:  utils.GenerateUrnUUID(),
				Resource: resource,
				Request: &fhir_dto.EntryRequest{
					Method: constvars.MethodPost,
					Url:    resourceType,
				},
			})
		}
	}
	return transaction, nil
}

func prepareTransactionResource(raw []byte, patientID string) ([]byte, string, error) {
	var resource map[string]interface{}
	if err := json.Unmarshal(raw, &resource); err != nil {
		return nil, "", err
	}

	resourceType := gjson.GetBytes(raw, "resourceType").String()
	delete(resource, "id")
	delete(resource, "meta")

	if patientID != "" {
		reference := map[string]interface{}{"reference": constvars.ResourcePatient + "/" + patientID}
		if subjectResourceTypes[resourceType] && !gjson.GetBytes(raw, "subject.reference").Exists() {
			resource["subject"] = reference
		}
		if patientReferenceResourceTypes[resourceType] && !gjson.GetBytes(raw, "patient.reference").Exists() {
			resource["patient"] = reference
		}
	}

	prepared, err := json.Marshal(resource)
	if err != nil {
		return nil, "", err
	}
	return prepared, resourceType, nil
}
