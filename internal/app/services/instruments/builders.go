package instruments

import (
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
)

// newResultBundle packs resources into a collection bundle. It returns nil
// when there is nothing to pack.
func newResultBundle(resources ...interface{}) (*fhir_dto.FHIRBundle, error) {
	if len(resources) == 0 {
		return nil, nil
	}
	entries := make([]fhir_dto.Entry, 0, len(resources))
	for _, resource := range resources {
		raw, err := json.Marshal(resource)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fhir_dto.Entry{Resource: raw})
	}
	return collectionBundle(entries), nil
}

func collectionBundle(entries []fhir_dto.Entry) *fhir_dto.FHIRBundle {
	return &fhir_dto.FHIRBundle{
		ResourceType: constvars.ResourceBundle,
		Type:         constvars.FhirBundleTypeCollection,
		Entry:        entries,
	}
}

func subjectOf(measure *models.Measure) *fhir_dto.Reference {
	if measure == nil || measure.Patient == nil || measure.Patient.ID == "" {
		return nil
	}
	return &fhir_dto.Reference{
		Reference: constvars.ResourcePatient + "/" + measure.Patient.ID,
		Display:   fhir_dto.FullName(measure.Patient.Name),
	}
}

func codeableConcept(system, code, display string) fhir_dto.CodeableConcept {
	return fhir_dto.CodeableConcept{
		Coding: []fhir_dto.Coding{{System: system, Code: code, Display: display}},
		Text:   display,
	}
}

func observationCategory(category string) []fhir_dto.CodeableConcept {
	return []fhir_dto.CodeableConcept{codeableConcept(constvars.CodingSystemObservationCat, category, category)}
}

func metadataCode(metadata models.InstrumentMetadata) *fhir_dto.CodeableConcept {
	if metadata.Code == nil {
		return nil
	}
	concept := codeableConcept(metadata.Code.System, metadata.Code.Code, metadata.Code.Display)
	return &concept
}
