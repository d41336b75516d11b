package models

import (
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"
)

type ProfileType string

const (
	ProfileTypePatient      ProfileType = constvars.ResourcePatient
	ProfileTypePractitioner ProfileType = constvars.ResourcePractitioner
)

// Profile is a resolved server identity, either a patient or a practitioner.
type Profile struct {
	Type         ProfileType            `json:"type"`
	ID           string                 `json:"id"`
	Name         string                 `json:"name,omitempty"`
	Patient      *fhir_dto.Patient      `json:"-"`
	Practitioner *fhir_dto.Practitioner `json:"-"`
}

func (p *Profile) Reference() string {
	return string(p.Type) + "/" + p.ID
}
