package models

import (
	"time"

	"smartmarkers-service/internal/pkg/fhir_dto"
)

// Session groups the measures administered to one patient in one sitting.
type Session struct {
	ID         string
	Measures   []*Measure
	Patient    *fhir_dto.Patient
	Server     *Server
	VerifyUser bool
	CreatedAt  time.Time
}

// CanSubmit reports whether the session has somewhere to send results and
// someone to attribute them to.
func (s *Session) CanSubmit() bool {
	return s.Patient != nil && s.Server != nil
}
