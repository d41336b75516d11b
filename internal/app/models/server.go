package models

import (
	"context"
	"net/url"
	"smartmarkers-service/internal/pkg/fhir_dto"
)

type TransactionClient interface {
	PostTransactionBundle(ctx context.Context, bundle *fhir_dto.FHIRBundle) (*fhir_dto.FHIRBundle, error)
}

// Server is the clinical data server results are submitted to.
type Server struct {
	Name    string
	BaseURL string
	Client  TransactionClient
}

func (s *Server) Host() string {
	parsed, err := url.Parse(s.BaseURL)
	if err != nil || parsed.Host == "" {
		return s.BaseURL
	}
	return parsed.Host
}

func (s *Server) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Host()
}
