package profiles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/app/services/fhir_spark"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type profileFhirClient struct {
	baseFhirURL string
	token       string
	httpClient  *http.Client
	log         *zap.Logger
}

func NewProfileFhirClient(baseFhirURL, token string, httpClient *http.Client, logger *zap.Logger) contracts.ProfileFhirClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &profileFhirClient{
		baseFhirURL: strings.TrimSuffix(baseFhirURL, "/"),
		token:       token,
		httpClient:  httpClient,
		log:         logger,
	}
}

// FindProfile reads the resource behind reference and accepts it only when
// it is a Patient or a Practitioner.
func (c *profileFhirClient) FindProfile(ctx context.Context, reference string) (*models.Profile, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("profileFhirClient.FindProfile called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceIDKey, reference),
	)

	req, err := fhir_spark.NewRequest(ctx, constvars.MethodGet, fmt.Sprintf("%s/%s", c.baseFhirURL, reference), nil, c.token)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == constvars.StatusNotFound || resp.StatusCode == constvars.StatusGone:
		return nil, exceptions.ErrProfileMissingError(fhir_spark.OutcomeError(resp), reference)
	case resp.StatusCode != constvars.StatusOK:
		return nil, exceptions.ErrGetFHIRResource(fhir_spark.OutcomeError(resp), reference)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, reference)
	}

	resourceType := gjson.GetBytes(body, "resourceType").String()
	switch resourceType {
	case constvars.ResourcePatient:
		patient := new(fhir_dto.Patient)
		if err := json.Unmarshal(body, patient); err != nil {
			return nil, exceptions.ErrDecodeResponse(err, resourceType)
		}
		return &models.Profile{Type: models.ProfileTypePatient, ID: patient.ID, Name: fhir_dto.FullName(patient.Name), Patient: patient}, nil
	case constvars.ResourcePractitioner:
		practitioner := new(fhir_dto.Practitioner)
		if err := json.Unmarshal(body, practitioner); err != nil {
			return nil, exceptions.ErrDecodeResponse(err, resourceType)
		}
		return &models.Profile{Type: models.ProfileTypePractitioner, ID: practitioner.ID, Name: fhir_dto.FullName(practitioner.Name), Practitioner: practitioner}, nil
	}

	c.log.Warn("profileFhirClient.FindProfile unrecognized profile type",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
	)
	return nil, exceptions.ErrUserNotPractitionerOrPatientError(resourceType)
}
