package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/services/fhir_spark"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	searchPageSize = 50
	maxSearchPages = 10
)

type searchFhirClient struct {
	baseFhirURL string
	token       string
	httpClient  *http.Client
	log         *zap.Logger
}

func NewSearchFhirClient(baseFhirURL, token string, httpClient *http.Client, logger *zap.Logger) contracts.ResourceSearchFhirClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &searchFhirClient{
		baseFhirURL: strings.TrimSuffix(baseFhirURL, "/"),
		token:       token,
		httpClient:  httpClient,
		log:         logger,
	}
}

// SearchByPatient pages through a patient-scoped search set and returns
// the matched resources as raw JSON.
func (c *searchFhirClient) SearchByPatient(ctx context.Context, resourceType, patientID string) ([]json.RawMessage, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("searchFhirClient.SearchByPatient called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.String(constvars.LoggingPatientIDKey, patientID),
	)

	query := url.Values{}
	query.Set("patient", patientID)
	query.Set("_count", fmt.Sprint(searchPageSize))
	next := fmt.Sprintf("%s/%s?%s", c.baseFhirURL, resourceType, query.Encode())

	var resources []json.RawMessage
	for page := 0; next != "" && page < maxSearchPages; page++ {
		body, err := c.fetchPage(ctx, next, resourceType)
		if err != nil {
			return nil, err
		}
		gjson.GetBytes(body, "entry.#.resource").ForEach(func(_, resource gjson.Result) bool {
			if resource.Get("resourceType").String() == resourceType {
				resources = append(resources, json.RawMessage(resource.Raw))
			}
			return true
		})
		next = gjson.GetBytes(body, `link.#(relation=="next").url`).String()
	}

	c.log.Info("searchFhirClient.SearchByPatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, resourceType),
		zap.Int(constvars.LoggingCountKey, len(resources)),
	)
	return resources, nil
}

func (c *searchFhirClient) fetchPage(ctx context.Context, pageURL, resourceType string) ([]byte, error) {
	req, err := fhir_spark.NewRequest(ctx, constvars.MethodGet, pageURL, nil, c.token)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, exceptions.ErrSearchFHIRResource(fhir_spark.OutcomeError(resp), resourceType)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, resourceType)
	}
	return body, nil
}
