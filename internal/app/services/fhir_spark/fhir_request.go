package fhir_spark

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
)

// NewRequest builds a FHIR REST request with the JSON content headers and,
// when a token is configured, bearer authorization.
func NewRequest(ctx context.Context, method, url string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationFHIRJSON)
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON)
	if token != "" {
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)
	}
	if requestID, ok := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string); ok && requestID != "" {
		req.Header.Set(constvars.HeaderXRequestID, requestID)
	}
	return req, nil
}

// OutcomeError turns a failed FHIR response into an error, preferring the
// diagnostics of the first OperationOutcome issue.
func OutcomeError(resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var outcome fhir_dto.OperationOutcome
	if err := json.Unmarshal(bodyBytes, &outcome); err == nil && len(outcome.Issue) > 0 {
		return fmt.Errorf("%s", outcome.Issue[0].Diagnostics)
	}
	return fmt.Errorf("unexpected status %d from FHIR server", resp.StatusCode)
}
