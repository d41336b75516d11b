package bundle

import (
	"bytes"
	"context"
	"net/http"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/services/fhir_spark"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type bundleFhirClient struct {
	baseFhirURL string
	token       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *zap.Logger
}

// NewBundleFhirClient posts transactions to the FHIR base endpoint, at most
// requestsPerSecond of them.
func NewBundleFhirClient(baseFhirURL, token string, requestsPerSecond float64, httpClient *http.Client, logger *zap.Logger) contracts.BundleFhirClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &bundleFhirClient{
		baseFhirURL: baseFhirURL,
		token:       token,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(limit, 1),
		log:         logger,
	}
}

func (c *bundleFhirClient) PostTransactionBundle(ctx context.Context, bundle *fhir_dto.FHIRBundle) (*fhir_dto.FHIRBundle, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("bundleFhirClient.PostTransactionBundle called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(bundle.Entry)),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, exceptions.ErrServerDeadlineExceeded(err)
	}

	requestJSON, err := json.Marshal(bundle)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := fhir_spark.NewRequest(ctx, constvars.MethodPost, c.baseFhirURL, bytes.NewBuffer(requestJSON), c.token)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderPrefer, "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK && resp.StatusCode != constvars.StatusCreated {
		fhirErr := fhir_spark.OutcomeError(resp)
		c.log.Error("bundleFhirClient.PostTransactionBundle FHIR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
			zap.Error(fhirErr),
		)
		return nil, exceptions.ErrCreateFHIRResource(fhirErr, constvars.ResourceBundle)
	}

	var result fhir_dto.FHIRBundle
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceBundle)
	}

	c.log.Info("bundleFhirClient.PostTransactionBundle succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(result.Entry)),
	)
	return &result, nil
}
