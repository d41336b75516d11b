package devicesource

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type deviceReadingClient struct {
	token      string
	httpClient *http.Client
	Log        *zap.Logger
}

// NewDeviceReadingClient fetches readings a connected device vendor
// exposes over HTTP. token is sent as a bearer token when set.
func NewDeviceReadingClient(token string, httpClient *http.Client, logger *zap.Logger) contracts.DeviceReadingClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &deviceReadingClient{
		token:      token,
		httpClient: httpClient,
		Log:        logger,
	}
}

// FetchBloodPressureReadings returns the readings newest first.
func (c *deviceReadingClient) FetchBloodPressureReadings(ctx context.Context, sourceURL string) ([]models.BloodPressureReading, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("deviceReadingClient.FetchBloodPressureReadings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingURLKey, sourceURL),
	)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, exceptions.ErrDeviceSourceRequest(fmt.Errorf("unexpected status %d", resp.StatusCode), sourceURL)
	}

	var readings []models.BloodPressureReading
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		return nil, exceptions.ErrDeviceSourceRequest(err, sourceURL)
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].MeasuredAt.After(readings[j].MeasuredAt)
	})

	c.Log.Info("deviceReadingClient.FetchBloodPressureReadings succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(readings)),
	)
	return readings, nil
}
