package adaptiveengine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type adaptiveEngineClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	Log        *zap.Logger
}

// NewAdaptiveEngineClient talks to a PROMIS style assessment center API
// that serves form definitions under /Forms/<oid>.json.
func NewAdaptiveEngineClient(baseURL, username, password string, httpClient *http.Client, logger *zap.Logger) contracts.AdaptiveEngineClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &adaptiveEngineClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: httpClient,
		Log:        logger,
	}
}

func (c *adaptiveEngineClient) FindForm(ctx context.Context, formOID string) (*models.AdaptiveForm, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("adaptiveEngineClient.FindForm called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingInstrumentKey, formOID),
	)

	endpoint := fmt.Sprintf("%s/Forms/%s.json", c.baseURL, url.PathEscape(formOID))
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, endpoint, nil)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, exceptions.ErrAdaptiveEngineRequest(fmt.Errorf("unexpected status %d", resp.StatusCode), formOID)
	}

	form := new(models.AdaptiveForm)
	if err := json.NewDecoder(resp.Body).Decode(form); err != nil {
		return nil, exceptions.ErrAdaptiveEngineRequest(err, formOID)
	}
	if form.OID == "" {
		form.OID = formOID
	}

	c.Log.Info("adaptiveEngineClient.FindForm succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(form.Items)),
	)
	return form, nil
}
