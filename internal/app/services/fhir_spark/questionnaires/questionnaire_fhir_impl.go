package questionnaires

import (
	"context"
	"fmt"
	"net/http"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/services/fhir_spark"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type questionnaireFhirClient struct {
	BaseUrl    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewQuestionnaireFhirClient(baseFhirURL, token string, httpClient *http.Client, logger *zap.Logger) contracts.QuestionnaireFhirClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &questionnaireFhirClient{
		BaseUrl:    baseFhirURL + "/" + constvars.ResourceQuestionnaire,
		token:      token,
		httpClient: httpClient,
		log:        logger,
	}
}

func (c *questionnaireFhirClient) FindQuestionnaireByID(ctx context.Context, questionnaireID string) (*fhir_dto.Questionnaire, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("questionnaireFhirClient.FindQuestionnaireByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceIDKey, questionnaireID),
	)

	req, err := fhir_spark.NewRequest(ctx, constvars.MethodGet, fmt.Sprintf("%s/%s", c.BaseUrl, questionnaireID), nil, c.token)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, exceptions.ErrGetFHIRResource(fhir_spark.OutcomeError(resp), constvars.ResourceQuestionnaire)
	}

	questionnaireFhir := new(fhir_dto.Questionnaire)
	if err := json.NewDecoder(resp.Body).Decode(questionnaireFhir); err != nil {
		return nil, exceptions.ErrDecodeResponse(err, constvars.ResourceQuestionnaire)
	}
	return questionnaireFhir, nil
}
