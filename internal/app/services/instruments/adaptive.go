package instruments

import (
	"context"
	"fmt"
	"math"
	"time"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
)

const (
	adaptiveIntroStepID = "introduction"
	adaptiveStepID      = "adaptive-session"
)

// adaptiveOutcome is what the device reports once the adaptive engine has
// stopped asking questions.
type adaptiveOutcome struct {
	Theta     *float64           `json:"theta"`
	StdError  float64            `json:"std_error"`
	Responses []adaptiveResponse `json:"responses"`
}

type adaptiveResponse struct {
	ItemID   string `json:"item_id"`
	Question string `json:"question"`
	Value    string `json:"value"`
	Answer   string `json:"answer"`
}

type adaptiveInstrument struct {
	metadata models.InstrumentMetadata
	formOID  string
	engine   contracts.AdaptiveEngineClient
}

func (a *adaptiveInstrument) Metadata() models.InstrumentMetadata {
	return a.metadata
}

func (a *adaptiveInstrument) PrepareTask(ctx context.Context, measure *models.Measure) (*models.Task, error) {
	form, err := a.engine.FindForm(ctx, a.formOID)
	if err != nil {
		return nil, err
	}
	if len(form.Items) == 0 {
		return nil, fmt.Errorf("adaptive form %s has no items", a.formOID)
	}

	title := a.metadata.Title
	if form.Name != "" {
		title = form.Name
	}
	return &models.Task{
		ID:    a.metadata.Identifier,
		Title: title,
		Steps: []models.Step{
			{
				ID:   adaptiveIntroStepID,
				Kind: models.StepKindInstruction,
				Text: fmt.Sprintf("%s draws from %d questions and stops as soon as your score is precise enough.", title, len(form.Items)),
			},
			{
				ID:     adaptiveStepID,
				Kind:   models.StepKindAdaptive,
				Title:  title,
				Text:   a.formOID,
				Format: models.AnswerFormatPayload,
			},
		},
	}, nil
}

func (a *adaptiveInstrument) GenerateResultBundle(ctx context.Context, measure *models.Measure, result *models.TaskResult) (*fhir_dto.FHIRBundle, error) {
	stepResult, ok := result.Result(adaptiveStepID)
	if !ok || len(stepResult.Payload) == 0 {
		return nil, nil
	}

	var outcome adaptiveOutcome
	if err := json.Unmarshal(stepResult.Payload, &outcome); err != nil {
		return nil, err
	}
	if outcome.Theta == nil {
		return nil, nil
	}

	response := &fhir_dto.QuestionnaireResponse{
		ResourceType:  constvars.ResourceQuestionnaireResponse,
		Status:        constvars.FhirQuestionnaireResponseStatusDone,
		Questionnaire: constvars.ResourceQuestionnaire + "/" + a.formOID,
		Subject:       subjectOf(measure),
		Authored:      effectiveTime(result).Format(time.RFC3339),
	}
	for _, answered := range outcome.Responses {
		answer := answered.Answer
		response.Item = append(response.Item, fhir_dto.QuestionnaireResponseItem{
			LinkID: answered.ItemID,
			Text:   answered.Question,
			Answer: []fhir_dto.QuestionnaireResponseItemAnswer{{
				ValueCoding: &fhir_dto.Coding{Code: answered.Value, Display: answer},
			}},
		})
	}

	code := codeableConcept(constvars.CodingSystemPROMIS, a.formOID, a.metadata.Title)
	if concept := metadataCode(a.metadata); concept != nil {
		code = *concept
	}
	score := &fhir_dto.Observation{
		ResourceType:      constvars.ResourceObservation,
		Status:            constvars.FhirObservationStatusFinal,
		Category:          observationCategory(constvars.ObservationCatSurvey),
		Code:              code,
		Subject:           subjectOf(measure),
		EffectiveDateTime: effectiveTime(result).Format(time.RFC3339),
		ValueQuantity: &fhir_dto.Quantity{
			Value: TScore(*outcome.Theta),
			Unit:  "T-score",
		},
	}
	return newResultBundle(response, score)
}

// TScore rescales an ability estimate to mean 50 and standard deviation 10.
func TScore(theta float64) float64 {
	return math.Round((theta*10+50)*100) / 100
}

func effectiveTime(result *models.TaskResult) time.Time {
	if result != nil && !result.EndDate.IsZero() {
		return result.EndDate.UTC()
	}
	return time.Now().UTC()
}
