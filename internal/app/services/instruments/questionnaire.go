package instruments

import (
	"context"
	"sort"
	"strconv"
	"time"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"
)

type questionnaireInstrument struct {
	metadata        models.InstrumentMetadata
	questionnaireID string
	client          contracts.QuestionnaireFhirClient
}

func (q *questionnaireInstrument) Metadata() models.InstrumentMetadata {
	return q.metadata
}

func (q *questionnaireInstrument) PrepareTask(ctx context.Context, measure *models.Measure) (*models.Task, error) {
	questionnaire, err := q.client.FindQuestionnaireByID(ctx, q.questionnaireID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{ID: q.metadata.Identifier, Title: q.metadata.Title}
	if questionnaire.Title != "" {
		task.Title = questionnaire.Title
	}
	task.Steps = questionnaireSteps(questionnaire.Item, nil)
	return task, nil
}

func questionnaireSteps(items []fhir_dto.QuestionnaireItem, steps []models.Step) []models.Step {
	for _, item := range items {
		switch item.Type {
		case constvars.FhirQuestionnaireItemTypeGroup:
			steps = questionnaireSteps(item.Item, steps)
			continue
		case constvars.FhirQuestionnaireItemTypeDisplay:
			steps = append(steps, models.Step{ID: item.LinkID, Kind: models.StepKindInstruction, Text: item.Text})
		default:
			steps = append(steps, models.Step{
				ID:       item.LinkID,
				Kind:     models.StepKindQuestion,
				Title:    item.Text,
				Format:   answerFormat(item),
				Choices:  answerChoices(item.AnswerOption),
				Optional: !item.Required,
			})
		}
		if len(item.Item) > 0 {
			steps = questionnaireSteps(item.Item, steps)
		}
	}
	return steps
}

func answerFormat(item fhir_dto.QuestionnaireItem) models.AnswerFormat {
	switch item.Type {
	case constvars.FhirQuestionnaireItemTypeChoice:
		return models.AnswerFormatSingleChoice
	case "boolean":
		return models.AnswerFormatBoolean
	case "integer", "decimal":
		return models.AnswerFormatNumeric
	}
	if len(item.AnswerOption) > 0 {
		return models.AnswerFormatSingleChoice
	}
	return models.AnswerFormatText
}

func answerChoices(options []fhir_dto.QuestionnaireItemAnswer) []models.Choice {
	var choices []models.Choice
	for _, option := range options {
		switch {
		case option.ValueCoding != nil:
			choices = append(choices, models.Choice{Value: option.ValueCoding.Code, Label: option.ValueCoding.Display, Detail: option.ValueCoding.System})
		case option.ValueString != nil:
			choices = append(choices, models.Choice{Value: *option.ValueString, Label: *option.ValueString})
		case option.ValueInteger != nil:
			value := strconv.Itoa(*option.ValueInteger)
			choices = append(choices, models.Choice{Value: value, Label: value})
		}
	}
	return choices
}

func (q *questionnaireInstrument) GenerateResultBundle(ctx context.Context, measure *models.Measure, result *models.TaskResult) (*fhir_dto.FHIRBundle, error) {
	if result == nil || len(result.StepResults) == 0 {
		return nil, nil
	}

	response := buildQuestionnaireResponse(constvars.ResourceQuestionnaire+"/"+q.questionnaireID, measure, result, result.StepResults)
	if len(response.Item) == 0 {
		return nil, nil
	}
	return newResultBundle(response)
}

func buildQuestionnaireResponse(questionnaire string, measure *models.Measure, result *models.TaskResult, answers map[string]models.StepResult) *fhir_dto.QuestionnaireResponse {
	response := &fhir_dto.QuestionnaireResponse{
		ResourceType:  constvars.ResourceQuestionnaireResponse,
		Status:        constvars.FhirQuestionnaireResponseStatusDone,
		Questionnaire: questionnaire,
		Subject:       subjectOf(measure),
		Authored:      effectiveTime(result).Format(time.RFC3339),
	}

	linkIDs := make([]string, 0, len(answers))
	for linkID := range answers {
		linkIDs = append(linkIDs, linkID)
	}
	sort.Strings(linkIDs)

	for _, linkID := range linkIDs {
		stepAnswers := responseAnswers(answers[linkID])
		if len(stepAnswers) == 0 {
			continue
		}
		response.Item = append(response.Item, fhir_dto.QuestionnaireResponseItem{LinkID: linkID, Answer: stepAnswers})
	}
	return response
}

func responseAnswers(result models.StepResult) []fhir_dto.QuestionnaireResponseItemAnswer {
	var answers []fhir_dto.QuestionnaireResponseItemAnswer
	for _, choice := range result.Choices {
		answers = append(answers, fhir_dto.QuestionnaireResponseItemAnswer{ValueCoding: &fhir_dto.Coding{Code: choice}})
	}
	if result.Text != nil {
		answers = append(answers, fhir_dto.QuestionnaireResponseItemAnswer{ValueString: result.Text})
	}
	if result.Number != nil {
		answers = append(answers, fhir_dto.QuestionnaireResponseItemAnswer{ValueDecimal: result.Number})
	}
	if result.Boolean != nil {
		answers = append(answers, fhir_dto.QuestionnaireResponseItemAnswer{ValueBoolean: result.Boolean})
	}
	return answers
}
