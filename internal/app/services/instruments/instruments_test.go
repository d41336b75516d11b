package instruments

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/dto/requests"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tidwall/gjson"
)

type MockQuestionnaireClient struct{ mock.Mock }

func (m *MockQuestionnaireClient) FindQuestionnaireByID(ctx context.Context, questionnaireID string) (*fhir_dto.Questionnaire, error) {
	args := m.Called(ctx, questionnaireID)
	questionnaire, _ := args.Get(0).(*fhir_dto.Questionnaire)
	return questionnaire, args.Error(1)
}

type MockSearchClient struct{ mock.Mock }

func (m *MockSearchClient) SearchByPatient(ctx context.Context, resourceType, patientID string) ([]json.RawMessage, error) {
	args := m.Called(ctx, resourceType, patientID)
	resources, _ := args.Get(0).([]json.RawMessage)
	return resources, args.Error(1)
}

type MockAdaptiveEngine struct{ mock.Mock }

func (m *MockAdaptiveEngine) FindForm(ctx context.Context, formOID string) (*models.AdaptiveForm, error) {
	args := m.Called(ctx, formOID)
	form, _ := args.Get(0).(*models.AdaptiveForm)
	return form, args.Error(1)
}

type MockDeviceClient struct{ mock.Mock }

func (m *MockDeviceClient) FetchBloodPressureReadings(ctx context.Context, sourceURL string) ([]models.BloodPressureReading, error) {
	args := m.Called(ctx, sourceURL)
	readings, _ := args.Get(0).([]models.BloodPressureReading)
	return readings, args.Error(1)
}

func strPtr(v string) *string { return &v }

func patientMeasure(instrument models.Instrument) *models.Measure {
	return models.NewMeasure(instrument, &fhir_dto.Patient{ID: "p-1"}, nil)
}

func resourcesOf(t *testing.T, bundle *fhir_dto.FHIRBundle) []gjson.Result {
	t.Helper()
	var resources []gjson.Result
	for _, entry := range bundle.Entry {
		resources = append(resources, gjson.ParseBytes(entry.Resource))
	}
	return resources
}

func TestFactoryBuild(t *testing.T) {
	f := NewFactory(nil, nil, nil, nil)

	t.Run("Unknown kind is rejected", func(t *testing.T) {
		_, err := f.Build(&requests.InstrumentRequest{Kind: "hologram", Identifier: "x", Title: "X"})
		assert.Error(t, err)
	})

	t.Run("Kind specific fields are required", func(t *testing.T) {
		_, err := f.Build(&requests.InstrumentRequest{Kind: "questionnaire", Identifier: "x", Title: "X"})
		assert.True(t, errors.Is(err, exceptions.ErrMalformedInstrument))

		_, err = f.Build(&requests.InstrumentRequest{Kind: "web_instrument", Identifier: "x", Title: "X"})
		assert.True(t, errors.Is(err, exceptions.ErrMalformedInstrument))
	})

	t.Run("Metadata carries code and resource types", func(t *testing.T) {
		instrument, err := f.Build(&requests.InstrumentRequest{
			Kind:       "adaptive_questionnaire",
			Identifier: "promis-pf",
			Title:      "PROMIS Physical Function",
			FormOID:    "96FE494D-F176-4EFB-A473-2AB406610626",
			Code:       &requests.CodingRequest{System: constvars.CodingSystemLOINC, Code: "61577-3"},
		})

		assert.NoError(t, err)
		metadata := instrument.Metadata()
		assert.Equal(t, models.InstrumentKindAdaptiveQuestionnaire, metadata.Kind)
		assert.Equal(t, "61577-3", metadata.Code.Code)
		assert.Equal(t, []string{constvars.ResourceQuestionnaireResponse, constvars.ResourceObservation}, metadata.ResourceTypes)
	})

	t.Run("Missing title is malformed", func(t *testing.T) {
		_, err := f.Build(&requests.InstrumentRequest{Kind: "device_activity", Identifier: "steps"})
		assert.True(t, errors.Is(err, exceptions.ErrMalformedInstrument))
	})
}

func TestQuestionnaireInstrument(t *testing.T) {
	ctx := context.Background()
	client := new(MockQuestionnaireClient)
	client.On("FindQuestionnaireByID", mock.Anything, "phq9").Return(&fhir_dto.Questionnaire{
		ID:    "phq9",
		Title: "Patient Health Questionnaire",
		Item: []fhir_dto.QuestionnaireItem{
			{LinkID: "intro", Type: "display", Text: "Over the last two weeks"},
			{LinkID: "grp", Type: "group", Item: []fhir_dto.QuestionnaireItem{
				{LinkID: "q1", Type: "choice", Text: "Little interest", Required: true, AnswerOption: []fhir_dto.QuestionnaireItemAnswer{
					{ValueCoding: &fhir_dto.Coding{Code: "LA6568-5", Display: "Not at all"}},
					{ValueCoding: &fhir_dto.Coding{Code: "LA6569-3", Display: "Several days"}},
				}},
				{LinkID: "q2", Type: "integer", Text: "Hours of sleep"},
			}},
		},
	}, nil)

	instrument, err := NewFactory(client, nil, nil, nil).Build(&requests.InstrumentRequest{
		Kind: "questionnaire", Identifier: "phq-9", Title: "PHQ-9", QuestionnaireID: "phq9",
	})
	assert.NoError(t, err)
	measure := patientMeasure(instrument)

	task, err := measure.PrepareTask(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "Patient Health Questionnaire", task.Title)
	assert.Len(t, task.Steps, 3, "groups are flattened")
	assert.Equal(t, models.StepKindInstruction, task.Steps[0].Kind)
	assert.Equal(t, models.AnswerFormatSingleChoice, task.Steps[1].Format)
	assert.Len(t, task.Steps[1].Choices, 2)
	assert.False(t, task.Steps[1].Optional)
	assert.Equal(t, models.AnswerFormatNumeric, task.Steps[2].Format)

	hours := 7.0
	bundle, err := instrument.GenerateResultBundle(ctx, measure, &models.TaskResult{
		TaskID:  task.ID,
		EndDate: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		StepResults: map[string]models.StepResult{
			"q1": {StepID: "q1", Choices: []string{"LA6569-3"}},
			"q2": {StepID: "q2", Number: &hours},
		},
	})
	assert.NoError(t, err)
	resources := resourcesOf(t, bundle)
	assert.Len(t, resources, 1)
	assert.Equal(t, constvars.ResourceQuestionnaireResponse, resources[0].Get("resourceType").String())
	assert.Equal(t, "Questionnaire/phq9", resources[0].Get("questionnaire").String())
	assert.Equal(t, "Patient/p-1", resources[0].Get("subject.reference").String())
	assert.Equal(t, "LA6569-3", resources[0].Get("item.0.answer.0.valueCoding.code").String())
	assert.Equal(t, 7.0, resources[0].Get("item.1.answer.0.valueDecimal").Float())

	empty, err := instrument.GenerateResultBundle(ctx, measure, &models.TaskResult{TaskID: task.ID})
	assert.NoError(t, err)
	assert.Nil(t, empty)
}

func TestAdaptiveInstrument(t *testing.T) {
	ctx := context.Background()
	engine := new(MockAdaptiveEngine)
	engine.On("FindForm", mock.Anything, "form-1").Return(&models.AdaptiveForm{OID: "form-1", Name: "PROMIS Anxiety", Items: []models.AdaptiveFormItem{{ID: "i1"}, {ID: "i2"}}}, nil).Once()
	engine.On("FindForm", mock.Anything, "form-empty").Return(&models.AdaptiveForm{OID: "form-empty"}, nil).Once()

	f := NewFactory(nil, nil, engine, nil)
	instrument, _ := f.Build(&requests.InstrumentRequest{Kind: "adaptive_questionnaire", Identifier: "anx", Title: "Anxiety", FormOID: "form-1"})
	measure := patientMeasure(instrument)

	task, err := measure.PrepareTask(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "PROMIS Anxiety", task.Title)
	assert.Equal(t, models.StepKindAdaptive, task.Steps[1].Kind)

	payload := []byte(`{"theta":0.42,"std_error":0.3,"responses":[{"item_id":"i1","question":"I felt fearful","value":"2","answer":"Rarely"}]}`)
	bundle, err := instrument.GenerateResultBundle(ctx, measure, &models.TaskResult{
		StepResults: map[string]models.StepResult{adaptiveStepID: {StepID: adaptiveStepID, Payload: payload}},
	})
	assert.NoError(t, err)
	resources := resourcesOf(t, bundle)
	assert.Len(t, resources, 2)
	assert.Equal(t, "i1", resources[0].Get("item.0.linkId").String())
	assert.Equal(t, 54.2, resources[1].Get("valueQuantity.value").Float())

	emptyForm, _ := f.Build(&requests.InstrumentRequest{Kind: "adaptive_questionnaire", Identifier: "empty", Title: "Empty", FormOID: "form-empty"})
	_, err = emptyForm.PrepareTask(ctx, nil)
	assert.Error(t, err)

	assert.Equal(t, 50.0, TScore(0))
	assert.Equal(t, 35.0, TScore(-1.5))
}

func TestDeviceActivityInstrument(t *testing.T) {
	ctx := context.Background()
	instrument := &deviceActivityInstrument{
		metadata:   models.InstrumentMetadata{Kind: models.InstrumentKindDeviceActivity, Identifier: "steps", Title: "Steps"},
		periodDays: 3,
		now:        func() time.Time { return time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC) },
	}
	measure := patientMeasure(instrument)

	task, err := measure.PrepareTask(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "2024-05-07/2024-05-10", task.Steps[1].Text)

	bundle, err := instrument.GenerateResultBundle(ctx, measure, &models.TaskResult{
		StepResults: map[string]models.StepResult{activitySampleStepID: {
			StepID:  activitySampleStepID,
			Payload: []byte(`[{"date":"2024-05-07","steps":8123},{"date":"2024-05-08","steps":0},{"date":"2024-05-09","steps":10450}]`),
		}},
	})
	assert.NoError(t, err)
	resources := resourcesOf(t, bundle)
	assert.Len(t, resources, 2, "days without steps are left out")
	assert.Equal(t, constvars.LoincStepCount24Hours, resources[0].Get("code.coding.0.code").String())
	assert.Equal(t, 8123.0, resources[0].Get("valueQuantity.value").Float())

	_, err = instrument.GenerateResultBundle(ctx, measure, &models.TaskResult{
		StepResults: map[string]models.StepResult{activitySampleStepID: {Payload: []byte(`[{"date":"May 7","steps":1}]`)}},
	})
	assert.Error(t, err)
}

func TestWebInstrument(t *testing.T) {
	ctx := context.Background()
	measuredAt := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	client := new(MockDeviceClient)
	client.On("FetchBloodPressureReadings", mock.Anything, "https://cuff.example.com/readings").Return([]models.BloodPressureReading{
		{ID: "r1", Systolic: 121, Diastolic: 79, MeasuredAt: measuredAt},
		{ID: "r2", Systolic: 135, Diastolic: 88, MeasuredAt: measuredAt.Add(time.Hour)},
	}, nil)
	client.On("FetchBloodPressureReadings", mock.Anything, "https://cuff.example.com/empty").Return([]models.BloodPressureReading{}, nil)

	f := NewFactory(nil, nil, nil, client)
	instrument, _ := f.Build(&requests.InstrumentRequest{Kind: "web_instrument", Identifier: "bp", Title: "Blood pressure", SourceURL: "https://cuff.example.com/readings"})
	measure := patientMeasure(instrument)

	task, err := measure.PrepareTask(ctx)
	assert.NoError(t, err)
	assert.Len(t, task.Steps[0].Choices, 2)
	assert.Equal(t, "121/79 mmHg", task.Steps[0].Choices[0].Label)

	bundle, err := instrument.GenerateResultBundle(ctx, measure, &models.TaskResult{
		StepResults: map[string]models.StepResult{webReadingsStepID: {StepID: webReadingsStepID, Choices: []string{"r2"}}},
	})
	assert.NoError(t, err)
	resources := resourcesOf(t, bundle)
	assert.Len(t, resources, 1)
	assert.Equal(t, constvars.LoincBloodPressurePanel, resources[0].Get("code.coding.0.code").String())
	assert.Equal(t, 135.0, resources[0].Get("component.0.valueQuantity.value").Float())
	assert.Equal(t, constvars.LoincDiastolicPressure, resources[0].Get("component.1.code.coding.0.code").String())

	empty, _ := f.Build(&requests.InstrumentRequest{Kind: "web_instrument", Identifier: "bp2", Title: "Blood pressure", SourceURL: "https://cuff.example.com/empty"})
	_, err = empty.PrepareTask(ctx, nil)
	assert.Error(t, err, "a source without readings cannot be presented")
}

func TestClinicalRecordInstrument(t *testing.T) {
	ctx := context.Background()
	client := new(MockSearchClient)
	client.On("SearchByPatient", mock.Anything, constvars.ResourceCondition, "p-1").Return([]json.RawMessage{
		json.RawMessage(`{"resourceType":"Condition","id":"c1"}`),
	}, nil)
	client.On("SearchByPatient", mock.Anything, constvars.ResourceAllergyIntolerance, "p-1").Return([]json.RawMessage{
		json.RawMessage(`{"resourceType":"AllergyIntolerance","id":"a1"}`),
		json.RawMessage(`{"resourceType":"AllergyIntolerance","id":"a2"}`),
	}, nil)

	f := NewFactory(nil, client, nil, nil)
	instrument, err := f.Build(&requests.InstrumentRequest{
		Kind: "clinical_record_import", Identifier: "records", Title: "Records",
		ResourceTypes: []string{constvars.ResourceCondition, constvars.ResourceAllergyIntolerance},
	})
	assert.NoError(t, err)

	_, err = instrument.PrepareTask(ctx, models.NewMeasure(instrument, nil, nil))
	assert.Error(t, err, "import needs a patient")

	measure := patientMeasure(instrument)
	task, err := measure.PrepareTask(ctx)
	assert.NoError(t, err)
	assert.Len(t, task.Steps[1].Choices, 2)

	bundle, err := instrument.GenerateResultBundle(ctx, measure, &models.TaskResult{
		StepResults: map[string]models.StepResult{clinicalSelectStepID: {
			StepID:  clinicalSelectStepID,
			Choices: []string{constvars.ResourceAllergyIntolerance, constvars.ResourceCondition, constvars.ResourceProcedure},
		}},
	})
	assert.NoError(t, err)
	resources := resourcesOf(t, bundle)
	assert.Len(t, resources, 3)
	assert.Equal(t, "a1", resources[0].Get("id").String())
	assert.Equal(t, "c1", resources[2].Get("id").String())
	client.AssertNotCalled(t, "SearchByPatient", mock.Anything, constvars.ResourceProcedure, mock.Anything)
}

func TestTextAnswer(t *testing.T) {
	answers := responseAnswers(models.StepResult{Text: strPtr("fine")})
	assert.Equal(t, "fine", *answers[0].ValueString)
}
