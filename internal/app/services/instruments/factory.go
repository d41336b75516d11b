package instruments

import (
	"time"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/dto/requests"
	"smartmarkers-service/internal/pkg/exceptions"
)

type factory struct {
	questionnaires contracts.QuestionnaireFhirClient
	search         contracts.ResourceSearchFhirClient
	adaptive       contracts.AdaptiveEngineClient
	devices        contracts.DeviceReadingClient
	now            func() time.Time
}

func NewFactory(
	questionnaires contracts.QuestionnaireFhirClient,
	search contracts.ResourceSearchFhirClient,
	adaptive contracts.AdaptiveEngineClient,
	devices contracts.DeviceReadingClient,
) contracts.InstrumentFactory {
	return &factory{
		questionnaires: questionnaires,
		search:         search,
		adaptive:       adaptive,
		devices:        devices,
		now:            time.Now,
	}
}

func (f *factory) Build(request *requests.InstrumentRequest) (models.Instrument, error) {
	metadata := models.InstrumentMetadata{
		Kind:       models.InstrumentKind(request.Kind),
		Identifier: request.Identifier,
		Title:      request.Title,
	}
	if request.Code != nil {
		metadata.Code = &models.Coding{System: request.Code.System, Code: request.Code.Code, Display: request.Code.Display}
	}

	var instrument models.Instrument
	switch metadata.Kind {
	case models.InstrumentKindQuestionnaire:
		if request.QuestionnaireID == "" {
			return nil, exceptions.ErrMalformedInstrumentError("questionnaire without questionnaire_id")
		}
		metadata.Category = constvars.ObservationCatSurvey
		metadata.ResourceTypes = []string{constvars.ResourceQuestionnaireResponse}
		instrument = &questionnaireInstrument{metadata: metadata, questionnaireID: request.QuestionnaireID, client: f.questionnaires}
	case models.InstrumentKindAdaptiveQuestionnaire:
		if request.FormOID == "" {
			return nil, exceptions.ErrMalformedInstrumentError("adaptive questionnaire without form_oid")
		}
		metadata.Category = constvars.ObservationCatSurvey
		metadata.ResourceTypes = []string{constvars.ResourceQuestionnaireResponse, constvars.ResourceObservation}
		instrument = &adaptiveInstrument{metadata: metadata, formOID: request.FormOID, engine: f.adaptive}
	case models.InstrumentKindDeviceActivity:
		periodDays := request.PeriodDays
		if periodDays <= 0 {
			periodDays = defaultActivityDays
		}
		metadata.Category = constvars.ObservationCatActivity
		metadata.ResourceTypes = []string{constvars.ResourceObservation}
		instrument = &deviceActivityInstrument{metadata: metadata, periodDays: periodDays, now: f.now}
	case models.InstrumentKindWebInstrument:
		if request.SourceURL == "" {
			return nil, exceptions.ErrMalformedInstrumentError("web instrument without source_url")
		}
		metadata.Category = constvars.ObservationCatVitalSign
		metadata.ResourceTypes = []string{constvars.ResourceObservation}
		instrument = &webInstrument{metadata: metadata, sourceURL: request.SourceURL, client: f.devices}
	case models.InstrumentKindClinicalRecordImport:
		if len(request.ResourceTypes) == 0 {
			return nil, exceptions.ErrMalformedInstrumentError("clinical record import without resource_types")
		}
		metadata.ResourceTypes = append([]string(nil), request.ResourceTypes...)
		instrument = &clinicalRecordInstrument{metadata: metadata, client: f.search}
	default:
		return nil, exceptions.ErrUnsupportedInstrumentKind(request.Kind)
	}

	if err := models.ValidateMetadata(metadata); err != nil {
		return nil, err
	}
	return instrument, nil
}
