package constvars

const (
	ResourcePatient               = "Patient"
	ResourcePractitioner          = "Practitioner"
	ResourceObservation           = "Observation"
	ResourceCondition             = "Condition"
	ResourceMedicationRequest     = "MedicationRequest"
	ResourceProcedure             = "Procedure"
	ResourceAllergyIntolerance    = "AllergyIntolerance"
	ResourceImmunization          = "Immunization"
	ResourceDiagnosticReport      = "DiagnosticReport"
	ResourceQuestionnaire         = "Questionnaire"
	ResourceQuestionnaireResponse = "QuestionnaireResponse"
	ResourceBundle                = "Bundle"
	ResourceOperationOutcome      = "OperationOutcome"
	ResourceDevice                = "Device"
)

const (
	FhirBundleTypeTransaction         = "transaction"
	FhirBundleTypeTransactionResponse = "transaction-response"
	FhirBundleTypeSearchset           = "searchset"
	FhirBundleTypeCollection          = "collection"
	FhirUrnUUIDPrefix                 = "urn:uuid:"
)

const (
	FhirObservationStatusFinal             = "final"
	FhirQuestionnaireResponseStatusDone    = "completed"
	FhirQuestionnaireResponseStatusPartial = "in-progress"
)

const (
	FhirQuestionnaireItemTypeGroup   = "group"
	FhirQuestionnaireItemTypeDisplay = "display"
	FhirQuestionnaireItemTypeChoice  = "choice"
)

const (
	CodingSystemLOINC          = "http://loinc.org"
	CodingSystemUCUM           = "http://unitsofmeasure.org"
	CodingSystemObservationCat = "http://terminology.hl7.org/CodeSystem/observation-category"
	CodingSystemPROMIS         = "http://www.healthmeasures.net/explore-measurement-systems/promis"
)

const (
	LoincBloodPressurePanel = "85354-9"
	LoincSystolicPressure   = "8480-6"
	LoincDiastolicPressure  = "8462-4"
	LoincStepCount24Hours   = "41950-7"
	LoincHeartRate          = "8867-4"
	UcumMillimeterMercury   = "mm[Hg]"
	UcumStepsPerDay         = "/d"
	ObservationCatVitalSign = "vital-signs"
	ObservationCatActivity  = "activity"
	ObservationCatSurvey    = "survey"
)
