package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var instrumentKinds = map[string]bool{
	"questionnaire":          true,
	"adaptive_questionnaire": true,
	"device_activity":        true,
	"web_instrument":         true,
	"clinical_record_import": true,
}

var fhirReferencePattern = regexp.MustCompile(`^[A-Z][A-Za-z]+/[A-Za-z0-9\-\.]{1,64}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("instrument_kind", validateInstrumentKind)
	validate.RegisterValidation("fhir_reference", validateFhirReference)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateInstrumentKind(fl validator.FieldLevel) bool {
	return instrumentKinds[fl.Field().String()]
}

func validateFhirReference(fl validator.FieldLevel) bool {
	return fhirReferencePattern.MatchString(fl.Field().String())
}
