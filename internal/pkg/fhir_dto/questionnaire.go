package fhir_dto

type Questionnaire struct {
	ResourceType string              `json:"resourceType"`
	ID           string              `json:"id,omitempty"`
	Url          string              `json:"url,omitempty"`
	Title        string              `json:"title,omitempty"`
	Status       string              `json:"status,omitempty"`
	Code         []Coding            `json:"code,omitempty"`
	Item         []QuestionnaireItem `json:"item,omitempty"`
}

type QuestionnaireItem struct {
	LinkID       string                    `json:"linkId"`
	Text         string                    `json:"text,omitempty"`
	Type         string                    `json:"type"`
	Required     bool                      `json:"required,omitempty"`
	AnswerOption []QuestionnaireItemAnswer `json:"answerOption,omitempty"`
	Item         []QuestionnaireItem       `json:"item,omitempty"`
}

type QuestionnaireItemAnswer struct {
	ValueCoding  *Coding `json:"valueCoding,omitempty"`
	ValueString  *string `json:"valueString,omitempty"`
	ValueInteger *int    `json:"valueInteger,omitempty"`
}
