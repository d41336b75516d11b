package fhir_dto

type Reference struct {
	Reference  string      `json:"reference,omitempty" bson:"reference,omitempty"`
	Type       string      `json:"type,omitempty" bson:"type,omitempty"`
	Identifier *Identifier `json:"identifier,omitempty" bson:"identifier,omitempty"`
	Display    string      `json:"display,omitempty" bson:"display,omitempty"`
}

type Identifier struct {
	Use    string `json:"use,omitempty" bson:"use,omitempty"`
	System string `json:"system,omitempty" bson:"system,omitempty"`
	Value  string `json:"value,omitempty" bson:"value,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty" bson:"coding,omitempty"`
	Text   string   `json:"text,omitempty" bson:"text,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty" bson:"system,omitempty"`
	Version string `json:"version,omitempty" bson:"version,omitempty"`
	Code    string `json:"code,omitempty" bson:"code,omitempty"`
	Display string `json:"display,omitempty" bson:"display,omitempty"`
}

type Period struct {
	Start string `json:"start,omitempty" bson:"start,omitempty"`
	End   string `json:"end,omitempty" bson:"end,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty" bson:"use,omitempty"`
	Text   string   `json:"text,omitempty" bson:"text,omitempty"`
	Family string   `json:"family,omitempty" bson:"family,omitempty"`
	Given  []string `json:"given,omitempty" bson:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty" bson:"prefix,omitempty"`
}

type ContactPoint struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
}

type Quantity struct {
	Value      float64 `json:"value"`
	Comparator string  `json:"comparator,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	System     string  `json:"system,omitempty"`
	Code       string  `json:"code,omitempty"`
}

type Extension struct {
	Url         string `json:"url,omitempty"`
	ValueString string `json:"valueString,omitempty"`
	ValueCode   string `json:"valueCode,omitempty"`
}

// FullName renders the first usable name, falling back to family and given parts.
func FullName(names []HumanName) string {
	for _, name := range names {
		if name.Text != "" {
			return name.Text
		}
		parts := append([]string{}, name.Given...)
		if name.Family != "" {
			parts = append(parts, name.Family)
		}
		if len(parts) > 0 {
			full := parts[0]
			for _, part := range parts[1:] {
				full += " " + part
			}
			return full
		}
	}
	return ""
}
