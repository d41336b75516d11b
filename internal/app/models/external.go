package models

import "time"

// AdaptiveForm is a computer adaptive test form as served by the scoring engine.
type AdaptiveForm struct {
	OID   string             `json:"OID"`
	Name  string             `json:"Name"`
	Items []AdaptiveFormItem `json:"Items"`
}

type AdaptiveFormItem struct {
	ID       string                `json:"ID"`
	Order    int                   `json:"Order"`
	Elements []AdaptiveFormElement `json:"Elements"`
}

type AdaptiveFormElement struct {
	ElementOID  string                 `json:"ElementOID"`
	Description string                 `json:"Description"`
	Map         []AdaptiveFormMapEntry `json:"Map,omitempty"`
}

type AdaptiveFormMapEntry struct {
	ItemResponseOID string `json:"ItemResponseOID"`
	Value           string `json:"Value"`
	Description     string `json:"Description"`
}

// BloodPressureReading is one reading fetched from a connected cuff's web API.
type BloodPressureReading struct {
	ID          string    `json:"id"`
	Systolic    float64   `json:"systolic"`
	Diastolic   float64   `json:"diastolic"`
	Pulse       float64   `json:"pulse,omitempty"`
	MeasuredAt  time.Time `json:"measured_at"`
	DeviceModel string    `json:"device_model,omitempty"`
}

// ActivitySample is a daily step count collected on the patient's device.
type ActivitySample struct {
	Date  string  `json:"date"`
	Steps float64 `json:"steps"`
}
