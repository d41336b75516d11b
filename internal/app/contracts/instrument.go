package contracts

import (
	"context"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/dto/requests"
)

type InstrumentFactory interface {
	Build(request *requests.InstrumentRequest) (models.Instrument, error)
}

type AdaptiveEngineClient interface {
	FindForm(ctx context.Context, formOID string) (*models.AdaptiveForm, error)
}

type DeviceReadingClient interface {
	FetchBloodPressureReadings(ctx context.Context, sourceURL string) ([]models.BloodPressureReading, error)
}
