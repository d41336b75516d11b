package models

import (
	"context"
	"sync"

	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/mock"
)

type fakeInstrument struct {
	metadata   InstrumentMetadata
	task       *Task
	prepareErr error
	bundle     *fhir_dto.FHIRBundle
	bundleErr  error
}

func (f *fakeInstrument) Metadata() InstrumentMetadata { return f.metadata }

func (f *fakeInstrument) PrepareTask(ctx context.Context, measure *Measure) (*Task, error) {
	return f.task, f.prepareErr
}

func (f *fakeInstrument) GenerateResultBundle(ctx context.Context, measure *Measure, result *TaskResult) (*fhir_dto.FHIRBundle, error) {
	return f.bundle, f.bundleErr
}

type MockTransactionClient struct {
	mock.Mock
}

func (m *MockTransactionClient) PostTransactionBundle(ctx context.Context, bundle *fhir_dto.FHIRBundle) (*fhir_dto.FHIRBundle, error) {
	args := m.Called(ctx, bundle)
	response, _ := args.Get(0).(*fhir_dto.FHIRBundle)
	return response, args.Error(1)
}

type recordingRecorder struct {
	mu       sync.Mutex
	statuses []SubmissionStatus
}

func (r *recordingRecorder) RecordSubmission(ctx context.Context, bundle *SubmissionBundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, bundle.Status())
}

func observationBundle(resources ...string) *fhir_dto.FHIRBundle {
	bundle := &fhir_dto.FHIRBundle{ResourceType: constvars.ResourceBundle, Type: constvars.FhirBundleTypeCollection}
	for _, resource := range resources {
		bundle.Entry = append(bundle.Entry, fhir_dto.Entry{Resource: []byte(resource)})
	}
	return bundle
}
