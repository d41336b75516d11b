package models

import (
	"context"
	"sync"
	"time"

	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"
)

// SubmissionRecorder is told about every bundle whose submission state
// changed. Implementations must not block for long.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, bundle *SubmissionBundle)
}

type SubmitOptions struct {
	Recorder SubmissionRecorder
	Now      func() time.Time
}

// Reports holds every submission bundle produced for one measure.
type Reports struct {
	mu        sync.RWMutex
	measureID string
	bundles   []*SubmissionBundle
}

func NewReports(measureID string) *Reports {
	return &Reports{measureID: measureID}
}

func (r *Reports) MeasureID() string {
	return r.measureID
}

func (r *Reports) Add(bundle *SubmissionBundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles = append(r.bundles, bundle)
}

func (r *Reports) All() []*SubmissionBundle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bundles := make([]*SubmissionBundle, len(r.bundles))
	copy(bundles, r.bundles)
	return bundles
}

func (r *Reports) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bundles)
}

// SubmissionBundle looks a bundle up by the task run that produced it.
func (r *Reports) SubmissionBundle(taskRunID string) *SubmissionBundle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, bundle := range r.bundles {
		if bundle.TaskRunID == taskRunID {
			return bundle
		}
	}
	return nil
}

func (r *Reports) WithStatus(statuses ...SubmissionStatus) []*SubmissionBundle {
	wanted := make(map[SubmissionStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var bundles []*SubmissionBundle
	for _, bundle := range r.bundles {
		if wanted[bundle.Status()] {
			bundles = append(bundles, bundle)
		}
	}
	return bundles
}

// Submit sends every bundle marked shouldSubmit to the server in one
// transaction. It reports success when nothing was pending.
func (r *Reports) Submit(ctx context.Context, server *Server, consentGiven bool, patient *fhir_dto.Patient, options SubmitOptions) (bool, []error) {
	pending := r.WithStatus(SubmissionStatusShouldSubmit)
	if len(pending) == 0 {
		return true, nil
	}

	now := options.Now
	if now == nil {
		now = time.Now
	}

	fail := func(err error) (bool, []error) {
		for _, bundle := range pending {
			bundle.MarkFailed(err)
			if options.Recorder != nil {
				options.Recorder.RecordSubmission(ctx, bundle)
			}
		}
		return false, []error{err}
	}

	if !consentGiven {
		return fail(exceptions.ErrConsentNotGivenError())
	}
	if server == nil || server.Client == nil {
		return fail(exceptions.ErrNoServerForSubmission())
	}
	if patient == nil || patient.ID == "" {
		return fail(exceptions.ErrNoPatientForSubmission())
	}

	transaction, err := BuildTransaction(pending, patient.ID)
	if err != nil {
		return fail(exceptions.ErrSubmissionFailedError(err, r.measureID))
	}

	if _, err := server.Client.PostTransactionBundle(ctx, transaction); err != nil {
		return fail(exceptions.ErrSubmissionFailedError(err, r.measureID))
	}

	submittedAt := now()
	for _, bundle := range pending {
		bundle.MarkSubmitted(submittedAt)
		if options.Recorder != nil {
			options.Recorder.RecordSubmission(ctx, bundle)
		}
	}
	return true, nil
}
