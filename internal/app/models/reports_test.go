package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tidwall/gjson"
)

func TestReportsSubmit(t *testing.T) {
	ctx := context.Background()
	patient := &fhir_dto.Patient{ID: "p-1"}
	submittedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	options := func(recorder SubmissionRecorder) SubmitOptions {
		return SubmitOptions{Recorder: recorder, Now: func() time.Time { return submittedAt }}
	}

	t.Run("Nothing pending succeeds without calling the server", func(t *testing.T) {
		client := new(MockTransactionClient)
		reports := NewReports("m-1")
		reports.Add(NewSubmissionBundle("run-1", "m-1", observationBundle(`{"resourceType":"Observation"}`), time.Now()))

		ok, errs := reports.Submit(ctx, &Server{Client: client}, true, patient, options(nil))

		assert.True(t, ok)
		assert.Empty(t, errs)
		client.AssertNotCalled(t, "PostTransactionBundle", mock.Anything, mock.Anything)
	})

	t.Run("Pending bundles are merged into one transaction", func(t *testing.T) {
		client := new(MockTransactionClient)
		recorder := &recordingRecorder{}
		reports := NewReports("m-1")
		first := NewSubmissionBundle("run-1", "m-1", observationBundle(`{"resourceType":"Observation","id":"local"}`), time.Now())
		second := NewSubmissionBundle("run-2", "m-1", observationBundle(
			`{"resourceType":"QuestionnaireResponse"}`,
			`{"resourceType":"Observation","subject":{"reference":"Patient/other"}}`,
		), time.Now())
		untouched := NewSubmissionBundle("run-3", "m-1", observationBundle(`{"resourceType":"Observation"}`), time.Now())
		reports.Add(first)
		reports.Add(second)
		reports.Add(untouched)
		first.MarkShouldSubmit()
		second.MarkShouldSubmit()

		var sent *fhir_dto.FHIRBundle
		client.On("PostTransactionBundle", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(1).(*fhir_dto.FHIRBundle) }).
			Return(&fhir_dto.FHIRBundle{Type: constvars.FhirBundleTypeTransactionResponse}, nil).
			Once()

		ok, errs := reports.Submit(ctx, &Server{Client: client}, true, patient, options(recorder))

		assert.True(t, ok)
		assert.Empty(t, errs)
		client.AssertExpectations(t)

		assert.Equal(t, constvars.FhirBundleTypeTransaction, sent.Type)
		assert.Len(t, sent.Entry, 3, "entries of both pending bundles should be merged")
		for _, entry := range sent.Entry {
			assert.Contains(t, entry.FullUrl, constvars.FhirUrnUUIDPrefix)
			assert.Equal(t, constvars.MethodPost, entry.Request.Method)
		}
		assert.Equal(t, constvars.ResourceObservation, sent.Entry[0].Request.Url)
		assert.False(t, gjson.GetBytes(sent.Entry[0].Resource, "id").Exists(), "local id should be stripped")
		assert.Equal(t, "Patient/p-1", gjson.GetBytes(sent.Entry[0].Resource, "subject.reference").String())
		assert.Equal(t, "Patient/p-1", gjson.GetBytes(sent.Entry[1].Resource, "subject.reference").String())
		assert.Equal(t, "Patient/other", gjson.GetBytes(sent.Entry[2].Resource, "subject.reference").String(), "existing subject must be kept")

		assert.Equal(t, SubmissionStatusSubmitted, first.Status())
		assert.Equal(t, SubmissionStatusSubmitted, second.Status())
		assert.Equal(t, submittedAt, first.SubmittedAt())
		assert.Equal(t, SubmissionStatusNotSubmitted, untouched.Status())
		assert.Equal(t, []SubmissionStatus{SubmissionStatusSubmitted, SubmissionStatusSubmitted}, recorder.statuses)
	})

	t.Run("Server failure marks bundles failed with reason", func(t *testing.T) {
		client := new(MockTransactionClient)
		reports := NewReports("m-1")
		bundle := NewSubmissionBundle("run-1", "m-1", observationBundle(`{"resourceType":"Observation"}`), time.Now())
		reports.Add(bundle)
		bundle.MarkShouldSubmit()
		client.On("PostTransactionBundle", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		ok, errs := reports.Submit(ctx, &Server{Client: client}, true, patient, options(nil))

		assert.False(t, ok)
		assert.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], exceptions.ErrSubmissionFailed))
		assert.Equal(t, SubmissionStatusFailed, bundle.Status())
		assert.Contains(t, bundle.FailureReason(), "connection refused")
	})

	t.Run("Missing consent fails without calling the server", func(t *testing.T) {
		client := new(MockTransactionClient)
		reports := NewReports("m-1")
		bundle := NewSubmissionBundle("run-1", "m-1", observationBundle(`{"resourceType":"Observation"}`), time.Now())
		reports.Add(bundle)
		bundle.MarkShouldSubmit()

		ok, errs := reports.Submit(ctx, &Server{Client: client}, false, patient, options(nil))

		assert.False(t, ok)
		assert.True(t, errors.Is(errs[0], exceptions.ErrConsentNotGiven))
		assert.Equal(t, SubmissionStatusFailed, bundle.Status())
		client.AssertNotCalled(t, "PostTransactionBundle", mock.Anything, mock.Anything)
	})

	t.Run("Submitted bundles are not flagged again", func(t *testing.T) {
		bundle := NewSubmissionBundle("run-1", "m-1", observationBundle(`{"resourceType":"Observation"}`), time.Now())
		bundle.MarkSubmitted(submittedAt)

		assert.False(t, bundle.MarkShouldSubmit())
		assert.Equal(t, SubmissionStatusSubmitted, bundle.Status())
	})
}

func TestReportsLookup(t *testing.T) {
	reports := NewReports("m-1")
	first := NewSubmissionBundle("run-1", "m-1", nil, time.Now())
	second := NewSubmissionBundle("run-2", "m-1", nil, time.Now())
	reports.Add(first)
	reports.Add(second)
	second.MarkFailed(errors.New("boom"))

	assert.Same(t, second, reports.SubmissionBundle("run-2"))
	assert.Nil(t, reports.SubmissionBundle("missing"))
	assert.Equal(t, []*SubmissionBundle{second}, reports.WithStatus(SubmissionStatusFailed))
	assert.Len(t, reports.WithStatus(SubmissionStatusNotSubmitted, SubmissionStatusFailed), 2)
	assert.Equal(t, 2, reports.Len())
}

func TestSubmissionBundleSummary(t *testing.T) {
	bundle := NewSubmissionBundle("run-1", "m-1", observationBundle(
		`{"resourceType":"Observation"}`,
		`{"resourceType":"QuestionnaireResponse"}`,
		`{"resourceType":"Observation"}`,
	), time.Now())

	assert.Equal(t, "2 Observation, 1 QuestionnaireResponse", bundle.Summary())
	assert.Equal(t, 3, bundle.ResourceCount())
}
