package models

import (
	"context"
	"errors"
	"testing"

	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
)

func TestMeasurePrepareTask(t *testing.T) {
	ctx := context.Background()
	metadata := InstrumentMetadata{Kind: InstrumentKindQuestionnaire, Identifier: "phq-9", Title: "PHQ-9"}

	t.Run("Prepared task moves measure in progress", func(t *testing.T) {
		instrument := &fakeInstrument{metadata: metadata, task: &Task{ID: "phq-9", Steps: []Step{{ID: "q1"}, {ID: "q2"}}}}
		measure := NewMeasure(instrument, nil, nil)
		assert.Equal(t, MeasureStatusPending, measure.Status())

		task, err := measure.PrepareTask(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "phq-9", task.MeasureID)
		assert.Equal(t, MeasureStatusInProgress, measure.Status())
	})

	t.Run("Instrument failure marks measure failed", func(t *testing.T) {
		instrument := &fakeInstrument{metadata: metadata, prepareErr: errors.New("server unreachable")}
		measure := NewMeasure(instrument, nil, nil)

		task, err := measure.PrepareTask(ctx)

		assert.Nil(t, task)
		assert.ErrorContains(t, err, "server unreachable")
		assert.Equal(t, MeasureStatusFailed, measure.Status())
	})

	t.Run("Duplicate step identifiers are rejected", func(t *testing.T) {
		instrument := &fakeInstrument{metadata: metadata, task: &Task{ID: "phq-9", Steps: []Step{{ID: "q1"}, {ID: "q1"}}}}
		measure := NewMeasure(instrument, nil, nil)

		_, err := measure.PrepareTask(ctx)

		assert.True(t, errors.Is(err, exceptions.ErrDuplicateStepIdentifier))
		assert.Equal(t, MeasureStatusFailed, measure.Status())
	})
}

func TestMeasureComplete(t *testing.T) {
	ctx := context.Background()
	metadata := InstrumentMetadata{Kind: InstrumentKindDeviceActivity, Identifier: "steps", Title: "Steps"}

	t.Run("Result bundle is appended to reports", func(t *testing.T) {
		instrument := &fakeInstrument{metadata: metadata, bundle: observationBundle(`{"resourceType":"Observation"}`)}
		measure := NewMeasure(instrument, &fhir_dto.Patient{ID: "p-1"}, nil)

		submission, err := measure.Complete(ctx, &TaskResult{TaskID: "steps"})

		assert.NoError(t, err)
		assert.NotEmpty(t, submission.TaskRunID)
		assert.Equal(t, SubmissionStatusNotSubmitted, submission.Status())
		assert.Same(t, submission, measure.Reports.SubmissionBundle(submission.TaskRunID))
		assert.Equal(t, MeasureStatusCompleted, measure.Status())
	})

	t.Run("Generator failure marks measure failed", func(t *testing.T) {
		instrument := &fakeInstrument{
			metadata:  metadata,
			task:      &Task{ID: "steps", Steps: []Step{{ID: "samples"}}},
			bundleErr: errors.New("boom"),
		}
		measure := NewMeasure(instrument, nil, nil)
		_, err := measure.PrepareTask(ctx)
		assert.NoError(t, err)

		submission, err := measure.Complete(ctx, &TaskResult{TaskID: "steps"})

		assert.Nil(t, submission)
		assert.ErrorContains(t, err, "boom")
		assert.Equal(t, MeasureStatusFailed, measure.Status())
		assert.Equal(t, 0, measure.Reports.Len())
	})

	t.Run("Nil bundle adds nothing", func(t *testing.T) {
		measure := NewMeasure(&fakeInstrument{metadata: metadata}, nil, nil)

		submission, err := measure.Complete(ctx, &TaskResult{TaskID: "steps"})

		assert.NoError(t, err)
		assert.Nil(t, submission)
		assert.Equal(t, 0, measure.Reports.Len())
	})

	t.Run("Identity follows the instrument identifier", func(t *testing.T) {
		first := NewMeasure(&fakeInstrument{metadata: metadata}, nil, nil)
		second := NewMeasure(&fakeInstrument{metadata: metadata}, &fhir_dto.Patient{ID: "p-2"}, nil)

		assert.True(t, first.Equal(second))
		assert.False(t, first.Equal(nil))
	})
}

func TestValidateMetadata(t *testing.T) {
	assert.NoError(t, ValidateMetadata(InstrumentMetadata{Kind: InstrumentKindQuestionnaire, Identifier: "a", Title: "A"}))
	assert.True(t, errors.Is(ValidateMetadata(InstrumentMetadata{Title: "A"}), exceptions.ErrMalformedInstrument))
	assert.True(t, errors.Is(ValidateMetadata(InstrumentMetadata{Identifier: "a", Kind: InstrumentKindQuestionnaire}), exceptions.ErrMalformedInstrument))
}
