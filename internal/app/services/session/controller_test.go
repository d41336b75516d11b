package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/app/services/navigation"
	"smartmarkers-service/internal/app/services/submission"
	"smartmarkers-service/internal/pkg/exceptions"
	"smartmarkers-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type delayedInstrument struct {
	identifier string
	delay      time.Duration
	fail       bool

	mu        *sync.Mutex
	settledAt *[]time.Time
}

func (d *delayedInstrument) Metadata() models.InstrumentMetadata {
	return models.InstrumentMetadata{Kind: models.InstrumentKindQuestionnaire, Identifier: d.identifier, Title: d.identifier}
}

func (d *delayedInstrument) PrepareTask(ctx context.Context, measure *models.Measure) (*models.Task, error) {
	time.Sleep(d.delay)
	if d.settledAt != nil {
		d.mu.Lock()
		*d.settledAt = append(*d.settledAt, time.Now())
		d.mu.Unlock()
	}
	if d.fail {
		return nil, errors.New("instrument unavailable")
	}
	return &models.Task{ID: d.identifier, Steps: []models.Step{{ID: "s1"}}}, nil
}

func (d *delayedInstrument) GenerateResultBundle(ctx context.Context, measure *models.Measure, result *models.TaskResult) (*fhir_dto.FHIRBundle, error) {
	return nil, nil
}

func buildSession(instruments ...models.Instrument) *models.Session {
	session := &models.Session{ID: "s-1"}
	for _, instrument := range instruments {
		session.Measures = append(session.Measures, models.NewMeasure(instrument, nil, nil))
	}
	return session
}

func itemIDs(preparation *Preparation) []string {
	var ids []string
	for _, item := range preparation.Container.Items() {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestPrepareWaitsForEveryMeasure(t *testing.T) {
	var mu sync.Mutex
	var settledAt []time.Time
	random := rand.New(rand.NewSource(42))

	var instruments []models.Instrument
	for i := 0; i < 12; i++ {
		instruments = append(instruments, &delayedInstrument{
			identifier: fmt.Sprintf("m-%d", i),
			delay:      time.Duration(random.Intn(40)) * time.Millisecond,
			fail:       i%4 == 0,
			mu:         &mu,
			settledAt:  &settledAt,
		})
	}
	controller, err := NewController(buildSession(instruments...), Dependencies{Log: zap.NewNop()})
	assert.NoError(t, err)

	preparation, err := controller.Prepare(context.Background())
	returnedAt := time.Now()

	assert.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, settledAt, 12, "every branch settles before Prepare returns")
	for _, settled := range settledAt {
		assert.False(t, returnedAt.Before(settled))
	}
	assert.Len(t, preparation.Container.Items(), 9)
}

func TestPreparePartialFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("Some failures give a degraded container", func(t *testing.T) {
		controller, _ := NewController(buildSession(
			&delayedInstrument{identifier: "a"},
			&delayedInstrument{identifier: "b", fail: true},
			&delayedInstrument{identifier: "c"},
		), Dependencies{})

		preparation, err := controller.Prepare(ctx)

		assert.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, itemIDs(preparation))
		assert.True(t, errors.Is(preparation.Warning, exceptions.ErrSessionCreatedWithMissingTasks))
		assert.Len(t, preparation.Failures, 1)
		assert.Equal(t, "b", preparation.Failures[0].MeasureID)
		assert.Equal(t, models.MeasureStatusFailed, controller.session.Measures[1].Status())
	})

	t.Run("All failures produce no container", func(t *testing.T) {
		controller, _ := NewController(buildSession(
			&delayedInstrument{identifier: "a", fail: true},
			&delayedInstrument{identifier: "b", fail: true},
		), Dependencies{})

		preparation, err := controller.Prepare(ctx)

		assert.Nil(t, preparation)
		assert.True(t, errors.Is(err, exceptions.ErrSessionMissingTask))
		assert.False(t, errors.Is(err, exceptions.ErrSessionCreatedWithMissingTasks))
	})

	t.Run("No failures report no warning", func(t *testing.T) {
		controller, _ := NewController(buildSession(&delayedInstrument{identifier: "a"}), Dependencies{})

		preparation, err := controller.Prepare(ctx)

		assert.NoError(t, err)
		assert.Nil(t, preparation.Warning)
		assert.Nil(t, preparation.Submission, "no patient or server means no submission task")
	})
}

func TestPrepareOrdering(t *testing.T) {
	ctx := context.Background()
	server := &models.Server{Name: "FHIR", BaseURL: "https://fhir.example.org"}
	patient := &fhir_dto.Patient{ID: "p-1"}

	t.Run("Submission is appended before reversal and verification leads", func(t *testing.T) {
		session := buildSession(
			&delayedInstrument{identifier: "a", delay: 20 * time.Millisecond},
			&delayedInstrument{identifier: "b"},
			&delayedInstrument{identifier: "c", delay: 5 * time.Millisecond},
		)
		session.Patient = patient
		session.Server = server
		session.VerifyUser = true
		controller, _ := NewController(session, Dependencies{})

		preparation, err := controller.Prepare(ctx)

		assert.NoError(t, err)
		assert.Equal(t, []string{VerificationTaskID, submission.TaskID, "c", "b", "a"}, itemIDs(preparation))
		assert.Equal(t, navigation.ItemKindVerification, preparation.Container.Items()[0].Kind)
		assert.NotNil(t, preparation.Submission)
		assert.Len(t, preparation.Tasks, 5)
	})

	t.Run("Patient without server gets no submission task", func(t *testing.T) {
		session := buildSession(&delayedInstrument{identifier: "a"}, &delayedInstrument{identifier: "b"})
		session.Patient = patient
		controller, _ := NewController(session, Dependencies{})

		preparation, _ := controller.Prepare(ctx)

		assert.Equal(t, []string{"b", "a"}, itemIDs(preparation))
	})

	t.Run("Compose reverses and prepends", func(t *testing.T) {
		head := 0
		assert.Equal(t, []int{0, 3, 2, 1}, Compose([]int{1, 2, 3}, &head))
		assert.Equal(t, []int{3, 2, 1}, Compose([]int{1, 2, 3}, nil))
		assert.Equal(t, []int{0}, Compose(nil, &head))
	})
}

func TestNewControllerValidation(t *testing.T) {
	_, err := NewController(&models.Session{ID: "s-1"}, Dependencies{})
	assert.True(t, errors.Is(err, exceptions.ErrSessionMissingTask))

	_, err = NewController(buildSession(&delayedInstrument{identifier: "a"}, &delayedInstrument{identifier: "a"}), Dependencies{})
	assert.True(t, errors.Is(err, exceptions.ErrMalformedInstrument))

	for _, reserved := range []string{VerificationTaskID, submission.TaskID} {
		t.Run("Reserved identifier "+reserved, func(t *testing.T) {
			session := buildSession(&delayedInstrument{identifier: "phq-9"}, &delayedInstrument{identifier: reserved})
			session.VerifyUser = true

			controller, err := NewController(session, Dependencies{})

			assert.Nil(t, controller)
			assert.True(t, errors.Is(err, exceptions.ErrMalformedInstrument))
		})
	}
}

func TestPrepareHonoursCancellation(t *testing.T) {
	controller, _ := NewController(buildSession(&delayedInstrument{identifier: "slow", delay: 300 * time.Millisecond}), Dependencies{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	started := time.Now()
	preparation, err := controller.Prepare(ctx)

	assert.Nil(t, preparation)
	assert.Error(t, err)
	assert.Less(t, time.Since(started), 250*time.Millisecond)
}
