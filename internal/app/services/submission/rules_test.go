package submission

import (
	"testing"

	"smartmarkers-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func boolPtr(v bool) *bool { return &v }

func consent(choice string) models.StepResult {
	return models.StepResult{StepID: string(StepConsentNotice), Choices: []string{choice}}
}

func inProgress(hadError bool) models.StepResult {
	return models.StepResult{StepID: string(StepInProgress), Boolean: boolPtr(hadError)}
}

func TestShouldSkip(t *testing.T) {
	t.Run("Consent decline routes around submission and completion", func(t *testing.T) {
		results := Results{StepConsentNotice: consent(ConsentDeclined)}

		assert.False(t, ShouldSkip(StepAborted, results))
		assert.True(t, ShouldSkip(StepInProgress, results))
		assert.True(t, ShouldSkip(StepCompletion, results))
		assert.False(t, ShouldSkip(StepErrorNotice, results))
	})

	t.Run("Accepted consent skips the aborted step", func(t *testing.T) {
		results := Results{StepConsentNotice: consent(ConsentAccepted)}

		assert.True(t, ShouldSkip(StepAborted, results))
		assert.False(t, ShouldSkip(StepInProgress, results))
		assert.False(t, ShouldSkip(StepCompletion, results))
	})

	t.Run("Error notice shows for errors and for a missing result", func(t *testing.T) {
		accepted := consent(ConsentAccepted)

		assert.True(t, ShouldSkip(StepErrorNotice, Results{StepConsentNotice: accepted, StepInProgress: inProgress(false)}))
		assert.False(t, ShouldSkip(StepErrorNotice, Results{StepConsentNotice: accepted, StepInProgress: inProgress(true)}))
		assert.False(t, ShouldSkip(StepErrorNotice, Results{StepConsentNotice: accepted}))
		assert.False(t, ShouldSkip(StepErrorNotice, Results{StepConsentNotice: accepted, StepInProgress: {StepID: string(StepInProgress)}}))
	})

	t.Run("Repeated evaluation gives the same answer", func(t *testing.T) {
		fixtures := []Results{
			{},
			{StepConsentNotice: consent(ConsentDeclined)},
			{StepConsentNotice: consent(ConsentAccepted), StepInProgress: inProgress(true)},
			{StepConsentNotice: consent(ConsentAccepted), StepInProgress: inProgress(false)},
		}
		for _, results := range fixtures {
			for _, step := range stepOrder {
				first := ShouldSkip(step, results)
				for i := 0; i < 10; i++ {
					assert.Equal(t, first, ShouldSkip(step, results))
				}
			}
			assert.Len(t, results, len(results))
		}
	})
}

func TestNextStep(t *testing.T) {
	t.Run("Declined consent ends at aborted", func(t *testing.T) {
		results := Results{StepConsentNotice: consent(ConsentDeclined)}

		next, ok := NextStep(StepConsentNotice, results)
		assert.True(t, ok)
		assert.Equal(t, StepAborted, next)

		_, ok = NextStep(StepAborted, results)
		assert.False(t, ok, "aborted is terminal")
	})

	t.Run("Accepted consent goes to in progress", func(t *testing.T) {
		next, ok := NextStep(StepConsentNotice, Results{StepConsentNotice: consent(ConsentAccepted)})
		assert.True(t, ok)
		assert.Equal(t, StepInProgress, next)
	})

	t.Run("Clean submission completes", func(t *testing.T) {
		results := Results{StepConsentNotice: consent(ConsentAccepted), StepInProgress: inProgress(false)}

		next, _ := NextStep(StepInProgress, results)
		assert.Equal(t, StepCompletion, next)
		_, ok := NextStep(StepCompletion, results)
		assert.False(t, ok)
	})

	t.Run("Failed submission detours through error notice back to review", func(t *testing.T) {
		results := Results{StepConsentNotice: consent(ConsentAccepted), StepInProgress: inProgress(true)}

		next, _ := NextStep(StepInProgress, results)
		assert.Equal(t, StepErrorNotice, next)
		next, _ = NextStep(StepErrorNotice, results)
		assert.Equal(t, StepReview, next)
	})

	t.Run("Missing submission result jumps back to review", func(t *testing.T) {
		next, ok := NextStep(StepErrorNotice, Results{StepConsentNotice: consent(ConsentAccepted)})
		assert.True(t, ok)
		assert.Equal(t, StepReview, next)
	})

	t.Run("Review always moves to consent", func(t *testing.T) {
		next, _ := NextStep(StepReview, Results{})
		assert.Equal(t, StepConsentNotice, next)
	})
}
