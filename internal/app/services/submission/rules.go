package submission

import "smartmarkers-service/internal/app/models"

type StepID string

const (
	StepReview        StepID = "review"
	StepConsentNotice StepID = "consent-notice"
	StepAborted       StepID = "aborted"
	StepInProgress    StepID = "in-progress"
	StepErrorNotice   StepID = "error-notice"
	StepCompletion    StepID = "completion"
)

const (
	ConsentAccepted = "accept"
	ConsentDeclined = "decline"
)

var stepOrder = []StepID{
	StepReview,
	StepConsentNotice,
	StepAborted,
	StepInProgress,
	StepErrorNotice,
	StepCompletion,
}

// Results are the step answers accumulated so far, keyed by step.
type Results map[StepID]models.StepResult

func IsTerminal(step StepID) bool {
	return step == StepAborted || step == StepCompletion
}

func consentDeclined(results Results) bool {
	result, ok := results[StepConsentNotice]
	if !ok {
		return false
	}
	choice, _ := result.FirstChoice()
	return choice == ConsentDeclined
}

// submissionMayHaveFailed treats a missing in-progress result as a
// possible failure.
func submissionMayHaveFailed(results Results) bool {
	result, ok := results[StepInProgress]
	if !ok || result.Boolean == nil {
		return true
	}
	return *result.Boolean
}

// ShouldSkip decides from the accumulated results alone whether step is
// bypassed. It never mutates results.
func ShouldSkip(step StepID, results Results) bool {
	switch step {
	case StepAborted:
		return !consentDeclined(results)
	case StepInProgress, StepCompletion:
		return consentDeclined(results)
	case StepErrorNotice:
		return !(submissionMayHaveFailed(results) || consentDeclined(results))
	}
	return false
}

// NextStep resolves where the flow goes after current. From the error
// notice it jumps back to review while the last submission may have
// failed. It reports false once a terminal step is reached.
func NextStep(current StepID, results Results) (StepID, bool) {
	if IsTerminal(current) {
		return "", false
	}
	if current == StepErrorNotice && submissionMayHaveFailed(results) {
		return StepReview, true
	}

	index := stepIndex(current)
	if index < 0 {
		return "", false
	}
	for _, candidate := range stepOrder[index+1:] {
		if !ShouldSkip(candidate, results) {
			return candidate, true
		}
	}
	return "", false
}

func stepIndex(step StepID) int {
	for i, candidate := range stepOrder {
		if candidate == step {
			return i
		}
	}
	return -1
}
