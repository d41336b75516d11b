package models

import (
	"smartmarkers-service/internal/pkg/exceptions"
)

func ValidateMetadata(metadata InstrumentMetadata) error {
	switch {
	case metadata.Identifier == "":
		return exceptions.ErrMalformedInstrumentError("missing identifier")
	case metadata.Title == "":
		return exceptions.ErrMalformedInstrumentError("missing title for " + metadata.Identifier)
	case metadata.Kind == "":
		return exceptions.ErrMalformedInstrumentError("missing kind for " + metadata.Identifier)
	}
	return nil
}

// ValidateTask rejects tasks that cannot be presented: no steps, empty
// step identifiers or step identifiers used twice.
func ValidateTask(task *Task) error {
	if task == nil {
		return exceptions.ErrMalformedInstrumentError("nil task")
	}
	if task.ID == "" {
		return exceptions.ErrMalformedInstrumentError("task without identifier")
	}
	if len(task.Steps) == 0 {
		return exceptions.ErrMalformedInstrumentError("task " + task.ID + " has no steps")
	}

	seen := make(map[string]bool, len(task.Steps))
	for _, step := range task.Steps {
		if step.ID == "" {
			return exceptions.ErrMalformedInstrumentError("task " + task.ID + " has a step without identifier")
		}
		if seen[step.ID] {
			return exceptions.ErrDuplicateStepIdentifierError(step.ID, task.ID)
		}
		seen[step.ID] = true
	}
	return nil
}
