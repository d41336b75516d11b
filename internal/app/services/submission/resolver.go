package submission

import (
	"fmt"
	"strings"

	"smartmarkers-service/internal/app/models"
)

// skeleton is the static shape of every submission step. Review and
// consent content is filled in by Resolve from live session state.
var skeleton = map[StepID]models.Step{
	StepReview: {
		ID:    string(StepReview),
		Kind:  models.StepKindReview,
		Title: "Review results",
		Text:  "Select the results you want to submit.",
	},
	StepConsentNotice: {
		ID:     string(StepConsentNotice),
		Kind:   models.StepKindConsent,
		Title:  "Consent to submit",
		Format: models.AnswerFormatSingleChoice,
		Choices: []models.Choice{
			{Value: ConsentAccepted, Label: "Submit"},
			{Value: ConsentDeclined, Label: "Do not submit"},
		},
	},
	StepAborted: {
		ID:       string(StepAborted),
		Kind:     models.StepKindCompletion,
		Title:    "Submission cancelled",
		Text:     "Your results were not sent.",
		Terminal: true,
	},
	StepInProgress: {
		ID:    string(StepInProgress),
		Kind:  models.StepKindProgress,
		Title: "Submitting",
		Text:  "Sending your results.",
	},
	StepErrorNotice: {
		ID:    string(StepErrorNotice),
		Kind:  models.StepKindInstruction,
		Title: "Submission failed",
		Text:  "Some results could not be sent. Review your selection and try again.",
	},
	StepCompletion: {
		ID:       string(StepCompletion),
		Kind:     models.StepKindCompletion,
		Title:    "Submission complete",
		Text:     "Your results were sent.",
		Terminal: true,
	},
}

// Descriptor is the submission task as announced before any step is
// resolved.
func Descriptor() *models.Task {
	task := &models.Task{
		ID:    TaskID,
		Title: "Submit results",
		Steps: make([]models.Step, 0, len(stepOrder)),
	}
	for _, id := range stepOrder {
		task.Steps = append(task.Steps, skeleton[id])
	}
	return task
}

// Resolve builds the content of step against the session as it is now.
func Resolve(step StepID, session *models.Session, submissionErrors []error) models.Step {
	resolved := skeleton[step]
	resolved.Choices = append([]models.Choice(nil), resolved.Choices...)

	switch step {
	case StepReview:
		resolved.FormItems = reviewItems(session.Measures)
	case StepConsentNotice:
		resolved.Text = consentText(session.Server)
	case StepErrorNotice:
		if len(submissionErrors) > 0 {
			messages := make([]string, 0, len(submissionErrors))
			for _, err := range submissionErrors {
				messages = append(messages, err.Error())
			}
			resolved.Text = resolved.Text + "\n" + strings.Join(messages, "\n")
		}
	}
	return resolved
}

func reviewItems(measures []*models.Measure) []models.FormItem {
	items := make([]models.FormItem, 0, len(measures))
	for _, measure := range measures {
		item := models.FormItem{
			ID:     measure.Identifier(),
			Title:  measure.Title(),
			Format: models.AnswerFormatMultiChoice,
		}
		for _, bundle := range measure.Reports.All() {
			item.Choices = append(item.Choices, models.Choice{
				Value:  bundle.TaskRunID,
				Label:  resourceCountLabel(bundle.ResourceCount()),
				Detail: fmt.Sprintf("%s | %s | %s", bundle.Summary(), bundle.Status(), bundle.TaskRunID),
			})
		}
		items = append(items, item)
	}
	return items
}

func resourceCountLabel(count int) string {
	if count == 1 {
		return "1 resource"
	}
	return fmt.Sprintf("%d resources", count)
}

func consentText(server *models.Server) string {
	if server == nil {
		return "No server is configured, results cannot be submitted."
	}
	return fmt.Sprintf("Your selected results will be sent to %s (%s). Do you agree to submit them?", server.DisplayName(), server.Host())
}
