package submission

import (
	"context"
	"fmt"
	"sync"

	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const TaskID = "submission"

// Flow walks a session through review, consent and submission of its
// reports. Step content is resolved on every read so it reflects the
// current reports and server.
type Flow struct {
	mu       sync.Mutex
	log      *zap.Logger
	session  *models.Session
	recorder models.SubmissionRecorder

	current          StepID
	history          []StepID
	results          Results
	submissionErrors []error
}

func NewFlow(log *zap.Logger, session *models.Session, recorder models.SubmissionRecorder) *Flow {
	return &Flow{
		log:      log,
		session:  session,
		recorder: recorder,
		current:  StepReview,
		results:  make(Results),
	}
}

func (f *Flow) CurrentID() StepID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Flow) Current() models.Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Resolve(f.current, f.session, f.submissionErrors)
}

func (f *Flow) Finished() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return IsTerminal(f.current)
}

func (f *Flow) Results() Results {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := make(Results, len(f.results))
	for id, result := range f.results {
		results[id] = result
	}
	return results
}

func (f *Flow) SubmissionErrors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.submissionErrors...)
}

// Answer records the result of the current step and moves on. Entering the
// in-progress step submits the selected bundles and only returns after
// every measure's submission has settled.
func (f *Flow) Answer(ctx context.Context, result models.StepResult) (models.Step, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	f.log.Info("submission.Flow.Answer called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, f.session.ID),
		zap.String(constvars.LoggingStepIDKey, result.StepID),
	)

	f.mu.Lock()
	current := f.current
	if StepID(result.StepID) != current || IsTerminal(current) || current == StepInProgress {
		f.mu.Unlock()
		return models.Step{}, exceptions.ErrStepNotAnswerableError(result.StepID)
	}
	if current == StepConsentNotice {
		choice, _ := result.FirstChoice()
		if choice != ConsentAccepted && choice != ConsentDeclined {
			f.mu.Unlock()
			return models.Step{}, exceptions.ErrInputValidation(fmt.Errorf("consent choice must be %s or %s", ConsentAccepted, ConsentDeclined))
		}
	}
	if current != StepErrorNotice {
		f.results[current] = result
	}

	next, ok := f.moveLocked()
	for ok && next == StepInProgress {
		selection := f.results[StepReview].Choices
		consentGiven := !consentDeclined(f.results)
		f.mu.Unlock()

		hadError, errs := f.submit(ctx, selection, consentGiven)

		f.mu.Lock()
		f.results[StepInProgress] = models.StepResult{StepID: string(StepInProgress), Boolean: &hadError}
		f.submissionErrors = errs
		next, ok = f.moveLocked()
	}
	step := Resolve(f.current, f.session, f.submissionErrors)
	f.mu.Unlock()

	f.log.Info("submission.Flow.Answer succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, f.session.ID),
		zap.String(constvars.LoggingStepIDKey, step.ID),
	)
	return step, nil
}

// Back returns to the previously shown step. It reports false when there
// is nothing to go back to inside the flow.
func (f *Flow) Back() (models.Step, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if IsTerminal(f.current) || f.current == StepInProgress {
		return models.Step{}, false, exceptions.ErrStepNotAnswerableError(string(f.current))
	}
	if len(f.history) == 0 {
		return Resolve(f.current, f.session, f.submissionErrors), false, nil
	}
	f.current = f.history[len(f.history)-1]
	f.history = f.history[:len(f.history)-1]
	return Resolve(f.current, f.session, f.submissionErrors), true, nil
}

// moveLocked applies NextStep. A jump back to review starts a new attempt,
// so the answers of the previous attempt are dropped.
func (f *Flow) moveLocked() (StepID, bool) {
	next, ok := NextStep(f.current, f.results)
	if !ok {
		return f.current, false
	}

	switch {
	case next == StepReview:
		delete(f.results, StepReview)
		delete(f.results, StepConsentNotice)
		delete(f.results, StepInProgress)
		f.history = nil
	case f.current != StepInProgress:
		f.history = append(f.history, f.current)
	}
	f.current = next
	return next, true
}

func (f *Flow) submit(ctx context.Context, selection []string, consentGiven bool) (bool, []error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	selected := make(map[string]bool, len(selection))
	for _, taskRunID := range selection {
		selected[taskRunID] = true
	}

	var targets []*models.Measure
	for _, measure := range f.session.Measures {
		flagged := false
		for _, bundle := range measure.Reports.All() {
			if selected[bundle.TaskRunID] && bundle.MarkShouldSubmit() {
				flagged = true
			}
		}
		if flagged {
			targets = append(targets, measure)
		}
	}

	f.log.Info("submission.Flow.submit dispatching",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, f.session.ID),
		zap.Int(constvars.LoggingCountKey, len(targets)),
	)

	branchErrors := make([][]error, len(targets))
	var group errgroup.Group
	for i, measure := range targets {
		group.Go(func() error {
			ok, errs := measure.Reports.Submit(ctx, f.session.Server, consentGiven, f.session.Patient, models.SubmitOptions{Recorder: f.recorder})
			if !ok {
				branchErrors[i] = errs
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		f.log.Warn("submission.Flow.submit join cancelled",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, f.session.ID),
			zap.Error(ctx.Err()),
		)
		return true, []error{exceptions.ErrServerDeadlineExceeded(ctx.Err())}
	}

	var errs []error
	for _, branch := range branchErrors {
		errs = append(errs, branch...)
	}
	if len(errs) > 0 {
		f.log.Warn("submission.Flow.submit finished with errors",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, f.session.ID),
			zap.Int(constvars.LoggingFailedCountKey, len(errs)),
		)
	}
	return len(errs) > 0, errs
}
