package session

import (
	"context"
	"errors"

	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/app/services/navigation"
	"smartmarkers-service/internal/app/services/submission"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const VerificationTaskID = "verification"

// Dependencies are handed to a controller at construction; nothing here
// is process-wide.
type Dependencies struct {
	Log            *zap.Logger
	Recorder       models.SubmissionRecorder
	OnSessionEnded func()
}

type Failure struct {
	MeasureID string
	Err       error
}

// Preparation is the outcome of a successful Prepare. Warning carries
// sessionCreatedWithMissingTasks when some measures could not be prepared.
type Preparation struct {
	Container  *navigation.Container
	Submission *submission.Flow
	Tasks      []*models.Task
	Failures   []Failure
	Warning    error
}

type Controller struct {
	log      *zap.Logger
	session  *models.Session
	recorder models.SubmissionRecorder
	onEnded  func()
}

// NewController rejects sessions that could never be presented: no
// measures, two measures for the same instrument, or an instrument that
// takes the identifier of a built-in task.
func NewController(session *models.Session, deps Dependencies) (*Controller, error) {
	if len(session.Measures) == 0 {
		return nil, exceptions.ErrSessionMissingTaskError(nil)
	}
	seen := make(map[string]bool, len(session.Measures))
	for _, measure := range session.Measures {
		if err := models.ValidateMetadata(measure.Instrument().Metadata()); err != nil {
			return nil, err
		}
		if measure.Identifier() == VerificationTaskID || measure.Identifier() == submission.TaskID {
			return nil, exceptions.ErrMalformedInstrumentError("reserved instrument identifier " + measure.Identifier())
		}
		if seen[measure.Identifier()] {
			return nil, exceptions.ErrMalformedInstrumentError("duplicate instrument identifier " + measure.Identifier())
		}
		seen[measure.Identifier()] = true
	}

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		log:      log,
		session:  session,
		recorder: deps.Recorder,
		onEnded:  deps.OnSessionEnded,
	}, nil
}

// Prepare asks every measure for its task concurrently and waits for all
// of them to settle before composing the container. A failing measure
// never cancels its siblings. Cancelling ctx abandons the wait.
func (c *Controller) Prepare(ctx context.Context) (*Preparation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.log.Info("session.Controller.Prepare called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, c.session.ID),
		zap.Int(constvars.LoggingCountKey, len(c.session.Measures)),
	)

	measures := c.session.Measures
	tasks := make([]*models.Task, len(measures))
	errs := make([]error, len(measures))

	var group errgroup.Group
	for i, measure := range measures {
		group.Go(func() error {
			tasks[i], errs[i] = measure.PrepareTask(ctx)
			return nil
		})
	}

	settled := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(settled)
	}()

	select {
	case <-settled:
	case <-ctx.Done():
		c.log.Warn("session.Controller.Prepare cancelled before all measures settled",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, c.session.ID),
			zap.Error(ctx.Err()),
		)
		return nil, exceptions.ErrServerDeadlineExceeded(ctx.Err())
	}

	var items []navigation.Item
	var failures []Failure
	for i, measure := range measures {
		if errs[i] != nil {
			failures = append(failures, Failure{MeasureID: measure.Identifier(), Err: errs[i]})
			c.log.Warn("session.Controller.Prepare measure failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingMeasureIDKey, measure.Identifier()),
				zap.Error(errs[i]),
			)
			continue
		}
		items = append(items, navigation.Item{
			ID:      tasks[i].ID,
			Kind:    navigation.ItemKindMeasure,
			Title:   measure.Title(),
			Task:    tasks[i],
			Measure: measure,
		})
	}

	if len(items) == 0 {
		joined := make([]error, 0, len(failures))
		for _, failure := range failures {
			joined = append(joined, failure.Err)
		}
		c.log.Error("session.Controller.Prepare no measure could be prepared",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, c.session.ID),
		)
		return nil, exceptions.ErrSessionMissingTaskError(errors.Join(joined...))
	}

	preparation := &Preparation{Failures: failures}

	if c.session.CanSubmit() {
		preparation.Submission = submission.NewFlow(c.log, c.session, c.recorder)
		descriptor := submission.Descriptor()
		items = append(items, navigation.Item{
			ID:    descriptor.ID,
			Kind:  navigation.ItemKindSubmission,
			Title: descriptor.Title,
			Task:  descriptor,
		})
	}

	items = Compose(items, c.verificationItem())

	container, err := navigation.NewContainer(c.log, items, navigation.Options{
		VerifyUser:     c.session.VerifyUser,
		OnSessionEnded: c.onEnded,
	})
	if err != nil {
		return nil, err
	}
	preparation.Container = container
	for _, item := range items {
		preparation.Tasks = append(preparation.Tasks, item.Task)
	}

	if len(failures) > 0 {
		preparation.Warning = exceptions.ErrSessionCreatedWithMissingTasksError(nil)
	}

	c.log.Info("session.Controller.Prepare succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, c.session.ID),
		zap.Int(constvars.LoggingCountKey, len(items)),
		zap.Int(constvars.LoggingFailedCountKey, len(failures)),
	)
	return preparation, nil
}

func (c *Controller) verificationItem() *navigation.Item {
	if !c.session.VerifyUser {
		return nil
	}
	task := VerificationTask()
	return &navigation.Item{
		ID:    task.ID,
		Kind:  navigation.ItemKindVerification,
		Title: task.Title,
		Task:  task,
	}
}

func VerificationTask() *models.Task {
	return &models.Task{
		ID:    VerificationTaskID,
		Title: "Verify your identity",
		Steps: []models.Step{{
			ID:     "passcode",
			Kind:   models.StepKindVerification,
			Title:  "Enter your passcode",
			Format: models.AnswerFormatText,
		}},
	}
}

// Compose presents prepared in reverse order with head, when given, in
// front of everything.
func Compose[T any](prepared []T, head *T) []T {
	composed := make([]T, 0, len(prepared)+1)
	if head != nil {
		composed = append(composed, *head)
	}
	for i := len(prepared) - 1; i >= 0; i-- {
		composed = append(composed, prepared[i])
	}
	return composed
}
