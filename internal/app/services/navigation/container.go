package navigation

import (
	"context"
	"sync"

	"smartmarkers-service/internal/app/contracts"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

type ItemKind string

const (
	ItemKindVerification ItemKind = "verification"
	ItemKindMeasure      ItemKind = "measure"
	ItemKindSubmission   ItemKind = "submission"
)

const VerificationPrompt = "Please confirm your identity to leave this session"

type Item struct {
	ID      string
	Kind    ItemKind
	Title   string
	Task    *models.Task
	Measure *models.Measure
}

type PopOutcome string

const (
	PopOutcomeMovedBack PopOutcome = "moved_back"
	PopOutcomeDismissed PopOutcome = "dismissed"
	PopOutcomeRemained  PopOutcome = "remained"
)

type Options struct {
	VerifyUser     bool
	OnSessionEnded func()
}

// Container presents session items one after another. Leaving from the
// first item dismisses the whole container; when user verification is on,
// that exit must pass a verification challenge first.
type Container struct {
	mu        sync.Mutex
	log       *zap.Logger
	items     []Item
	position  int
	dismissed bool

	verifyUser     bool
	onSessionEnded func()
	endOnce        sync.Once
}

func NewContainer(log *zap.Logger, items []Item, options Options) (*Container, error) {
	if len(items) == 0 {
		return nil, exceptions.ErrSessionMissingTaskError(nil)
	}
	copied := make([]Item, len(items))
	copy(copied, items)
	return &Container{
		log:            log,
		items:          copied,
		verifyUser:     options.VerifyUser,
		onSessionEnded: options.OnSessionEnded,
	}, nil
}

func (c *Container) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Container) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *Container) Dismissed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dismissed
}

func (c *Container) Current() (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dismissed {
		return Item{}, false
	}
	return c.items[c.position], true
}

func (c *Container) Item(id string) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Advance moves to the next item. Advancing past the last item finishes
// the session and reports false.
func (c *Container) Advance(ctx context.Context) (Item, bool, error) {
	c.mu.Lock()
	if c.dismissed {
		c.mu.Unlock()
		return Item{}, false, exceptions.ErrSessionDismissedError()
	}
	if c.position < len(c.items)-1 {
		c.position++
		item := c.items[c.position]
		c.mu.Unlock()
		return item, true, nil
	}
	c.dismissed = true
	c.mu.Unlock()

	c.log.Info("navigation.Container.Advance reached the last item",
		zap.String(constvars.LoggingRequestIDKey, requestIDFrom(ctx)),
	)
	c.fireSessionEnded()
	return Item{}, false, nil
}

// Pop goes back one item. From the first item it leaves the session,
// asking the challenge first when user verification is enabled; a failed
// challenge keeps the container presented.
func (c *Container) Pop(ctx context.Context, challenge contracts.VerificationChallenge) (PopOutcome, error) {
	requestID := requestIDFrom(ctx)

	c.mu.Lock()
	if c.dismissed {
		c.mu.Unlock()
		return PopOutcomeDismissed, exceptions.ErrSessionDismissedError()
	}
	if c.position > 0 {
		c.position--
		c.mu.Unlock()
		return PopOutcomeMovedBack, nil
	}
	verifyUser := c.verifyUser
	c.mu.Unlock()

	if verifyUser {
		if challenge == nil {
			return PopOutcomeRemained, exceptions.ErrVerificationFailedError(nil)
		}
		verified, err := challenge.VerifyUser(ctx, VerificationPrompt)
		if err != nil || !verified {
			c.log.Warn("navigation.Container.Pop verification failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return PopOutcomeRemained, exceptions.ErrVerificationFailedError(err)
		}
	}

	c.mu.Lock()
	if c.dismissed {
		c.mu.Unlock()
		return PopOutcomeDismissed, exceptions.ErrSessionDismissedError()
	}
	// The cursor may have moved while the challenge ran unlocked.
	if c.position != 0 {
		c.mu.Unlock()
		c.log.Info("navigation.Container.Pop skipped dismissal, container moved during verification",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return PopOutcomeRemained, nil
	}
	c.dismissed = true
	c.mu.Unlock()

	c.log.Info("navigation.Container.Pop dismissed the session",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	c.fireSessionEnded()
	return PopOutcomeDismissed, nil
}

// Dismiss ends the session without a challenge, for eviction and
// explicit termination.
func (c *Container) Dismiss() {
	c.mu.Lock()
	c.dismissed = true
	c.mu.Unlock()
	c.fireSessionEnded()
}

func (c *Container) fireSessionEnded() {
	c.endOnce.Do(func() {
		if c.onSessionEnded != nil {
			c.onSessionEnded()
		}
	})
}

func requestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	return requestID
}
