package janitor

import (
	"context"
	"smartmarkers-service/internal/app/config"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/utils"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultCronSpec = constvars.DEFAULT_SESSION_JANITOR_CRON_SPEC

// SessionEvictor is the part of the session usecase the janitor drives.
type SessionEvictor interface {
	EvictExpiredSessions(ctx context.Context) (int, error)
}

// Worker periodically dismisses sessions left idle past their TTL.
// Sessions live in process memory, so every instance sweeps its own.
type Worker struct {
	log     *zap.Logger
	cfg     *config.InternalConfig
	evictor SessionEvictor
	cron    *cron.Cron
	runCtx  context.Context
	cancel  context.CancelFunc
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, evictor SessionEvictor) *Worker {
	return &Worker{log: log, cfg: cfg, evictor: evictor}
}

// Start schedules the sweep on the configured cron spec.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	spec := w.cfg.Session.JanitorCronSpec
	if spec == "" {
		spec = defaultCronSpec
	}
	_, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("janitor.worker: failed to schedule with provided cron spec; falling back to "+defaultCronSpec,
			zap.String("spec", spec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc(defaultCronSpec, func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop cancels an in-flight sweep and waits for it to return.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	requestID := utils.GenerateRequestID()
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, requestID)
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	_ = utils.LogOperation(w.log, "janitor.evict_expired_sessions", requestID, func() error {
		evicted, err := w.evictor.EvictExpiredSessions(ctx)
		if err != nil {
			return err
		}
		if evicted > 0 {
			w.log.Info("janitor.worker: evicted idle sessions",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int(constvars.LoggingCountKey, evicted),
			)
		}
		return nil
	})
}
