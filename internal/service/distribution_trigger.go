package service

import (
	"context"
	"errors"
	"sync"

	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"
	"aid-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SyncTrigger runs the distribution engine inline, inside the webhook request.
type SyncTrigger struct {
	engine ports.DistributionService
	log    zerolog.Logger
}

// NewSyncTrigger creates an inline trigger.
func NewSyncTrigger(engine ports.DistributionService, log zerolog.Logger) *SyncTrigger {
	return &SyncTrigger{engine: engine, log: logger.Component(log, "trigger")}
}

// OnDonationSucceeded implements ports.DistributionTrigger. The donation is
// already committed as SUCCEEDED, so the run is detached from the webhook
// request: a provider hanging up must not leave it undistributed.
func (t *SyncTrigger) OnDonationSucceeded(ctx context.Context, donationID uuid.UUID) {
	runDistribution(context.WithoutCancel(ctx), t.engine, donationID, t.log)
}

// QueueTrigger hands donation ids to a bounded queue drained by one worker,
// so distributions run one at a time in arrival order.
type QueueTrigger struct {
	engine ports.DistributionService
	queue  chan uuid.UUID
	log    zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueueTrigger creates a queued trigger. Call Start before use.
func NewQueueTrigger(engine ports.DistributionService, size int, log zerolog.Logger) *QueueTrigger {
	if size < 1 {
		size = 1
	}
	return &QueueTrigger{
		engine: engine,
		queue:  make(chan uuid.UUID, size),
		log:    logger.Component(log, "trigger"),
	}
}

// Start launches the worker. It drains the queue until Stop.
func (t *QueueTrigger) Start(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for id := range t.queue {
			runDistribution(context.WithoutCancel(ctx), t.engine, id, t.log)
		}
	}()
}

// OnDonationSucceeded implements ports.DistributionTrigger. It blocks while
// the queue is full, until ctx is done.
func (t *QueueTrigger) OnDonationSucceeded(ctx context.Context, donationID uuid.UUID) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.log.Error().Str("donation_id", donationID.String()).Msg("trigger stopped, distribution must be started manually")
		return
	}
	select {
	case t.queue <- donationID:
	case <-ctx.Done():
		t.log.Error().Err(ctx.Err()).Str("donation_id", donationID.String()).
			Msg("distribution queue full, distribution must be started manually")
	}
}

// Stop closes the queue and waits for queued distributions to finish.
func (t *QueueTrigger) Stop() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

func runDistribution(ctx context.Context, engine ports.DistributionService, donationID uuid.UUID, log zerolog.Logger) {
	txns, err := engine.Distribute(ctx, donationID)
	if err != nil {
		var appErr *apperror.AppError
		event := log.Error()
		if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
			event = log.Warn()
		}
		event.Err(err).Str("donation_id", donationID.String()).Msg("distribution did not run")
		return
	}
	log.Debug().Str("donation_id", donationID.String()).Int("transactions", len(txns)).Msg("distribution finished")
}
