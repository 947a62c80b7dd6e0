package service

import (
	"context"
	"fmt"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"
	"aid-ledger/pkg/logger"

	"github.com/rs/zerolog"
)

// ReconcilerServiceImpl implements ports.ReconcilerService.
type ReconcilerServiceImpl struct {
	donationRepo ports.DonationRepository
	eventRepo    ports.ProcessedEventRepository
	txRepo       ports.TransactionRepository
	transactor   ports.DBTransactor
	cache        ports.EventCache // nil = fast path disabled
	trigger      ports.DistributionTrigger
	cacheTTL     time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

// NewReconcilerService creates a new ReconcilerServiceImpl.
func NewReconcilerService(
	donationRepo ports.DonationRepository,
	eventRepo ports.ProcessedEventRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	cache ports.EventCache,
	trigger ports.DistributionTrigger,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *ReconcilerServiceImpl {
	return &ReconcilerServiceImpl{
		donationRepo: donationRepo,
		eventRepo:    eventRepo,
		txRepo:       txRepo,
		transactor:   transactor,
		cache:        cache,
		trigger:      trigger,
		cacheTTL:     cacheTTL,
		log:          logger.Component(log, "reconciler"),
		now:          time.Now,
	}
}

// HandleEvent applies one provider notification at most once per event id.
//
// Layer 1 is the Redis event cache (best-effort). Layer 2 is the
// processed_events table, written in the same database transaction as the
// donation transition, so two deliveries racing on one id cannot both apply.
func (s *ReconcilerServiceImpl) HandleEvent(ctx context.Context, event domain.PaymentEvent) (domain.EventOutcome, error) {
	if err := event.Validate(); err != nil {
		return "", apperror.ErrMalformedEvent(err.Error())
	}
	log := s.log.With().
		Str("event_id", event.EventID).
		Str("event_type", string(event.Type)).
		Str("external_ref", event.ExternalPaymentReference).
		Logger()

	if s.cache != nil {
		_, seen, err := s.cache.Get(ctx, event.EventID)
		if err != nil {
			log.Warn().Err(err).Msg("redis event cache check failed, falling through to DB")
		} else if seen {
			log.Debug().Msg("event already processed (cache)")
			return domain.OutcomeDuplicate, nil
		}
	}

	record, err := s.apply(ctx, event, log)
	if err != nil {
		return "", err
	}

	if record.Outcome == domain.OutcomeApplied || record.Outcome == domain.OutcomeIgnored {
		if s.cache != nil {
			if err := s.cache.Set(ctx, event.EventID, record.Outcome, s.cacheTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache processed event in redis")
			}
		}
	}

	if record.Outcome == domain.OutcomeApplied && event.Type == domain.PaymentEventSucceeded {
		s.trigger.OnDonationSucceeded(ctx, *record.DonationID)
	}

	log.Info().Str("outcome", string(record.Outcome)).Msg("payment event reconciled")
	return record.Outcome, nil
}

// apply runs the idempotent transition inside one database transaction.
func (s *ReconcilerServiceImpl) apply(ctx context.Context, event domain.PaymentEvent, log zerolog.Logger) (*domain.ProcessedEvent, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	donation, err := s.donationRepo.GetByExternalRefForUpdate(ctx, dbTx, event.ExternalPaymentReference)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock donation: %w", err))
	}
	if donation == nil {
		// Nothing is recorded so a redelivery can apply once the donation exists.
		log.Warn().Msg("payment event for unknown external reference ignored")
		return &domain.ProcessedEvent{EventID: event.EventID, Outcome: domain.OutcomeUnknownReference}, nil
	}
	log = log.With().Str("donation_id", donation.ID.String()).Logger()

	if event.Amount != nil && *event.Amount != donation.Amount {
		log.Warn().Int64("event_amount", *event.Amount).Int64("donation_amount", donation.Amount).
			Msg("event amount differs from donation amount, donation amount governs")
	}

	target, _ := event.Type.TargetStatus()
	donationID := donation.ID
	record := &domain.ProcessedEvent{
		EventID:     event.EventID,
		EventType:   event.Type,
		DonationID:  &donationID,
		Outcome:     domain.OutcomeApplied,
		ProcessedAt: s.now().UTC(),
	}
	switch {
	case donation.Status == target:
		record.Outcome = domain.OutcomeIgnored
		log.Debug().Str("status", string(donation.Status)).Msg("donation already in target status")
	case donation.CanReachLater(target):
		// Not recorded: the provider retries on 409 and the redelivery applies
		// once the earlier event lands.
		log.Warn().Str("from", string(donation.Status)).Str("to", string(target)).Msg("payment event arrived early, asking for redelivery")
		return nil, apperror.ErrEventOutOfOrder(string(donation.Status), string(target))
	case !donation.CanTransitionTo(target):
		record.Outcome = domain.OutcomeIgnored
		log.Warn().Str("from", string(donation.Status)).Str("to", string(target)).Msg("invalid donation transition ignored")
	}

	inserted, err := s.eventRepo.Record(ctx, dbTx, record)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record event: %w", err))
	}
	if !inserted {
		log.Debug().Msg("event already processed (db)")
		return &domain.ProcessedEvent{EventID: event.EventID, DonationID: &donationID, Outcome: domain.OutcomeDuplicate}, nil
	}

	if record.Outcome == domain.OutcomeApplied {
		needsReconciliation := donation.NeedsReconciliation
		if target == domain.DonationStatusRefunded {
			disbursed, err := s.txRepo.CountByDonation(ctx, dbTx, donation.ID)
			if err != nil {
				return nil, apperror.InternalError(fmt.Errorf("count donation transactions: %w", err))
			}
			if disbursed > 0 {
				needsReconciliation = true
				log.Warn().Int64("transactions", disbursed).Msg("refunded donation already disbursed, flagged for manual reconciliation")
			}
		}
		if err := s.donationRepo.UpdateStatus(ctx, dbTx, donation.ID, target, needsReconciliation); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update donation status: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return record, nil
}
