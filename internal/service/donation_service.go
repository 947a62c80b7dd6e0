package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DonationServiceImpl implements ports.DonationService.
type DonationServiceImpl struct {
	donationRepo ports.DonationRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewDonationService creates a new DonationServiceImpl.
func NewDonationService(donationRepo ports.DonationRepository, log zerolog.Logger) *DonationServiceImpl {
	return &DonationServiceImpl{donationRepo: donationRepo, log: log, now: time.Now}
}

// Create records a PENDING donation when a payment attempt begins.
func (s *DonationServiceImpl) Create(ctx context.Context, req ports.CreateDonationRequest) (*domain.Donation, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.Category.IsValid() {
		return nil, apperror.ErrInvalidCategory(string(req.Category))
	}
	ref := strings.TrimSpace(req.ExternalPaymentReference)
	if ref == "" {
		return nil, apperror.Validation("external_payment_reference is required")
	}

	now := s.now().UTC()
	donation := &domain.Donation{
		ID:                       uuid.New(),
		Amount:                   req.Amount,
		Category:                 req.Category,
		ExternalPaymentReference: ref,
		Status:                   domain.DonationStatusPending,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := s.donationRepo.Create(ctx, donation); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return nil, apperror.ErrDuplicateReference()
		}
		return nil, apperror.InternalError(fmt.Errorf("create donation: %w", err))
	}

	s.log.Info().
		Str("donation_id", donation.ID.String()).
		Str("category", string(donation.Category)).
		Int64("amount", donation.Amount).
		Msg("donation created")
	return donation, nil
}

// Get returns one donation.
func (s *DonationServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get donation: %w", err))
	}
	if donation == nil {
		return nil, apperror.ErrNotFound("donation")
	}
	return donation, nil
}

// ListNeedingReconciliation returns refunded donations whose funds were
// already disbursed.
func (s *DonationServiceImpl) ListNeedingReconciliation(ctx context.Context, limit, offset int) ([]domain.Donation, int64, error) {
	donations, total, err := s.donationRepo.ListNeedingReconciliation(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list reconciliation queue: %w", err))
	}
	return donations, total, nil
}

// ListUndistributed returns SUCCEEDED donations whose distribution has not
// started olderThan after they succeeded. These need a manual distribute.
func (s *DonationServiceImpl) ListUndistributed(ctx context.Context, olderThan time.Duration, limit, offset int) ([]domain.Donation, int64, error) {
	if olderThan < 0 {
		return nil, 0, apperror.ErrInvalidFilter("older_than must not be negative")
	}
	donations, total, err := s.donationRepo.ListUndistributed(ctx, s.now().UTC().Add(-olderThan), limit, offset)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list undistributed donations: %w", err))
	}
	return donations, total, nil
}
