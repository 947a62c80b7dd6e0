package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
	"aid-ledger/pkg/apperror"
	"aid-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DistributionSettings is the policy input of the engine.
type DistributionSettings struct {
	StandardAmounts map[domain.Category]int64 // minor units
	BatchSize       int
	CooldownDays    int
	TransferTimeout time.Duration
}

// ParseStandardAmounts resolves configured labels to canonical categories
// and decimal strings to minor units. Every category must be covered.
func ParseStandardAmounts(raw map[string]string) (map[domain.Category]int64, error) {
	amounts := make(map[domain.Category]int64, len(domain.Categories))
	for label, value := range raw {
		category, err := domain.ParseCategory(label)
		if err != nil {
			return nil, fmt.Errorf("standard amount: %w", err)
		}
		minor, err := domain.ParseAmount(value)
		if err != nil {
			return nil, fmt.Errorf("standard amount for %s: %w", category, err)
		}
		if prev, ok := amounts[category]; ok && prev != minor {
			return nil, fmt.Errorf("conflicting standard amounts for %s", category)
		}
		amounts[category] = minor
	}
	for _, c := range domain.Categories {
		if _, ok := amounts[c]; !ok {
			return nil, fmt.Errorf("missing standard amount for %s", c)
		}
	}
	return amounts, nil
}

// DistributionServiceImpl implements ports.DistributionService.
type DistributionServiceImpl struct {
	donationRepo    ports.DonationRepository
	vendorRepo      ports.VendorRepository
	eligibilityRepo ports.EligibilityRepository
	txRepo          ports.TransactionRepository
	transactor      ports.DBTransactor
	selector        ports.VendorSelector
	hasher          ports.RecipientHasher
	encSvc          ports.EncryptionService
	payout          ports.PayoutClient
	settings        DistributionSettings
	log             zerolog.Logger
	now             func() time.Time
}

// NewDistributionService creates a new DistributionServiceImpl.
func NewDistributionService(
	donationRepo ports.DonationRepository,
	vendorRepo ports.VendorRepository,
	eligibilityRepo ports.EligibilityRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	selector ports.VendorSelector,
	hasher ports.RecipientHasher,
	encSvc ports.EncryptionService,
	payout ports.PayoutClient,
	settings DistributionSettings,
	log zerolog.Logger,
) *DistributionServiceImpl {
	return &DistributionServiceImpl{
		donationRepo:    donationRepo,
		vendorRepo:      vendorRepo,
		eligibilityRepo: eligibilityRepo,
		txRepo:          txRepo,
		transactor:      transactor,
		selector:        selector,
		hasher:          hasher,
		encSvc:          encSvc,
		payout:          payout,
		settings:        settings,
		log:             logger.Component(log, "distribution"),
		now:             time.Now,
	}
}

// Distribute turns one SUCCEEDED donation into PENDING transactions, then
// attempts one transfer per transaction. Allocation happens in a single
// database transaction under a per-category lock; transfers run after
// commit with no lock held.
func (s *DistributionServiceImpl) Distribute(ctx context.Context, donationID uuid.UUID) ([]domain.Transaction, error) {
	donation, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get donation: %w", err))
	}
	if donation == nil {
		return nil, apperror.ErrNotFound("donation")
	}
	if !donation.IsDistributable() {
		return nil, apperror.ErrDonationNotDistributable(string(donation.Status))
	}

	standard, ok := s.settings.StandardAmounts[donation.Category]
	if !ok || standard <= 0 {
		return nil, apperror.InternalError(fmt.Errorf("no standard amount for category %s", donation.Category))
	}

	created, vendors, err := s.allocate(ctx, donation, standard)
	if err != nil {
		return nil, err
	}

	// Transfers are never abandoned half-way, even if the caller goes away.
	transferCtx := context.WithoutCancel(ctx)
	for i := range created {
		s.transfer(transferCtx, &created[i], vendors[created[i].VendorID])
	}

	s.log.Info().
		Str("donation_id", donation.ID.String()).
		Str("category", string(donation.Category)).
		Int("transactions", len(created)).
		Msg("donation distributed")

	return created, nil
}

// allocate is phase one: claim, select and append PENDING rows.
func (s *DistributionServiceImpl) allocate(ctx context.Context, donation *domain.Donation, standard int64) ([]domain.Transaction, map[uuid.UUID]domain.Vendor, error) {
	now := s.now().UTC()
	log := s.log.With().Str("donation_id", donation.ID.String()).Str("category", string(donation.Category)).Logger()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.transactor.LockCategory(ctx, dbTx, donation.Category); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock category: %w", err))
	}

	if err := s.donationRepo.ClaimDistribution(ctx, dbTx, donation.ID, now); err != nil {
		if errors.Is(err, domain.ErrAlreadyDistributed) {
			logger.Critical(log).Err(err).Msg("attempted double distribution refused")
			return nil, nil, apperror.ErrAlreadyDistributed()
		}
		return nil, nil, apperror.InternalError(fmt.Errorf("claim distribution: %w", err))
	}

	candidates, err := s.eligibilityRepo.FindQualifiedUnmatched(ctx, dbTx, donation.Category, s.settings.CooldownDays, now, s.settings.BatchSize)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("find candidates: %w", err))
	}
	maxBeneficiaries := min(len(candidates), int(donation.Amount/standard))

	found, err := s.vendorRepo.FindVerifiedVendors(ctx, dbTx, donation.Category)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("find vendors: %w", err))
	}
	eligible := make([]domain.Vendor, 0, len(found))
	vendors := make(map[uuid.UUID]domain.Vendor, len(found))
	for _, v := range found {
		if v.IsEligible(donation.Category) {
			eligible = append(eligible, v)
			vendors[v.ID] = v
		}
	}
	if len(eligible) == 0 && maxBeneficiaries > 0 {
		log.Warn().Int("candidates", len(candidates)).Msg("no verified vendors for category, capacity unused")
		maxBeneficiaries = 0
	}

	cutoff := domain.CooldownCutoff(s.settings.CooldownDays, now)
	created := make([]domain.Transaction, 0, maxBeneficiaries)
	for _, candidate := range candidates {
		if len(created) >= maxBeneficiaries {
			break
		}

		vendor := s.selector.Pick(donation.Category, eligible)
		hash, err := s.hasher.Hash(candidate.BeneficiaryID, &donation.ID)
		if err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("recipient hash: %w", err))
		}

		donationID, beneficiaryID := donation.ID, candidate.BeneficiaryID
		txn := domain.Transaction{
			ID:            uuid.New(),
			DonationID:    &donationID,
			BeneficiaryID: &beneficiaryID,
			VendorID:      vendor.ID,
			Category:      donation.Category,
			Amount:        standard,
			RecipientHash: hash,
			Status:        domain.TransactionStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		err = s.txRepo.Create(ctx, dbTx, &txn, cutoff)
		switch {
		case errors.Is(err, domain.ErrCooldownConflict):
			log.Info().Str("transaction_id", txn.ID.String()).Msg("candidate matched concurrently, skipped")
			continue
		case errors.Is(err, domain.ErrConservationViolation):
			logger.Critical(log).Err(err).Int64("amount", donation.Amount).Int("created", len(created)).
				Msg("transaction total would exceed donation amount, distribution halted")
			return nil, nil, apperror.ErrInvariantViolation(err)
		case err != nil:
			return nil, nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
		}
		created = append(created, txn)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return created, vendors, nil
}

// transfer is phase two for one row. Any failure leaves the row PENDING and
// is logged; the batch always continues.
func (s *DistributionServiceImpl) transfer(ctx context.Context, txn *domain.Transaction, vendor domain.Vendor) {
	log := s.log.With().
		Str("transaction_id", txn.ID.String()).
		Str("vendor_id", txn.VendorID.String()).
		Logger()

	destination, err := s.encSvc.Decrypt(vendor.PayoutDestinationEnc)
	if err != nil {
		log.Error().Err(err).Msg("payout destination unreadable, transaction needs remediation")
		return
	}

	transferCtx, cancel := context.WithTimeout(ctx, s.settings.TransferTimeout)
	defer cancel()

	result, err := s.payout.Transfer(transferCtx, ports.TransferRequest{
		TransactionID: txn.ID,
		Destination:   destination,
		Amount:        txn.Amount,
		Category:      txn.Category,
		RecipientHash: txn.RecipientHash,
	})
	if err != nil {
		log.Warn().Err(err).Msg("transfer failed, transaction needs remediation")
		return
	}

	status := domain.TransactionStatusPending
	switch result.Status {
	case ports.TransferSucceeded:
		status = domain.TransactionStatusCleared
	case ports.TransferFailed:
		status = domain.TransactionStatusFailed
	}
	var reference *string
	if result.Reference != "" {
		reference = &result.Reference
	}

	if err := s.txRepo.UpdateTransferResult(ctx, txn.ID, status, reference); err != nil {
		log.Error().Err(err).Str("transfer_reference", result.Reference).Str("status", string(status)).
			Msg("transfer done but result not recorded, transaction needs remediation")
		return
	}

	txn.Status = status
	txn.TransferReference = reference
	txn.UpdatedAt = s.now().UTC()

	log.Debug().Str("status", string(status)).Msg("transfer recorded")
}
