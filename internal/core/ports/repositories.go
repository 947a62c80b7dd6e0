package ports

import (
	"context"
	"time"

	"aid-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DonationRepository defines persistence operations for donations.
// Methods accepting pgx.Tx are used inside transaction blocks.
type DonationRepository interface {
	// Create inserts a PENDING donation. Returns domain.ErrDuplicateReference
	// when the external reference is taken.
	Create(ctx context.Context, donation *domain.Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Donation, error)
	GetByExternalRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*domain.Donation, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.DonationStatus, needsReconciliation bool) error
	// ClaimDistribution marks the donation as distributed. Returns
	// domain.ErrAlreadyDistributed if it was claimed before.
	ClaimDistribution(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error
	ListNeedingReconciliation(ctx context.Context, limit, offset int) ([]domain.Donation, int64, error)
	// ListUndistributed pages through SUCCEEDED donations that were never
	// claimed for distribution and last changed at or before succeededBefore.
	ListUndistributed(ctx context.Context, succeededBefore time.Time, limit, offset int) ([]domain.Donation, int64, error)
}

// VendorRepository is the read-only Vendor Registry.
type VendorRepository interface {
	FindVerifiedVendors(ctx context.Context, tx pgx.Tx, category domain.Category) ([]domain.Vendor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
}

// EligibilityRepository is the read-only Beneficiary Eligibility View.
type EligibilityRepository interface {
	// FindQualifiedUnmatched returns qualified beneficiaries with no
	// non-failed transaction in category after the cooldown cutoff,
	// oldest-qualified-first.
	FindQualifiedUnmatched(ctx context.Context, tx pgx.Tx, category domain.Category, cooldownDays int, asOf time.Time, limit int) ([]domain.EligibilityRecord, error)
}

// TransactionRepository defines persistence operations for ledger transactions.
type TransactionRepository interface {
	// Create appends a PENDING transaction. The write is refused with
	// domain.ErrConservationViolation if the donation total would exceed the
	// donation amount, and with domain.ErrCooldownConflict if the
	// beneficiary already has a non-failed transaction in the category after
	// cooldownCutoff.
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction, cooldownCutoff time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// UpdateTransferResult records the outcome of a transfer attempt.
	UpdateTransferResult(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, reference *string) error
	CountByDonation(ctx context.Context, tx pgx.Tx, donationID uuid.UUID) (int64, error)
	// Public read surface
	List(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	GetStats(ctx context.Context, filter domain.LedgerFilter) (*domain.LedgerStats, error)
	// Operator read surface
	ListPendingRemediation(ctx context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error)
}

// LedgerListParams holds filter + pagination for listing ledger entries.
type LedgerListParams struct {
	Filter domain.LedgerFilter
	Limit  int
	Offset int
}

// ProcessedEventRepository persists the reconciler's idempotency records.
type ProcessedEventRepository interface {
	// Record inserts the event id. Returns false if the id was already
	// recorded by a committed or concurrent transaction.
	Record(ctx context.Context, tx pgx.Tx, event *domain.ProcessedEvent) (bool, error)
	Get(ctx context.Context, eventID string) (*domain.ProcessedEvent, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	// LockCategory takes a transaction-scoped lock serialising distribution
	// writers for one category.
	LockCategory(ctx context.Context, tx pgx.Tx, category domain.Category) error
}
