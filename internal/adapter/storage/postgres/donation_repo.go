package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aid-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const donationColumns = `id, amount, category, external_payment_reference, status,
	distribution_started_at, needs_reconciliation, created_at, updated_at`

// DonationRepo implements ports.DonationRepository.
type DonationRepo struct {
	pool Pool
}

// NewDonationRepo creates a new DonationRepo.
func NewDonationRepo(pool Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

// Create inserts a new donation.
func (r *DonationRepo) Create(ctx context.Context, d *domain.Donation) error {
	query := `INSERT INTO donations (` + donationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.Amount, d.Category, d.ExternalPaymentReference, d.Status,
		d.DistributionStartedAt, d.NeedsReconciliation, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// GetByID fetches a donation by UUID.
func (r *DonationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	return scanDonation(r.pool.QueryRow(ctx, query, id))
}

// GetByExternalRefForUpdate fetches and row-locks a donation by its payment
// provider reference.
func (r *DonationRepo) GetByExternalRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE external_payment_reference = $1 FOR UPDATE`
	return scanDonation(tx.QueryRow(ctx, query, ref))
}

// UpdateStatus sets status and the reconciliation flag within a database transaction.
func (r *DonationRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.DonationStatus, needsReconciliation bool) error {
	query := `UPDATE donations SET status = $1, needs_reconciliation = $2, updated_at = NOW() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, status, needsReconciliation, id)
	if err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("donation not found: %s", id)
	}
	return nil
}

// ClaimDistribution stamps distribution_started_at once. A second claim
// matches no row.
func (r *DonationRepo) ClaimDistribution(ctx context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	query := `UPDATE donations SET distribution_started_at = $1, updated_at = $1
		WHERE id = $2 AND distribution_started_at IS NULL`

	tag, err := tx.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("claim distribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("donation %s: %w", id, domain.ErrAlreadyDistributed)
	}
	return nil
}

// ListNeedingReconciliation pages through donations flagged for manual review.
func (r *DonationRepo) ListNeedingReconciliation(ctx context.Context, limit, offset int) ([]domain.Donation, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE needs_reconciliation`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count donations needing reconciliation: %w", err)
	}

	query := `SELECT ` + donationColumns + ` FROM donations WHERE needs_reconciliation
		ORDER BY updated_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list donations needing reconciliation: %w", err)
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, 0, err
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate donation rows: %w", err)
	}
	return donations, total, nil
}

// ListUndistributed pages through SUCCEEDED donations whose distribution
// never started, oldest first.
func (r *DonationRepo) ListUndistributed(ctx context.Context, succeededBefore time.Time, limit, offset int) ([]domain.Donation, int64, error) {
	const where = ` WHERE status = 'SUCCEEDED' AND distribution_started_at IS NULL AND updated_at <= $1`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations`+where, succeededBefore).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count undistributed donations: %w", err)
	}

	query := `SELECT ` + donationColumns + ` FROM donations` + where + `
		ORDER BY updated_at, id LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, succeededBefore, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list undistributed donations: %w", err)
	}
	defer rows.Close()

	var donations []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, 0, err
		}
		donations = append(donations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate donation rows: %w", err)
	}
	return donations, total, nil
}

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	d := &domain.Donation{}
	err := row.Scan(
		&d.ID, &d.Amount, &d.Category, &d.ExternalPaymentReference, &d.Status,
		&d.DistributionStartedAt, &d.NeedsReconciliation, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	return d, nil
}
