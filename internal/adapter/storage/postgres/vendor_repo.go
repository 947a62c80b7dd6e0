package postgres

import (
	"context"
	"errors"
	"fmt"

	"aid-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const vendorColumns = `id, name, category, verified, payout_destination_enc, created_at`

// VendorRepo implements ports.VendorRepository. Vendors are onboarded by
// another service; this repo never writes.
type VendorRepo struct {
	pool Pool
}

// NewVendorRepo creates a new VendorRepo.
func NewVendorRepo(pool Pool) *VendorRepo {
	return &VendorRepo{pool: pool}
}

// FindVerifiedVendors lists verified vendors serving category in a stable order.
func (r *VendorRepo) FindVerifiedVendors(ctx context.Context, tx pgx.Tx, category domain.Category) ([]domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors
		WHERE category = $1 AND verified ORDER BY name, id`

	rows, err := on(r.pool, tx).Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("find verified vendors: %w", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor rows: %w", err)
	}
	return vendors, nil
}

// GetByID fetches a vendor by UUID.
func (r *VendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`
	return scanVendor(r.pool.QueryRow(ctx, query, id))
}

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	v := &domain.Vendor{}
	err := row.Scan(&v.ID, &v.Name, &v.Category, &v.Verified, &v.PayoutDestinationEnc, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan vendor: %w", err)
	}
	return v, nil
}
