package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aid-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DonationRepo implements ports.DonationRepository on a Store.
type DonationRepo struct{ s *Store }

// NewDonationRepo creates a DonationRepo.
func NewDonationRepo(s *Store) *DonationRepo { return &DonationRepo{s: s} }

func (r *DonationRepo) Create(_ context.Context, d *domain.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.refs[d.ExternalPaymentReference]; taken {
		return domain.ErrDuplicateReference
	}
	r.s.donations[d.ID] = *d
	r.s.refs[d.ExternalPaymentReference] = d.ID
	return nil
}

func (r *DonationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Donation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.donations[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *DonationRepo) GetByExternalRefForUpdate(_ context.Context, tx pgx.Tx, ref string) (*domain.Donation, error) {
	if _, err := r.s.own(tx); err != nil {
		return nil, err
	}
	id, ok := r.s.refs[ref]
	if !ok {
		return nil, nil
	}
	d := r.s.donations[id]
	return &d, nil
}

func (r *DonationRepo) UpdateStatus(_ context.Context, tx pgx.Tx, id uuid.UUID, status domain.DonationStatus, needsReconciliation bool) error {
	t, err := r.s.own(tx)
	if err != nil {
		return err
	}
	prev, ok := r.s.donations[id]
	if !ok {
		return fmt.Errorf("donation not found: %s", id)
	}
	next := prev
	next.Status = status
	next.NeedsReconciliation = needsReconciliation
	next.UpdatedAt = r.s.now().UTC()
	r.s.donations[id] = next
	t.onRollback(func() { r.s.donations[id] = prev })
	return nil
}

func (r *DonationRepo) ClaimDistribution(_ context.Context, tx pgx.Tx, id uuid.UUID, at time.Time) error {
	t, err := r.s.own(tx)
	if err != nil {
		return err
	}
	prev, ok := r.s.donations[id]
	if !ok || prev.DistributionStartedAt != nil {
		return fmt.Errorf("donation %s: %w", id, domain.ErrAlreadyDistributed)
	}
	next := prev
	next.DistributionStartedAt = &at
	next.UpdatedAt = at
	r.s.donations[id] = next
	t.onRollback(func() { r.s.donations[id] = prev })
	return nil
}

func (r *DonationRepo) ListNeedingReconciliation(_ context.Context, limit, offset int) ([]domain.Donation, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var flagged []domain.Donation
	for _, d := range r.s.donations {
		if d.NeedsReconciliation {
			flagged = append(flagged, d)
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		if !flagged[i].UpdatedAt.Equal(flagged[j].UpdatedAt) {
			return flagged[i].UpdatedAt.After(flagged[j].UpdatedAt)
		}
		return flagged[i].ID.String() < flagged[j].ID.String()
	})
	return page(flagged, limit, offset), int64(len(flagged)), nil
}

func (r *DonationRepo) ListUndistributed(_ context.Context, succeededBefore time.Time, limit, offset int) ([]domain.Donation, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stalled []domain.Donation
	for _, d := range r.s.donations {
		if d.Status == domain.DonationStatusSucceeded && d.DistributionStartedAt == nil && !d.UpdatedAt.After(succeededBefore) {
			stalled = append(stalled, d)
		}
	}
	sort.Slice(stalled, func(i, j int) bool {
		if !stalled[i].UpdatedAt.Equal(stalled[j].UpdatedAt) {
			return stalled[i].UpdatedAt.Before(stalled[j].UpdatedAt)
		}
		return stalled[i].ID.String() < stalled[j].ID.String()
	})
	return page(stalled, limit, offset), int64(len(stalled)), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
