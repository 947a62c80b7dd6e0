package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository on a Store.
type TransactionRepo struct{ s *Store }

// NewTransactionRepo creates a TransactionRepo.
func NewTransactionRepo(s *Store) *TransactionRepo { return &TransactionRepo{s: s} }

// Create appends t after checking conservation and cooldown against the
// current ledger, mirroring the guarded insert of the Postgres repo.
func (r *TransactionRepo) Create(_ context.Context, tx pgx.Tx, t *domain.Transaction, cooldownCutoff time.Time) error {
	mt, err := r.s.own(tx)
	if err != nil {
		return err
	}

	if t.DonationID != nil {
		d, ok := r.s.donations[*t.DonationID]
		if !ok {
			return fmt.Errorf("donation not found: %s", t.DonationID)
		}
		total := t.Amount
		for _, existing := range r.s.transactions {
			if existing.DonationID != nil && *existing.DonationID == d.ID {
				total += existing.Amount
			}
		}
		if total > d.Amount {
			return fmt.Errorf("donation %s: %w", d.ID, domain.ErrConservationViolation)
		}
	}
	if t.BeneficiaryID != nil {
		for _, existing := range r.s.transactions {
			if existing.BeneficiaryID != nil && *existing.BeneficiaryID == *t.BeneficiaryID &&
				existing.Category == t.Category &&
				existing.Status != domain.TransactionStatusFailed &&
				existing.CreatedAt.After(cooldownCutoff) {
				return domain.ErrCooldownConflict
			}
		}
	}

	r.s.txIndex[t.ID] = len(r.s.transactions)
	r.s.transactions = append(r.s.transactions, *t)
	mt.onRollback(func() {
		delete(r.s.txIndex, t.ID)
		r.s.transactions = r.s.transactions[:len(r.s.transactions)-1]
	})
	return nil
}

func (r *TransactionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.txIndex[id]
	if !ok {
		return nil, nil
	}
	t := r.s.transactions[i]
	return &t, nil
}

func (r *TransactionRepo) UpdateTransferResult(_ context.Context, id uuid.UUID, status domain.TransactionStatus, reference *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.txIndex[id]
	if !ok || r.s.transactions[i].Status != domain.TransactionStatusPending {
		return fmt.Errorf("pending transaction not found: %s", id)
	}
	t := &r.s.transactions[i]
	t.Status = status
	if reference != nil {
		ref := *reference
		t.TransferReference = &ref
	}
	t.UpdatedAt = r.s.now().UTC()
	return nil
}

func (r *TransactionRepo) CountByDonation(_ context.Context, tx pgx.Tx, donationID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.read(tx, func() error {
		for _, t := range r.s.transactions {
			if t.DonationID != nil && *t.DonationID == donationID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *TransactionRepo) List(_ context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := r.s.filtered(params.Filter)
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].ID.String() > entries[j].ID.String()
	})
	return page(entries, params.Limit, params.Offset), int64(len(entries)), nil
}

func (r *TransactionRepo) GetStats(_ context.Context, filter domain.LedgerFilter) (*domain.LedgerStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := domain.NewLedgerStats()
	for _, e := range r.s.filtered(filter) {
		stats.Add(e.Category, e.Status, 1, e.Amount)
	}
	return stats, nil
}

func (r *TransactionRepo) ListPendingRemediation(_ context.Context, olderThan time.Time, limit int) ([]domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var pending []domain.Transaction
	for _, t := range r.s.transactions {
		if t.Status == domain.TransactionStatusPending && !t.CreatedAt.After(olderThan) {
			pending = append(pending, t)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return page(pending, limit, 0), nil
}

// filtered projects matching rows to ledger entries. Caller holds the lock.
func (s *Store) filtered(f domain.LedgerFilter) []domain.LedgerEntry {
	vendorNeedle := strings.ToLower(f.Vendor)
	var entries []domain.LedgerEntry
	for _, t := range s.transactions {
		vendor := s.vendors[t.VendorID]
		switch {
		case f.Category != nil && t.Category != *f.Category,
			f.Status != nil && t.Status != *f.Status,
			vendorNeedle != "" && !strings.Contains(strings.ToLower(vendor.Name), vendorNeedle),
			f.From != nil && t.CreatedAt.Before(*f.From),
			f.To != nil && !t.CreatedAt.Before(*f.To):
			continue
		}
		entries = append(entries, domain.LedgerEntry{
			ID:            t.ID,
			Timestamp:     t.CreatedAt,
			Category:      t.Category,
			Amount:        t.Amount,
			VendorName:    vendor.Name,
			Status:        t.Status,
			RecipientHash: t.RecipientHash,
		})
	}
	return entries
}
