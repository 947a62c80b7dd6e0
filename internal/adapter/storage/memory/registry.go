package memory

import (
	"context"
	"sort"
	"time"

	"aid-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VendorRepo implements ports.VendorRepository on a Store.
type VendorRepo struct{ s *Store }

// NewVendorRepo creates a VendorRepo.
func NewVendorRepo(s *Store) *VendorRepo { return &VendorRepo{s: s} }

func (r *VendorRepo) FindVerifiedVendors(_ context.Context, tx pgx.Tx, category domain.Category) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	err := r.s.read(tx, func() error {
		for _, v := range r.s.vendors {
			if v.Verified && v.Category == category {
				vendors = append(vendors, v)
			}
		}
		return nil
	})
	sort.Slice(vendors, func(i, j int) bool {
		if vendors[i].Name != vendors[j].Name {
			return vendors[i].Name < vendors[j].Name
		}
		return vendors[i].ID.String() < vendors[j].ID.String()
	})
	return vendors, err
}

func (r *VendorRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Vendor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// EligibilityRepo implements ports.EligibilityRepository on a Store.
type EligibilityRepo struct{ s *Store }

// NewEligibilityRepo creates an EligibilityRepo.
func NewEligibilityRepo(s *Store) *EligibilityRepo { return &EligibilityRepo{s: s} }

func (r *EligibilityRepo) FindQualifiedUnmatched(_ context.Context, tx pgx.Tx, category domain.Category, cooldownDays int, asOf time.Time, limit int) ([]domain.EligibilityRecord, error) {
	var records []domain.EligibilityRecord
	err := r.s.read(tx, func() error {
		last := r.s.lastMatched(category)
		for _, rec := range r.s.eligibility {
			if !rec.Qualified {
				continue
			}
			if at, ok := last[rec.BeneficiaryID]; ok {
				rec.LastMatched = map[domain.Category]time.Time{category: at}
			}
			if rec.InCooldown(category, cooldownDays, asOf) {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].QualifiedAt.Equal(records[j].QualifiedAt) {
			return records[i].QualifiedAt.Before(records[j].QualifiedAt)
		}
		return records[i].BeneficiaryID.String() < records[j].BeneficiaryID.String()
	})
	return page(records, limit, 0), nil
}

// lastMatched returns the newest non-failed transaction time per
// beneficiary in category. Caller holds the lock.
func (s *Store) lastMatched(category domain.Category) map[uuid.UUID]time.Time {
	last := make(map[uuid.UUID]time.Time)
	for _, t := range s.transactions {
		if t.BeneficiaryID == nil || t.Category != category || t.Status == domain.TransactionStatusFailed {
			continue
		}
		if at, ok := last[*t.BeneficiaryID]; !ok || t.CreatedAt.After(at) {
			last[*t.BeneficiaryID] = t.CreatedAt
		}
	}
	return last
}

// ProcessedEventRepo implements ports.ProcessedEventRepository on a Store.
type ProcessedEventRepo struct{ s *Store }

// NewProcessedEventRepo creates a ProcessedEventRepo.
func NewProcessedEventRepo(s *Store) *ProcessedEventRepo { return &ProcessedEventRepo{s: s} }

func (r *ProcessedEventRepo) Record(_ context.Context, tx pgx.Tx, e *domain.ProcessedEvent) (bool, error) {
	t, err := r.s.own(tx)
	if err != nil {
		return false, err
	}
	if _, seen := r.s.events[e.EventID]; seen {
		return false, nil
	}
	r.s.events[e.EventID] = *e
	t.onRollback(func() { delete(r.s.events, e.EventID) })
	return true, nil
}

func (r *ProcessedEventRepo) Get(_ context.Context, eventID string) (*domain.ProcessedEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}
