package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the lifecycle state of a disbursement.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusCleared TransactionStatus = "CLEARED"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// TransactionStatuses lists every status in display order.
var TransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusCleared,
	TransactionStatusFailed,
}

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCleared, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction is one append-only disbursement to a vendor on behalf of a
// beneficiary. Rows are never deleted.
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	DonationID        *uuid.UUID        `json:"donation_id,omitempty"` // nil for reserve disbursements
	BeneficiaryID     *uuid.UUID        `json:"-"`                     // never serialized
	VendorID          uuid.UUID         `json:"vendor_id"`
	Category          Category          `json:"category"`
	Amount            int64             `json:"amount"` // minor units
	RecipientHash     string            `json:"recipient_hash"`
	TransferReference *string           `json:"transfer_reference,omitempty"`
	Status            TransactionStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NeedsRemediation is true for rows whose transfer outcome is unknown.
func (t *Transaction) NeedsRemediation() bool {
	return t.Status == TransactionStatusPending && t.TransferReference == nil
}

// LedgerEntry is the public projection of a Transaction. It carries no
// beneficiary identity by construction.
type LedgerEntry struct {
	ID            uuid.UUID         `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      Category          `json:"category"`
	Amount        int64             `json:"amount"`
	VendorName    string            `json:"vendor"`
	Status        TransactionStatus `json:"status"`
	RecipientHash string            `json:"recipient_hash"`
}

// LedgerFilter is the filter set shared by listing, stats and export.
type LedgerFilter struct {
	Category *Category
	Status   *TransactionStatus
	Vendor   string     // case-insensitive substring of vendor name
	From     *time.Time // inclusive
	To       *time.Time // exclusive
}

// LedgerStats aggregates a filtered ledger snapshot.
type LedgerStats struct {
	TotalAmount int64                              `json:"total_amount"`
	Count       int64                              `json:"count"`
	ByCategory  map[Category]LedgerBucket          `json:"by_category"`
	ByStatus    map[TransactionStatus]LedgerBucket `json:"by_status"`
}

// LedgerBucket is one row of a stats breakdown.
type LedgerBucket struct {
	Count  int64 `json:"count"`
	Amount int64 `json:"amount"`
}

// NewLedgerStats returns stats with every bucket present and zeroed.
func NewLedgerStats() *LedgerStats {
	s := &LedgerStats{
		ByCategory: make(map[Category]LedgerBucket, len(Categories)),
		ByStatus:   make(map[TransactionStatus]LedgerBucket, len(TransactionStatuses)),
	}
	for _, c := range Categories {
		s.ByCategory[c] = LedgerBucket{}
	}
	for _, st := range TransactionStatuses {
		s.ByStatus[st] = LedgerBucket{}
	}
	return s
}

// Add folds one transaction into the aggregate.
func (s *LedgerStats) Add(c Category, st TransactionStatus, count, amount int64) {
	s.Count += count
	s.TotalAmount += amount
	cb := s.ByCategory[c]
	cb.Count += count
	cb.Amount += amount
	s.ByCategory[c] = cb
	sb := s.ByStatus[st]
	sb.Count += count
	sb.Amount += amount
	s.ByStatus[st] = sb
}
