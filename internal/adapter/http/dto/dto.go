package dto

import (
	"time"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// ---- Donations ----

// CreateDonationRequest is the body of POST /api/v1/donations.
// Amount is a decimal in major units ("45.00").
type CreateDonationRequest struct {
	Amount                   decimal.Decimal `json:"amount"`
	Category                 string          `json:"category" binding:"required,category"`
	ExternalPaymentReference string          `json:"external_payment_reference" binding:"required,max=255,safe_id"`
}

// DonationResponse is the operator view of a donation.
type DonationResponse struct {
	ID                       string     `json:"id"`
	Amount                   string     `json:"amount"`
	Category                 string     `json:"category"`
	ExternalPaymentReference string     `json:"external_payment_reference"`
	Status                   string     `json:"status"`
	DistributionStartedAt    *time.Time `json:"distribution_started_at,omitempty"`
	NeedsReconciliation      bool       `json:"needs_reconciliation"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// NewDonationResponse maps a domain donation.
func NewDonationResponse(d *domain.Donation) DonationResponse {
	return DonationResponse{
		ID:                       d.ID.String(),
		Amount:                   domain.FormatAmount(d.Amount),
		Category:                 string(d.Category),
		ExternalPaymentReference: d.ExternalPaymentReference,
		Status:                   string(d.Status),
		DistributionStartedAt:    d.DistributionStartedAt,
		NeedsReconciliation:      d.NeedsReconciliation,
		CreatedAt:                d.CreatedAt,
		UpdatedAt:                d.UpdatedAt,
	}
}

// DonationListResponse is a paginated donation list.
type DonationListResponse struct {
	Donations []DonationResponse `json:"donations"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// NewDonationListResponse maps one page of donations. Donations is never nil.
func NewDonationListResponse(donations []domain.Donation, total int64, limit, offset int) DonationListResponse {
	items := make([]DonationResponse, 0, len(donations))
	for i := range donations {
		items = append(items, NewDonationResponse(&donations[i]))
	}
	return DonationListResponse{Donations: items, Total: total, Limit: limit, Offset: offset}
}

// ---- Payment events ----

// PaymentEventRequest is the provider notification body.
type PaymentEventRequest struct {
	EventID                  string           `json:"event_id" binding:"required,max=255"`
	Type                     string           `json:"type" binding:"required,oneof=succeeded failed refunded"`
	ExternalPaymentReference string           `json:"external_payment_reference" binding:"required,max=255"`
	Amount                   *decimal.Decimal `json:"amount,omitempty"`
}

// EventAckResponse acknowledges a processed event.
type EventAckResponse struct {
	EventID string `json:"event_id"`
	Outcome string `json:"outcome"`
}

// ---- Ledger ----

// LedgerEntryResponse is one public ledger row. It has no field that could
// carry beneficiary identity.
type LedgerEntryResponse struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	Vendor        string    `json:"vendor"`
	Status        string    `json:"status"`
	RecipientHash string    `json:"recipient_hash"`
}

// NewLedgerEntryResponse maps a ledger entry.
func NewLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID.String(),
		Timestamp:     e.Timestamp,
		Category:      string(e.Category),
		Amount:        domain.FormatAmount(e.Amount),
		Vendor:        e.VendorName,
		Status:        string(e.Status),
		RecipientHash: e.RecipientHash,
	}
}

// LedgerListResponse is one page of the public ledger.
type LedgerListResponse struct {
	Transactions []LedgerEntryResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
	HasMore      bool                  `json:"has_more"`
}

// NewLedgerListResponse maps a ledger page.
func NewLedgerListResponse(p *ports.LedgerPage) LedgerListResponse {
	items := make([]LedgerEntryResponse, 0, len(p.Entries))
	for _, e := range p.Entries {
		items = append(items, NewLedgerEntryResponse(e))
	}
	return LedgerListResponse{
		Transactions: items,
		Total:        p.Total,
		Limit:        p.Limit,
		Offset:       p.Offset,
		HasMore:      p.HasMore(),
	}
}

// BucketResponse is one stats breakdown row.
type BucketResponse struct {
	Count  int64  `json:"count"`
	Amount string `json:"amount"`
}

// LedgerStatsResponse aggregates a filtered ledger snapshot.
type LedgerStatsResponse struct {
	TotalAmount string                    `json:"total_amount"`
	Count       int64                     `json:"count"`
	ByCategory  map[string]BucketResponse `json:"by_category"`
	ByStatus    map[string]BucketResponse `json:"by_status"`
}

// NewLedgerStatsResponse maps ledger stats.
func NewLedgerStatsResponse(s *domain.LedgerStats) LedgerStatsResponse {
	resp := LedgerStatsResponse{
		TotalAmount: domain.FormatAmount(s.TotalAmount),
		Count:       s.Count,
		ByCategory:  make(map[string]BucketResponse, len(s.ByCategory)),
		ByStatus:    make(map[string]BucketResponse, len(s.ByStatus)),
	}
	for c, b := range s.ByCategory {
		resp.ByCategory[string(c)] = BucketResponse{Count: b.Count, Amount: domain.FormatAmount(b.Amount)}
	}
	for st, b := range s.ByStatus {
		resp.ByStatus[string(st)] = BucketResponse{Count: b.Count, Amount: domain.FormatAmount(b.Amount)}
	}
	return resp
}

// ---- Operator ----

// TransactionResponse is the operator view of a transaction. The
// beneficiary id is still withheld.
type TransactionResponse struct {
	ID                string    `json:"id"`
	DonationID        *string   `json:"donation_id,omitempty"`
	VendorID          string    `json:"vendor_id"`
	Category          string    `json:"category"`
	Amount            string    `json:"amount"`
	RecipientHash     string    `json:"recipient_hash"`
	TransferReference *string   `json:"transfer_reference,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewTransactionResponse maps a domain transaction.
func NewTransactionResponse(t domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                t.ID.String(),
		VendorID:          t.VendorID.String(),
		Category:          string(t.Category),
		Amount:            domain.FormatAmount(t.Amount),
		RecipientHash:     t.RecipientHash,
		TransferReference: t.TransferReference,
		Status:            string(t.Status),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if t.DonationID != nil {
		id := t.DonationID.String()
		resp.DonationID = &id
	}
	return resp
}

// NewTransactionResponses maps a slice, never returning nil.
func NewTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}

// DistributionResponse is the result of an operator-triggered distribution.
type DistributionResponse struct {
	DonationID   string                `json:"donation_id"`
	Transactions []TransactionResponse `json:"transactions"`
}

// RemediationResponse lists PENDING transactions older than a threshold.
type RemediationResponse struct {
	OlderThan    string                `json:"older_than"`
	Transactions []TransactionResponse `json:"transactions"`
}
