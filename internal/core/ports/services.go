package ports

import (
	"context"
	"io"
	"time"

	"aid-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification of webhooks.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildWebhookPayload(timestamp int64, body string) string
}

// TokenService handles operator JWT tokens.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// RecipientHasher derives the public, non-reversible stand-in for a beneficiary.
type RecipientHasher interface {
	Hash(beneficiaryID uuid.UUID, donationID *uuid.UUID) (string, error)
}

// VendorSelector picks one vendor from a non-empty list of eligible vendors.
type VendorSelector interface {
	Pick(category domain.Category, vendors []domain.Vendor) domain.Vendor
}

// TransferStatus is the payout provider's view of a transfer.
type TransferStatus string

const (
	TransferSucceeded TransferStatus = "succeeded"
	TransferPending   TransferStatus = "pending"
	TransferFailed    TransferStatus = "failed"
)

// TransferRequest is the outbound payout call.
type TransferRequest struct {
	TransactionID uuid.UUID
	Destination   string
	Amount        int64
	Category      domain.Category
	RecipientHash string
}

// TransferResult is the provider's answer to a transfer call.
type TransferResult struct {
	Reference string
	Status    TransferStatus
}

// PayoutClient moves money to a vendor's payout destination.
type PayoutClient interface {
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// EventCache is the Redis-layer "already processed" check (fast path).
type EventCache interface {
	Get(ctx context.Context, eventID string) (domain.EventOutcome, bool, error)
	Set(ctx context.Context, eventID string, outcome domain.EventOutcome, ttl time.Duration) error
}

// StatsCache caches serialized ledger stats keyed by filter.
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// DistributionTrigger is the seam between the reconciler and the engine.
type DistributionTrigger interface {
	OnDonationSucceeded(ctx context.Context, donationID uuid.UUID)
}

// --- Service Ports (Business Logic) ---

// ReconcilerService translates payment events into donation transitions.
type ReconcilerService interface {
	HandleEvent(ctx context.Context, event domain.PaymentEvent) (domain.EventOutcome, error)
}

// DistributionService turns one successful donation into transactions.
type DistributionService interface {
	Distribute(ctx context.Context, donationID uuid.UUID) ([]domain.Transaction, error)
}

// DonationService defines donation intake and operator queries.
type DonationService interface {
	Create(ctx context.Context, req CreateDonationRequest) (*domain.Donation, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Donation, error)
	ListNeedingReconciliation(ctx context.Context, limit, offset int) ([]domain.Donation, int64, error)
	ListUndistributed(ctx context.Context, olderThan time.Duration, limit, offset int) ([]domain.Donation, int64, error)
}

// CreateDonationRequest holds validated input for a new donation.
type CreateDonationRequest struct {
	Amount                   int64
	Category                 domain.Category
	ExternalPaymentReference string
}

// LedgerService defines the public ledger read surface.
type LedgerService interface {
	List(ctx context.Context, params LedgerListParams) (*LedgerPage, error)
	Stats(ctx context.Context, filter domain.LedgerFilter) (*domain.LedgerStats, error)
	Export(ctx context.Context, filter domain.LedgerFilter, w io.Writer) error
	PendingRemediation(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Transaction, error)
}

// LedgerPage is one page of the public ledger.
type LedgerPage struct {
	Entries []domain.LedgerEntry
	Total   int64
	Limit   int
	Offset  int
}

// HasMore reports whether entries exist past this page.
func (p *LedgerPage) HasMore() bool {
	return int64(p.Offset+len(p.Entries)) < p.Total
}
