package domain

import (
	"time"

	"github.com/google/uuid"
)

// DonationStatus represents the lifecycle state of a donation.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"
	DonationStatusSucceeded DonationStatus = "SUCCEEDED"
	DonationStatusFailed    DonationStatus = "FAILED"
	DonationStatusRefunded  DonationStatus = "REFUNDED"
)

// donationTransitions lists the allowed one-way moves. Nothing leaves FAILED
// or REFUNDED.
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusPending:   {DonationStatusSucceeded, DonationStatusFailed},
	DonationStatusSucceeded: {DonationStatusRefunded},
}

// Donation is a single contribution earmarked for a category.
// Amount is immutable after creation.
type Donation struct {
	ID                       uuid.UUID      `json:"id"`
	Amount                   int64          `json:"amount"` // minor units
	Category                 Category       `json:"category"`
	ExternalPaymentReference string         `json:"external_payment_reference"`
	Status                   DonationStatus `json:"status"`
	DistributionStartedAt    *time.Time     `json:"distribution_started_at,omitempty"`
	NeedsReconciliation      bool           `json:"needs_reconciliation"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
}

// CanTransitionTo reports whether moving from the current status to next is allowed.
func (d *Donation) CanTransitionTo(next DonationStatus) bool {
	for _, allowed := range donationTransitions[d.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanReachLater reports whether target is not allowed now but becomes
// allowed after further transitions, e.g. REFUNDED while still PENDING.
func (d *Donation) CanReachLater(target DonationStatus) bool {
	if d.Status == target || d.CanTransitionTo(target) {
		return false
	}
	seen := map[DonationStatus]bool{d.Status: true}
	queue := append([]DonationStatus(nil), donationTransitions[d.Status]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		for _, s := range donationTransitions[next] {
			if s == target {
				return true
			}
			queue = append(queue, s)
		}
	}
	return false
}

// IsTerminal returns true once no further transition is possible.
func (d *Donation) IsTerminal() bool {
	return len(donationTransitions[d.Status]) == 0
}

// IsDistributable returns true if the distribution engine may run for it.
func (d *Donation) IsDistributable() bool {
	return d.Status == DonationStatusSucceeded
}
