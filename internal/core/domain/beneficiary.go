package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCooldownDays is the rolling window during which a beneficiary can
// receive at most one transaction per category.
const DefaultCooldownDays = 30

// EligibilityRecord is the read model the intake subsystem maintains for a
// beneficiary. LastMatched is derived from the transaction ledger.
type EligibilityRecord struct {
	BeneficiaryID uuid.UUID              `json:"-"`
	Qualified     bool                   `json:"qualified"`
	QualifiedAt   time.Time              `json:"qualified_at"`
	LastMatched   map[Category]time.Time `json:"last_matched,omitempty"`
}

// InCooldown reports whether the beneficiary was matched in c within the
// window ending at asOf.
func (r *EligibilityRecord) InCooldown(c Category, cooldownDays int, asOf time.Time) bool {
	last, ok := r.LastMatched[c]
	if !ok {
		return false
	}
	return last.After(CooldownCutoff(cooldownDays, asOf))
}

// CooldownCutoff returns the instant before which a match no longer blocks
// a new one.
func CooldownCutoff(cooldownDays int, asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, -cooldownDays)
}
