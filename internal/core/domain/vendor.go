package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a verified third-party payee. Onboarding happens elsewhere; this
// service only reads vendors.
type Vendor struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category Category  `json:"category"`
	Verified bool      `json:"verified"`
	// PayoutDestinationEnc is the AES-GCM encrypted payout token. Decrypted
	// only for the transfer call.
	PayoutDestinationEnc string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
}

// IsEligible returns true if the vendor may receive disbursements for c.
func (v *Vendor) IsEligible(c Category) bool {
	return v.Verified && v.Category == c
}
