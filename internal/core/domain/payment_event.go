package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentEventType is the kind of notification the payment provider sends.
type PaymentEventType string

const (
	PaymentEventSucceeded PaymentEventType = "succeeded"
	PaymentEventFailed    PaymentEventType = "failed"
	PaymentEventRefunded  PaymentEventType = "refunded"
)

// TargetStatus returns the donation status an event of this type moves to.
func (t PaymentEventType) TargetStatus() (DonationStatus, bool) {
	switch t {
	case PaymentEventSucceeded:
		return DonationStatusSucceeded, true
	case PaymentEventFailed:
		return DonationStatusFailed, true
	case PaymentEventRefunded:
		return DonationStatusRefunded, true
	}
	return "", false
}

// PaymentEvent is an inbound provider notification. Amount is optional and
// only used for mismatch detection; the donation amount governs.
type PaymentEvent struct {
	EventID                  string
	Type                     PaymentEventType
	ExternalPaymentReference string
	Amount                   *int64
	ReceivedAt               time.Time
}

// Validate checks the fields required to process the event at all.
func (e *PaymentEvent) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("event_id is required")
	}
	if strings.TrimSpace(e.ExternalPaymentReference) == "" {
		return fmt.Errorf("external_payment_reference is required")
	}
	if _, ok := e.Type.TargetStatus(); !ok {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Amount != nil && *e.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// EventOutcome is what the reconciler did with an event.
type EventOutcome string

const (
	OutcomeApplied          EventOutcome = "applied"
	OutcomeDuplicate        EventOutcome = "duplicate"
	OutcomeIgnored          EventOutcome = "ignored"
	OutcomeUnknownReference EventOutcome = "unknown_reference"
)

// ProcessedEvent is the persisted idempotency record for an event id.
type ProcessedEvent struct {
	EventID     string           `json:"event_id"`
	EventType   PaymentEventType `json:"event_type"`
	DonationID  *uuid.UUID       `json:"donation_id,omitempty"`
	Outcome     EventOutcome     `json:"outcome"`
	ProcessedAt time.Time        `json:"processed_at"`
}
