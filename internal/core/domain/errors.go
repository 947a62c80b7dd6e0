package domain

import "errors"

// Repository conditions the services branch on.
var (
	// ErrConservationViolation means an insert would push the sum of a
	// donation's transactions above the donation amount.
	ErrConservationViolation = errors.New("transaction total would exceed donation amount")
	// ErrCooldownConflict means the beneficiary was matched in the category
	// inside the cooldown window by a concurrent writer.
	ErrCooldownConflict = errors.New("beneficiary matched in category within cooldown")
	// ErrAlreadyDistributed means the donation's distribution claim is taken.
	ErrAlreadyDistributed = errors.New("donation already claimed for distribution")
	// ErrDuplicateReference means a donation with the external reference exists.
	ErrDuplicateReference = errors.New("duplicate external payment reference")
)
