package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "Invalid webhook signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("SEC_002", "Webhook timestamp outside tolerance", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("SEC_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Payment events (EVT) ----

func ErrMalformedEvent(message string) *AppError {
	return New("EVT_001", message, http.StatusBadRequest)
}

// ErrEventOutOfOrder asks the provider to redeliver once the donation has
// reached the status the event applies to.
func ErrEventOutOfOrder(from, to string) *AppError {
	return New("EVT_002", fmt.Sprintf("donation is %s, cannot move to %s yet", from, to), http.StatusConflict)
}

// ---- Donations (DON) ----

func ErrInvalidAmount() *AppError {
	return New("DON_001", "Invalid amount", http.StatusBadRequest)
}

func ErrInvalidCategory(raw string) *AppError {
	return New("DON_002", fmt.Sprintf("unknown category %q", raw), http.StatusBadRequest)
}

func ErrDuplicateReference() *AppError {
	return New("DON_003", "Duplicate external payment reference", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("DON_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Distribution (DST) ----

func ErrDonationNotDistributable(status string) *AppError {
	return New("DST_001", fmt.Sprintf("donation in status %s cannot be distributed", status), http.StatusConflict)
}

func ErrAlreadyDistributed() *AppError {
	return New("DST_002", "Donation has already been distributed", http.StatusConflict)
}

// ErrInvariantViolation marks a write the ledger refused to accept. Always
// logged as critical by the caller.
func ErrInvariantViolation(err error) *AppError {
	return Wrap("DST_003", "Ledger invariant violation", http.StatusInternalServerError, err)
}

// ---- Ledger queries (LED) ----

func ErrInvalidFilter(message string) *AppError {
	return New("LED_001", message, http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrUpstreamUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Upstream dependency unavailable", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a DON_001-style validation error.
func Validation(message string) *AppError {
	return New("DON_001", message, http.StatusBadRequest)
}

// ---- Requests (REQ) ----

func ErrPayloadTooLarge() *AppError {
	return New("REQ_001", "Request body too large", http.StatusRequestEntityTooLarge)
}
