package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"
)

const (
	recipientKeySize   = 32
	recipientNonceSize = 16
)

// recipientHashInfo separates this key from anything else derived from the
// same secret.
var recipientHashInfo = []byte("aid-ledger recipient hash v1")

// BLAKE3RecipientHasher implements ports.RecipientHasher. Each hash is a
// BLAKE3 keyed hash of beneficiaryID || donationID || nonce with a fresh
// random nonce, so two transactions for the same beneficiary are unlinkable.
type BLAKE3RecipientHasher struct {
	key   []byte
	nonce io.Reader
}

// NewBLAKE3RecipientHasher derives the hashing key from secret with HKDF-SHA256.
func NewBLAKE3RecipientHasher(secret string) (*BLAKE3RecipientHasher, error) {
	if secret == "" {
		return nil, fmt.Errorf("recipient hash secret is empty")
	}
	key := make([]byte, recipientKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, recipientHashInfo), key); err != nil {
		return nil, fmt.Errorf("deriving recipient hash key: %w", err)
	}
	return &BLAKE3RecipientHasher{key: key, nonce: rand.Reader}, nil
}

// Hash returns the hex-encoded recipient hash. donationID is nil for
// disbursements that do not originate from a donation.
func (h *BLAKE3RecipientHasher) Hash(beneficiaryID uuid.UUID, donationID *uuid.UUID) (string, error) {
	nonce := make([]byte, recipientNonceSize)
	if _, err := io.ReadFull(h.nonce, nonce); err != nil {
		return "", fmt.Errorf("generating recipient nonce: %w", err)
	}

	hasher, err := blake3.NewKeyed(h.key)
	if err != nil {
		return "", fmt.Errorf("initialising keyed hash: %w", err)
	}
	hasher.Write(beneficiaryID[:])
	if donationID != nil {
		hasher.Write(donationID[:])
	} else {
		hasher.Write(uuid.Nil[:])
	}
	hasher.Write(nonce)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
