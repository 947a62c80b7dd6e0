// Package memory is a process-local implementation of the storage ports.
// It backs storage.driver=memory for development and the end-to-end tests.
//
// A transaction holds the store's write lock from Begin until Commit or
// Rollback, so transactions are fully serialized. Rollback replays an undo
// log.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"aid-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var errForeignTx = errors.New("memory: transaction was not started by this store")

// Store holds every table in maps guarded by one lock.
type Store struct {
	mu           sync.RWMutex
	donations    map[uuid.UUID]domain.Donation
	refs         map[string]uuid.UUID
	vendors      map[uuid.UUID]domain.Vendor
	eligibility  map[uuid.UUID]domain.EligibilityRecord
	transactions []domain.Transaction
	txIndex      map[uuid.UUID]int
	events       map[string]domain.ProcessedEvent
	now          func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		donations:   make(map[uuid.UUID]domain.Donation),
		refs:        make(map[string]uuid.UUID),
		vendors:     make(map[uuid.UUID]domain.Vendor),
		eligibility: make(map[uuid.UUID]domain.EligibilityRecord),
		txIndex:     make(map[uuid.UUID]int),
		events:      make(map[string]domain.ProcessedEvent),
		now:         time.Now,
	}
}

// AddVendor registers a vendor. Vendors are onboarded outside this service.
func (s *Store) AddVendor(v domain.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[v.ID] = v
}

// AddEligibility registers or replaces a beneficiary eligibility record.
// LastMatched is ignored; it is always derived from the transactions.
func (s *Store) AddEligibility(rec domain.EligibilityRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.LastMatched = nil
	s.eligibility[rec.BeneficiaryID] = rec
}

// Begin starts a transaction, blocking until no other one is open.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memTx{store: s}, nil
}

// LockCategory is satisfied by the store-wide lock Begin already holds.
func (s *Store) LockCategory(_ context.Context, tx pgx.Tx, _ domain.Category) error {
	_, err := s.own(tx)
	return err
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Name returns the dependency name.
func (s *Store) Name() string { return "memory" }

func (s *Store) own(tx pgx.Tx) (*memTx, error) {
	t, ok := tx.(*memTx)
	if !ok || t.store != s || t.done {
		return nil, errForeignTx
	}
	return t, nil
}

// read runs fn under the read lock, or directly when tx already holds the
// write lock.
func (s *Store) read(tx pgx.Tx, fn func() error) error {
	if tx == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return fn()
	}
	if _, err := s.own(tx); err != nil {
		return err
	}
	return fn()
}

// memTx satisfies pgx.Tx for the two methods services call. Anything else
// panics on the nil embedded interface.
type memTx struct {
	pgx.Tx
	store *Store
	undo  []func()
	done  bool
}

func (t *memTx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

// Commit keeps every change and releases the lock.
func (t *memTx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

// Rollback reverts every change in reverse order and releases the lock.
// After Commit it returns pgx.ErrTxClosed like a pgx transaction.
func (t *memTx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}
