package service

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"aid-ledger/internal/core/domain"
	"aid-ledger/internal/core/ports"
)

// Vendor selection strategies accepted by distribution.vendor_selection.
const (
	SelectionRandom     = "random"
	SelectionRoundRobin = "round_robin"
)

// NewVendorSelector returns the selector for a configured strategy name.
func NewVendorSelector(strategy string) (ports.VendorSelector, error) {
	switch strategy {
	case SelectionRandom, "":
		return NewRandomSelector(), nil
	case SelectionRoundRobin:
		return NewRoundRobinSelector(), nil
	}
	return nil, fmt.Errorf("unknown vendor selection strategy %q", strategy)
}

// RandomSelector picks uniformly at random among eligible vendors.
type RandomSelector struct {
	intN func(n int) int
}

// NewRandomSelector creates a uniform random selector.
func NewRandomSelector() *RandomSelector {
	return &RandomSelector{intN: rand.IntN}
}

// Pick implements ports.VendorSelector.
func (s *RandomSelector) Pick(_ domain.Category, vendors []domain.Vendor) domain.Vendor {
	return vendors[s.intN(len(vendors))]
}

// RoundRobinSelector rotates through eligible vendors per category. The
// cursor is process-local and restarts at zero on boot.
type RoundRobinSelector struct {
	mu     sync.Mutex
	cursor map[domain.Category]int
}

// NewRoundRobinSelector creates a round-robin selector.
func NewRoundRobinSelector() *RoundRobinSelector {
	return &RoundRobinSelector{cursor: make(map[domain.Category]int)}
}

// Pick implements ports.VendorSelector.
func (s *RoundRobinSelector) Pick(category domain.Category, vendors []domain.Vendor) domain.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cursor[category] % len(vendors)
	s.cursor[category] = i + 1
	return vendors[i]
}
