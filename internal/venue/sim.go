package venue

import (
	"context"
	"fmt"
	"sync"
)

// Sim is an in-process simulated acquisition venue for local runs and tests.
// It converts spent capital into asset units at a fixed rate, tracks the
// protocol's holdings and per-participant payouts, and can be told to refuse
// transfers to specific recipients to model uncooperative payees.
//
// Holdings and balances live in process memory: components that must observe
// the same venue state have to share a single Sim.
//
// Sim is safe for concurrent use.
type Sim struct {
	mu       sync.Mutex
	rate     int64           // asset units received per capital unit spent
	assets   map[string]bool // resolvable asset ids
	holdings map[string]int64
	balances map[string]map[string]int64 // agent -> assetID -> units
	feesPaid map[string]int64
	deny     map[string]bool
}

// NewSim creates a simulated venue that resolves the given assets and
// purchases at the given rate. Rates below 1 are clamped to 1.
func NewSim(rate int64, assets ...string) *Sim {
	if rate < 1 {
		rate = 1
	}
	known := make(map[string]bool, len(assets))
	for _, a := range assets {
		known[a] = true
	}
	return &Sim{
		rate:     rate,
		assets:   known,
		holdings: make(map[string]int64),
		balances: make(map[string]map[string]int64),
		feesPaid: make(map[string]int64),
		deny:     make(map[string]bool),
	}
}

// Deny makes future transfers and fee payments to the recipient fail.
func (s *Sim) Deny(recipient string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deny[recipient] = true
}

// ResolveAsset implements Venue.
func (s *Sim) ResolveAsset(_ context.Context, assetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[assetID], nil
}

// Purchase implements Venue. The purchased units land in the protocol's
// holdings of the asset.
func (s *Sim) Purchase(_ context.Context, assetID string, spend int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.assets[assetID] {
		return fmt.Errorf("venue cannot resolve asset %q", assetID)
	}
	if spend <= 0 {
		return fmt.Errorf("purchase amount must be positive, got %d", spend)
	}
	s.holdings[assetID] += spend * s.rate
	return nil
}

// Holdings implements Venue.
func (s *Sim) Holdings(_ context.Context, assetID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holdings[assetID], nil
}

// TransferAsset implements Venue.
func (s *Sim) TransferAsset(_ context.Context, assetID, to string, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deny[to] {
		return fmt.Errorf("recipient %q refused asset transfer", to)
	}
	if qty <= 0 {
		return fmt.Errorf("transfer quantity must be positive, got %d", qty)
	}
	if s.holdings[assetID] < qty {
		return fmt.Errorf("insufficient protocol holdings of %q: have %d, need %d", assetID, s.holdings[assetID], qty)
	}
	s.holdings[assetID] -= qty
	if s.balances[to] == nil {
		s.balances[to] = make(map[string]int64)
	}
	s.balances[to][assetID] += qty
	return nil
}

// PayFee implements Venue.
func (s *Sim) PayFee(_ context.Context, to string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deny[to] {
		return fmt.Errorf("recipient %q refused fee payment", to)
	}
	if amount < 0 {
		return fmt.Errorf("fee payment cannot be negative, got %d", amount)
	}
	s.feesPaid[to] += amount
	return nil
}

// AgentHoldings returns a participant's received units of an asset.
func (s *Sim) AgentHoldings(agent, assetID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[agent][assetID]
}

// FeesPaidTo returns the total fee amount paid out to a participant.
func (s *Sim) FeesPaidTo(agent string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feesPaid[agent]
}
