// Package escrow implements the delegation and escrow ledger: capability
// grants from principals to agents, and the pooled per-agent balances those
// grants fund.
//
// Balances are pooled per agent across every principal that deposited to it.
// Revoking one principal's delegation does not partition or return that
// principal's portion of the pool; it only blocks future pledges backed by
// that grant.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// Ledger errors. All are precondition violations: rejected synchronously
// with zero state mutation, non-retryable without changing inputs.
var (
	ErrInvalidAgent       = errors.New("agent cannot be empty")
	ErrInvalidPrincipal   = errors.New("principal cannot be empty")
	ErrInvalidAmount      = errors.New("delegation ceiling must be positive")
	ErrNoDelegation       = errors.New("no delegation from principal to agent")
	ErrDelegationExpired  = errors.New("delegation has expired")
	ErrZeroAmount         = errors.New("amount must be positive")
	ErrInsufficientEscrow = errors.New("insufficient escrow balance")
)

// Ledger owns delegation records and pooled escrow balances.
// All mutations run under the instance operation lock.
type Ledger struct {
	bb  *boardroom.Client
	now func() time.Time
}

// NewLedger creates a ledger over the given boardroom client.
func NewLedger(bb *boardroom.Client) *Ledger {
	return &Ledger{
		bb:  bb,
		now: time.Now,
	}
}

// SetNow overrides the ledger's clock. Intended for tests.
func (l *Ledger) SetNow(now func() time.Time) {
	l.now = now
}

// RegisterDelegation creates or overwrites the grant from principal to
// agent. A zero expiry means the grant never expires. The attestation is
// stored verbatim for audit and is not verified.
func (l *Ledger) RegisterDelegation(ctx context.Context, principal, agent string, maxAmount, expiryMs int64, attestation string) error {
	if agent == "" {
		return ErrInvalidAgent
	}
	if principal == "" {
		return ErrInvalidPrincipal
	}
	if maxAmount <= 0 {
		return ErrInvalidAmount
	}

	return l.bb.WithLock(ctx, func(ctx context.Context) error {
		nowMs := l.now().UnixMilli()
		d := &boardroom.Delegation{
			Principal:      principal,
			Agent:          agent,
			MaxAmount:      maxAmount,
			ExpiryMs:       expiryMs,
			Attestation:    attestation,
			RegisteredAtMs: nowMs,
		}
		if err := l.bb.PutDelegation(ctx, d); err != nil {
			return fmt.Errorf("failed to register delegation: %w", err)
		}

		return l.bb.PublishEvent(ctx, &boardroom.Event{
			Type:      boardroom.EventDelegationRegistered,
			Principal: principal,
			Agent:     agent,
			Amount:    maxAmount,
			AtMs:      nowMs,
		})
	})
}

// Deposit adds funds to an agent's pooled escrow balance. The principal must
// hold an active, non-expired delegation to the agent; the deposit itself is
// not tied to the grant after creation.
func (l *Ledger) Deposit(ctx context.Context, principal, agent string, amount int64) error {
	return l.bb.WithLock(ctx, func(ctx context.Context) error {
		d, err := l.bb.GetDelegation(ctx, principal, agent)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrNoDelegation
			}
			return fmt.Errorf("failed to load delegation: %w", err)
		}

		nowMs := l.now().UnixMilli()
		if d.ExpiredAt(nowMs) {
			return ErrDelegationExpired
		}
		if amount <= 0 {
			return ErrZeroAmount
		}

		if _, err := l.bb.AdjustEscrow(ctx, agent, amount); err != nil {
			return fmt.Errorf("failed to credit escrow: %w", err)
		}

		return l.bb.PublishEvent(ctx, &boardroom.Event{
			Type:      boardroom.EventEscrowDeposited,
			Principal: principal,
			Agent:     agent,
			Amount:    amount,
			AtMs:      nowMs,
		})
	})
}

// Revoke deletes the grant from principal to agent. The pooled escrow
// balance is untouched: revocation only prevents future pledges.
func (l *Ledger) Revoke(ctx context.Context, principal, agent string) error {
	return l.bb.WithLock(ctx, func(ctx context.Context) error {
		n, err := l.bb.DeleteDelegation(ctx, principal, agent)
		if err != nil {
			return fmt.Errorf("failed to revoke delegation: %w", err)
		}
		if n == 0 {
			return ErrNoDelegation
		}
		return nil
	})
}

// Debit removes funds from an agent's pooled balance. Invoked only by the
// coordinator while it already holds the operation lock, so the
// check-then-decrement pair cannot interleave with a concurrent debit.
func (l *Ledger) Debit(ctx context.Context, agent string, amount int64) error {
	if amount <= 0 {
		return ErrZeroAmount
	}

	balance, err := l.bb.EscrowBalance(ctx, agent)
	if err != nil {
		return fmt.Errorf("failed to read escrow balance: %w", err)
	}
	if balance < amount {
		return ErrInsufficientEscrow
	}

	if _, err := l.bb.AdjustEscrow(ctx, agent, -amount); err != nil {
		return fmt.Errorf("failed to debit escrow: %w", err)
	}
	return nil
}

// GetDelegation returns the active grant from principal to agent.
// Returns ErrNoDelegation if none exists.
func (l *Ledger) GetDelegation(ctx context.Context, principal, agent string) (*boardroom.Delegation, error) {
	d, err := l.bb.GetDelegation(ctx, principal, agent)
	if err != nil {
		if boardroom.IsNotFound(err) {
			return nil, ErrNoDelegation
		}
		return nil, fmt.Errorf("failed to load delegation: %w", err)
	}
	return d, nil
}

// Balance returns an agent's pooled escrow balance. Unknown agents have a
// zero balance.
func (l *Ledger) Balance(ctx context.Context, agent string) (int64, error) {
	return l.bb.EscrowBalance(ctx, agent)
}
