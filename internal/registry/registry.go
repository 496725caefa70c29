// Package registry implements the identity and reputation registry:
// one-time participant self-registration plus the administrator-gated
// reputation bookkeeping that follows executed reviews.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// Registry errors.
var (
	ErrInvalidAgent      = errors.New("agent cannot be empty")
	ErrAlreadyRegistered = errors.New("agent already registered")
	ErrNotRegistered     = errors.New("agent has no identity record")
	ErrNotAdmin          = errors.New("caller is not the protocol administrator")
	ErrReviewNotFound    = errors.New("review does not exist")
	ErrReviewNotExecuted = errors.New("review has not executed")
	ErrAgentDidNotInvest = errors.New("agent has no positive pledge on this review")
)

// Registry owns agent identity records. Reputation updates are restricted to
// the administrator identity fixed at construction.
type Registry struct {
	bb    *boardroom.Client
	admin string
	now   func() time.Time
}

// NewRegistry creates a registry over the given boardroom client.
// admin is the single identity permitted to update reputation.
func NewRegistry(bb *boardroom.Client, admin string) *Registry {
	return &Registry{
		bb:    bb,
		admin: admin,
		now:   time.Now,
	}
}

// SetNow overrides the registry's clock. Intended for tests.
func (r *Registry) SetNow(now func() time.Time) {
	r.now = now
}

// RegisterIdentity creates an agent's identity record. Registration is
// one-time: a second call for the same address fails and identities are
// never deleted.
func (r *Registry) RegisterIdentity(ctx context.Context, agent, metadataURI string) error {
	if agent == "" {
		return ErrInvalidAgent
	}

	return r.bb.WithLock(ctx, func(ctx context.Context) error {
		_, err := r.bb.GetIdentity(ctx, agent)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !boardroom.IsNotFound(err) {
			return fmt.Errorf("failed to check identity: %w", err)
		}

		identity := &boardroom.AgentIdentity{
			Address:        agent,
			MetadataURI:    metadataURI,
			RegisteredAtMs: r.now().UnixMilli(),
		}
		if err := r.bb.PutIdentity(ctx, identity); err != nil {
			return fmt.Errorf("failed to register identity: %w", err)
		}
		return nil
	})
}

// UpdateReputation moves an agent's reputation by ±1 for its investment on
// an executed review. Only the administrator may call it.
//
// The operation is deliberately not idempotent: nothing prevents the
// administrator from recording the same (review, agent) outcome twice. That
// is a trust boundary on the admin; repeats stay auditable through the
// reputation-updated event feed.
func (r *Registry) UpdateReputation(ctx context.Context, caller string, reviewID int64, agent string, profitable bool) error {
	if caller != r.admin {
		return ErrNotAdmin
	}

	return r.bb.WithLock(ctx, func(ctx context.Context) error {
		review, err := r.bb.GetReview(ctx, reviewID)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to load review: %w", err)
		}
		if !review.Executed {
			return ErrReviewNotExecuted
		}

		share, err := r.bb.GetShare(ctx, reviewID, agent)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrAgentDidNotInvest
			}
			return fmt.Errorf("failed to load share: %w", err)
		}
		if share.PledgedAmount <= 0 {
			return ErrAgentDidNotInvest
		}

		identity, err := r.bb.GetIdentity(ctx, agent)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrNotRegistered
			}
			return fmt.Errorf("failed to load identity: %w", err)
		}

		identity.TotalTrades++
		if profitable {
			identity.ReputationScore++
			identity.ProfitableTrades++
		} else {
			identity.ReputationScore--
		}

		if err := r.bb.PutIdentity(ctx, identity); err != nil {
			return fmt.Errorf("failed to update identity: %w", err)
		}

		detail := "unprofitable"
		if profitable {
			detail = "profitable"
		}
		return r.bb.PublishEvent(ctx, &boardroom.Event{
			Type:     boardroom.EventReputationUpdated,
			ReviewID: reviewID,
			Agent:    agent,
			Amount:   identity.ReputationScore,
			Detail:   detail,
			AtMs:     r.now().UnixMilli(),
		})
	})
}

// GetIdentity returns an agent's identity record.
// Returns ErrNotRegistered if the agent never registered.
func (r *Registry) GetIdentity(ctx context.Context, agent string) (*boardroom.AgentIdentity, error) {
	identity, err := r.bb.GetIdentity(ctx, agent)
	if err != nil {
		if boardroom.IsNotFound(err) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	return identity, nil
}
