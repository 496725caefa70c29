// Package coordinator implements the review lifecycle state machine: opening
// a review, accepting one thesis per agent during the deliberation window,
// executing the pooled purchase at the deadline, and gating claims on the
// resulting shares.
//
// State machine per review: Open -> (deadline reached) -> Executed. Every
// operation that calls out to the acquisition venue commits its own state
// first, so a reentrant call observes the already-advanced state and fails
// closed; if the venue call itself fails the flag is compensated back so the
// operation can be retried.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vpalmerio/clawdera/internal/allocation"
	"github.com/vpalmerio/clawdera/internal/escrow"
	"github.com/vpalmerio/clawdera/internal/venue"
	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// Coordinator errors. All precondition violations are rejected synchronously
// with zero state mutation.
var (
	ErrReviewNotFound      = errors.New("review does not exist")
	ErrAlreadyExecuted     = errors.New("review already executed")
	ErrWindowClosed        = errors.New("deliberation window has closed")
	ErrWindowNotClosed     = errors.New("deliberation window has not closed")
	ErrNoValidDelegation   = errors.New("no active delegation from principal to caller")
	ErrDuplicateThesis     = errors.New("agent already submitted a thesis on this review")
	ErrMustPledgeIfBullish = errors.New("bullish thesis requires a positive pledge")
	ErrExceedsLimit        = errors.New("pledge exceeds delegation ceiling")
	ErrFeeTooLow           = errors.New("submission fee below configured minimum")
	ErrInvalidAsset        = errors.New("asset is empty or not recognized by the venue")
	ErrNotExecuted         = errors.New("review has not executed")
	ErrNoShare             = errors.New("caller holds no token share on this review")
	ErrAlreadyClaimed      = errors.New("share already claimed")
)

// Scheduler registers deferred-execution requests with the trigger.
// The trigger is best-effort; Execute stays manually invokable as a fallback.
type Scheduler interface {
	Schedule(ctx context.Context, reviewID, deadlineMs int64) (handle string, err error)
}

// Coordinator owns review, thesis and share records. It depends on the
// escrow ledger for pledge validation and debiting, and on the venue adapter
// for purchases and transfers.
type Coordinator struct {
	bb     *boardroom.Client
	ledger *escrow.Ledger
	venue  venue.Venue
	sched  Scheduler // may be nil: reviews then rely on manual execution

	window time.Duration
	minFee int64
	now    func() time.Time
}

// New creates a coordinator. window is the deliberation window applied to
// every new review; minFee the minimum submission fee.
func New(bb *boardroom.Client, ledger *escrow.Ledger, v venue.Venue, sched Scheduler, window time.Duration, minFee int64) *Coordinator {
	return &Coordinator{
		bb:     bb,
		ledger: ledger,
		venue:  v,
		sched:  sched,
		window: window,
		minFee: minFee,
		now:    time.Now,
	}
}

// SetNow overrides the coordinator's clock. Intended for tests.
func (co *Coordinator) SetNow(now func() time.Time) {
	co.now = now
}

// SubmitAsset opens a new review for an asset. The fee must meet the
// configured minimum and the asset must be resolvable by the venue. The
// review id is allocated densely from zero, the deadline set one window out,
// and a deferred-execution request registered with the trigger.
func (co *Coordinator) SubmitAsset(ctx context.Context, creator, assetID string, fee int64) (*boardroom.Review, error) {
	if fee < co.minFee {
		return nil, ErrFeeTooLow
	}
	if assetID == "" {
		return nil, ErrInvalidAsset
	}

	known, err := co.venue.ResolveAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve asset: %w", err)
	}
	if !known {
		return nil, ErrInvalidAsset
	}

	var review *boardroom.Review
	err = co.bb.WithLock(ctx, func(ctx context.Context) error {
		id, err := co.bb.NextReviewID(ctx)
		if err != nil {
			return err
		}

		nowMs := co.now().UnixMilli()
		review = &boardroom.Review{
			ID:            id,
			AssetID:       assetID,
			Creator:       creator,
			SubmissionFee: fee,
			DeadlineMs:    nowMs + co.window.Milliseconds(),
			CreatedAtMs:   nowMs,
		}

		// The handle is observability only; the manual fallback covers a
		// trigger that never fires.
		if co.sched != nil {
			handle, err := co.sched.Schedule(ctx, id, review.DeadlineMs)
			if err != nil {
				return fmt.Errorf("failed to schedule execution: %w", err)
			}
			review.TriggerHandle = handle
		}

		if err := co.bb.PutReview(ctx, review); err != nil {
			return err
		}

		co.logEvent("asset_submitted", map[string]interface{}{
			"review_id": id,
			"asset_id":  assetID,
			"creator":   creator,
			"fee":       fee,
			"deadline":  review.DeadlineMs,
		})

		return co.bb.PublishEvent(ctx, &boardroom.Event{
			Type:     boardroom.EventAssetSubmitted,
			ReviewID: id,
			AssetID:  assetID,
			Agent:    creator,
			Amount:   fee,
			AtMs:     nowMs,
		})
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// SubmitThesis records an agent's stance on an open review. A bullish thesis
// pledges principal-delegated capital, debited from the agent's pooled
// escrow; a bearish thesis pledges nothing but still counts toward fee
// distribution. One thesis per (review, agent), immutable once written.
func (co *Coordinator) SubmitThesis(ctx context.Context, agent string, reviewID int64, text string, bullish bool, pledged int64, principal string) error {
	return co.bb.WithLock(ctx, func(ctx context.Context) error {
		review, err := co.bb.GetReview(ctx, reviewID)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to load review: %w", err)
		}
		if review.Executed {
			return ErrAlreadyExecuted
		}

		nowMs := co.now().UnixMilli()
		if nowMs >= review.DeadlineMs {
			return ErrWindowClosed
		}

		delegation, err := co.bb.GetDelegation(ctx, principal, agent)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrNoValidDelegation
			}
			return fmt.Errorf("failed to load delegation: %w", err)
		}
		if delegation.ExpiredAt(nowMs) {
			return escrow.ErrDelegationExpired
		}

		if _, err := co.bb.GetThesis(ctx, reviewID, agent); err == nil {
			return ErrDuplicateThesis
		} else if !boardroom.IsNotFound(err) {
			return fmt.Errorf("failed to check for existing thesis: %w", err)
		}

		if bullish {
			if pledged <= 0 {
				return ErrMustPledgeIfBullish
			}
			if pledged > delegation.MaxAmount {
				return ErrExceedsLimit
			}
			if err := co.ledger.Debit(ctx, agent, pledged); err != nil {
				return err
			}

			review.TotalPledged += pledged
			if err := co.bb.PutReview(ctx, review); err != nil {
				return err
			}

			share := &boardroom.Share{
				ReviewID:      reviewID,
				Agent:         agent,
				PledgedAmount: pledged,
			}
			if err := co.bb.PutShare(ctx, share); err != nil {
				return err
			}
		} else {
			pledged = 0
		}

		thesis := &boardroom.Thesis{
			ReviewID:      reviewID,
			Agent:         agent,
			Text:          text,
			Bullish:       bullish,
			PledgedAmount: pledged,
			SubmittedAtMs: nowMs,
		}
		if err := co.bb.PutThesis(ctx, thesis); err != nil {
			return err
		}
		if err := co.bb.AppendParticipant(ctx, reviewID, agent); err != nil {
			return err
		}

		co.logEvent("thesis_submitted", map[string]interface{}{
			"review_id": reviewID,
			"agent":     agent,
			"bullish":   bullish,
			"pledged":   pledged,
		})

		return co.bb.PublishEvent(ctx, &boardroom.Event{
			Type:      boardroom.EventThesisSubmitted,
			ReviewID:  reviewID,
			Agent:     agent,
			Principal: principal,
			Amount:    pledged,
			AtMs:      nowMs,
		})
	})
}

// Execute closes a review once its deadline has passed: it performs the
// pooled purchase, allocates token shares, and distributes the submission
// fee. Any caller may invoke it once the window closes; the trigger daemon is
// just one such caller. A second invocation of a completed execution fails
// with ErrAlreadyExecuted. If the venue refuses the purchase the executed
// flag is compensated back and the due entry kept, so the trigger (or a
// manual caller) can retry.
func (co *Coordinator) Execute(ctx context.Context, reviewID int64) error {
	return co.bb.WithLock(ctx, func(ctx context.Context) error {
		review, err := co.bb.GetReview(ctx, reviewID)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to load review: %w", err)
		}
		if review.Executed {
			return ErrAlreadyExecuted
		}

		nowMs := co.now().UnixMilli()
		if nowMs < review.DeadlineMs {
			return ErrWindowNotClosed
		}

		// Commit the flag before any external interaction. A reentrant
		// Execute for the same id now observes AlreadyExecuted.
		review.Executed = true
		if err := co.bb.PutReview(ctx, review); err != nil {
			return err
		}

		participants, err := co.bb.Participants(ctx, reviewID)
		if err != nil {
			return err
		}

		if review.TotalPledged == 0 {
			// Nothing to purchase. The fee still pays out to everyone who
			// deliberated; with zero submitters there is nothing to do.
			if len(participants) > 0 {
				co.distributeFee(ctx, review, participants)
			}
			co.logEvent("review_settled_without_purchase", map[string]interface{}{
				"review_id":    reviewID,
				"participants": len(participants),
			})
			return co.bb.RemoveDue(ctx, reviewID)
		}

		// Measure quantity received by diffing our own holdings around the
		// purchase; the venue's report is never trusted.
		before, err := co.venue.Holdings(ctx, review.AssetID)
		if err != nil {
			return co.compensateExecute(ctx, review, fmt.Errorf("failed to snapshot holdings: %w", err))
		}
		if err := co.venue.Purchase(ctx, review.AssetID, review.TotalPledged); err != nil {
			return co.compensateExecute(ctx, review, fmt.Errorf("venue purchase failed: %w", err))
		}
		after, err := co.venue.Holdings(ctx, review.AssetID)
		if err != nil {
			return co.compensateExecute(ctx, review, fmt.Errorf("failed to snapshot holdings: %w", err))
		}

		review.TotalPurchased = after - before
		if err := co.bb.PutReview(ctx, review); err != nil {
			return err
		}

		if err := co.allocateShares(ctx, review, participants, nowMs); err != nil {
			return err
		}

		co.logEvent("review_executed", map[string]interface{}{
			"review_id":       reviewID,
			"asset_id":        review.AssetID,
			"total_pledged":   review.TotalPledged,
			"total_purchased": review.TotalPurchased,
		})
		if err := co.bb.PublishEvent(ctx, &boardroom.Event{
			Type:     boardroom.EventReviewExecuted,
			ReviewID: reviewID,
			AssetID:  review.AssetID,
			Amount:   review.TotalPurchased,
			AtMs:     nowMs,
		}); err != nil {
			return err
		}

		co.distributeFee(ctx, review, participants)
		return co.bb.RemoveDue(ctx, reviewID)
	})
}

// compensateExecute reverses the executed flag after a failed venue
// interaction so the review stays executable. Runs under the operation
// lock, so no other caller can observe the transient flag. The due entry
// is deliberately not removed; the trigger retries on its next tick.
func (co *Coordinator) compensateExecute(ctx context.Context, review *boardroom.Review, cause error) error {
	review.Executed = false
	if putErr := co.bb.PutReview(ctx, review); putErr != nil {
		return fmt.Errorf("%v and executed flag could not be restored: %w", cause, putErr)
	}
	co.logEvent("execution_rolled_back", map[string]interface{}{
		"review_id": review.ID,
		"error":     cause.Error(),
	})
	return cause
}

// allocateShares writes each bullish participant's token share, computed
// independently per agent with no remainder redistribution. Rounding dust
// stays in the protocol's holdings.
func (co *Coordinator) allocateShares(ctx context.Context, review *boardroom.Review, participants []string, nowMs int64) error {
	if review.TotalPurchased <= 0 {
		return nil
	}

	pledges := make([]allocation.Pledge, 0, len(participants))
	shares := make([]*boardroom.Share, 0, len(participants))
	for _, agent := range participants {
		share, err := co.bb.GetShare(ctx, review.ID, agent)
		if err != nil {
			if boardroom.IsNotFound(err) {
				continue // bearish participant, no share
			}
			return fmt.Errorf("failed to load share: %w", err)
		}
		pledges = append(pledges, allocation.Pledge{Agent: agent, Amount: share.PledgedAmount})
		shares = append(shares, share)
	}

	tokenShares := allocation.TokenShares(pledges, review.TotalPledged, review.TotalPurchased)
	for i, share := range shares {
		share.TokenShare = tokenShares[i]
		if err := co.bb.PutShare(ctx, share); err != nil {
			return err
		}
		if err := co.bb.PublishEvent(ctx, &boardroom.Event{
			Type:     boardroom.EventShareUpdated,
			ReviewID: review.ID,
			Agent:    share.Agent,
			Amount:   share.TokenShare,
			AtMs:     nowMs,
		}); err != nil {
			return err
		}
	}
	return nil
}

// distributeFee splits the review's flat submission fee across all thesis
// submitters in submission order; the last submitter absorbs the remainder
// so the fee distributes exactly. Each payment is attempted independently: a
// recipient that refuses payment is logged and skipped, and distribution
// continues for the rest.
func (co *Coordinator) distributeFee(ctx context.Context, review *boardroom.Review, participants []string) {
	amounts := allocation.FeeSplit(review.SubmissionFee, len(participants))
	nowMs := co.now().UnixMilli()

	for i, agent := range participants {
		if err := co.venue.PayFee(ctx, agent, amounts[i]); err != nil {
			log.Printf("[Coordinator] Fee payment to %s failed for review %d: %v", agent, review.ID, err)
			co.logEvent("fee_payment_failed", map[string]interface{}{
				"review_id": review.ID,
				"agent":     agent,
				"amount":    amounts[i],
				"error":     err.Error(),
			})
			_ = co.bb.PublishEvent(ctx, &boardroom.Event{
				Type:     boardroom.EventFeePaymentFailed,
				ReviewID: review.ID,
				Agent:    agent,
				Amount:   amounts[i],
				Detail:   err.Error(),
				AtMs:     nowMs,
			})
			continue
		}
	}

	co.logEvent("fee_distributed", map[string]interface{}{
		"review_id":    review.ID,
		"fee":          review.SubmissionFee,
		"participants": len(participants),
	})
	_ = co.bb.PublishEvent(ctx, &boardroom.Event{
		Type:     boardroom.EventFeeDistributed,
		ReviewID: review.ID,
		Amount:   review.SubmissionFee,
		AtMs:     nowMs,
	})
}

// Claim transfers a bullish participant's token share of the purchased
// asset. The claimed flag commits before the transfer (pull-payment
// ordering), so a reentrant claim during the transfer observes
// AlreadyClaimed. If the transfer itself fails the flag is compensated back
// and the error returned; a failed payout does not burn the share.
func (co *Coordinator) Claim(ctx context.Context, agent string, reviewID int64) error {
	return co.bb.WithLock(ctx, func(ctx context.Context) error {
		review, err := co.bb.GetReview(ctx, reviewID)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to load review: %w", err)
		}
		if !review.Executed {
			return ErrNotExecuted
		}

		share, err := co.bb.GetShare(ctx, reviewID, agent)
		if err != nil {
			if boardroom.IsNotFound(err) {
				return ErrNoShare
			}
			return fmt.Errorf("failed to load share: %w", err)
		}
		if share.TokenShare == 0 {
			return ErrNoShare
		}
		if share.Claimed {
			return ErrAlreadyClaimed
		}

		share.Claimed = true
		if err := co.bb.PutShare(ctx, share); err != nil {
			return err
		}

		if err := co.venue.TransferAsset(ctx, review.AssetID, agent, share.TokenShare); err != nil {
			share.Claimed = false
			if putErr := co.bb.PutShare(ctx, share); putErr != nil {
				return fmt.Errorf("asset transfer failed (%v) and claim flag could not be restored: %w", err, putErr)
			}
			return fmt.Errorf("asset transfer failed: %w", err)
		}

		co.logEvent("tokens_claimed", map[string]interface{}{
			"review_id": reviewID,
			"agent":     agent,
			"amount":    share.TokenShare,
		})
		return co.bb.PublishEvent(ctx, &boardroom.Event{
			Type:     boardroom.EventTokensClaimed,
			ReviewID: reviewID,
			AssetID:  review.AssetID,
			Agent:    agent,
			Amount:   share.TokenShare,
			AtMs:     co.now().UnixMilli(),
		})
	})
}

// logEvent logs a structured event in JSON format.
func (co *Coordinator) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = co.now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "coordinator"
	data["event_type"] = eventType
	data["instance"] = co.bb.InstanceName()

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Coordinator] Failed to marshal log event: %v", err)
		return
	}
	log.Println(string(jsonData))
}
