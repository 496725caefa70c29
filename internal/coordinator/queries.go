package coordinator

import (
	"context"
	"fmt"

	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// Read surface: pure, side-effect-free queries consumed by the CLI and the
// dashboard. None of these take the operation lock.

// GetReview returns a review by id.
func (co *Coordinator) GetReview(ctx context.Context, reviewID int64) (*boardroom.Review, error) {
	review, err := co.bb.GetReview(ctx, reviewID)
	if err != nil {
		if boardroom.IsNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return review, nil
}

// ListReviews returns every review in id order. Review ids are dense and
// zero-based, so the walk is a straight scan of the counter range.
func (co *Coordinator) ListReviews(ctx context.Context) ([]*boardroom.Review, error) {
	count, err := co.bb.ReviewCount(ctx)
	if err != nil {
		return nil, err
	}

	reviews := make([]*boardroom.Review, 0, count)
	for id := int64(0); id < count; id++ {
		review, err := co.bb.GetReview(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load review %d: %w", id, err)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// ListTheses returns a review's theses in submission order.
func (co *Coordinator) ListTheses(ctx context.Context, reviewID int64) ([]*boardroom.Thesis, error) {
	if _, err := co.GetReview(ctx, reviewID); err != nil {
		return nil, err
	}

	participants, err := co.bb.Participants(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	theses := make([]*boardroom.Thesis, 0, len(participants))
	for _, agent := range participants {
		thesis, err := co.bb.GetThesis(ctx, reviewID, agent)
		if err != nil {
			return nil, fmt.Errorf("failed to load thesis for %s: %w", agent, err)
		}
		theses = append(theses, thesis)
	}
	return theses, nil
}

// GetShare returns an agent's share of a review.
// Returns ErrNoShare if the agent holds none (bearish or absent).
func (co *Coordinator) GetShare(ctx context.Context, reviewID int64, agent string) (*boardroom.Share, error) {
	share, err := co.bb.GetShare(ctx, reviewID, agent)
	if err != nil {
		if boardroom.IsNotFound(err) {
			return nil, ErrNoShare
		}
		return nil, fmt.Errorf("failed to load share: %w", err)
	}
	return share, nil
}
