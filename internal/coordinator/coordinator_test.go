package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpalmerio/clawdera/internal/escrow"
	"github.com/vpalmerio/clawdera/internal/venue"
	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// testRig wires a coordinator over miniredis with a controllable clock.
type testRig struct {
	bb     *boardroom.Client
	ledger *escrow.Ledger
	sim    *venue.Sim
	coord  *Coordinator
	nowMs  int64
}

func setupRig(t *testing.T) *testRig {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := boardroom.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ledger := escrow.NewLedger(client)
	sim := venue.NewSim(2, "ASSET-ALPHA", "ASSET-BETA")
	coord := New(client, ledger, sim, nil, time.Hour, 10)

	rig := &testRig{
		bb:     client,
		ledger: ledger,
		sim:    sim,
		coord:  coord,
		nowMs:  1_700_000_000_000,
	}
	clock := func() time.Time { return time.UnixMilli(rig.nowMs) }
	coord.SetNow(clock)
	ledger.SetNow(clock)
	return rig
}

// advancePastDeadline moves the rig clock one window past the given review.
func (r *testRig) advancePastDeadline(t *testing.T, reviewID int64) {
	t.Helper()
	review, err := r.bb.GetReview(context.Background(), reviewID)
	require.NoError(t, err)
	r.nowMs = review.DeadlineMs
}

// fund registers a delegation and deposits escrow for an agent.
func (r *testRig) fund(t *testing.T, principal, agent string, maxAmount, deposit int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.ledger.RegisterDelegation(ctx, principal, agent, maxAmount, 0, ""))
	if deposit > 0 {
		require.NoError(t, r.ledger.Deposit(ctx, principal, agent, deposit))
	}
}

func TestSubmitAsset(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	t.Run("opens a review with dense ids", func(t *testing.T) {
		rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rev.ID)
		assert.Equal(t, rig.nowMs+time.Hour.Milliseconds(), rev.DeadlineMs)
		assert.False(t, rev.Executed)

		rev2, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-BETA", 100)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rev2.ID)
	})

	t.Run("rejects fee below minimum", func(t *testing.T) {
		_, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 9)
		assert.ErrorIs(t, err, ErrFeeTooLow)
	})

	t.Run("rejects unknown asset", func(t *testing.T) {
		_, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-UNKNOWN", 100)
		assert.ErrorIs(t, err, ErrInvalidAsset)
	})

	t.Run("rejects empty asset", func(t *testing.T) {
		_, err := rig.coord.SubmitAsset(ctx, "bob", "", 100)
		assert.ErrorIs(t, err, ErrInvalidAsset)
	})
}

func TestSubmitThesis(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rig.fund(t, "alice", "agent-1", 1000, 1000)
	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)

	t.Run("bullish thesis debits escrow and creates a share", func(t *testing.T) {
		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "undervalued", true, 400, "alice")
		require.NoError(t, err)

		balance, err := rig.ledger.Balance(ctx, "agent-1")
		require.NoError(t, err)
		assert.Equal(t, int64(600), balance)

		share, err := rig.bb.GetShare(ctx, rev.ID, "agent-1")
		require.NoError(t, err)
		assert.Equal(t, int64(400), share.PledgedAmount)
		assert.Equal(t, int64(0), share.TokenShare)

		updated, err := rig.bb.GetReview(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(400), updated.TotalPledged)
	})

	t.Run("duplicate thesis rejected", func(t *testing.T) {
		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "again", true, 100, "alice")
		assert.ErrorIs(t, err, ErrDuplicateThesis)
	})

	t.Run("bearish thesis creates no share and debits nothing", func(t *testing.T) {
		rig.fund(t, "carol", "agent-2", 500, 500)

		err := rig.coord.SubmitThesis(ctx, "agent-2", rev.ID, "overvalued", false, 0, "carol")
		require.NoError(t, err)

		balance, err := rig.ledger.Balance(ctx, "agent-2")
		require.NoError(t, err)
		assert.Equal(t, int64(500), balance)

		_, err = rig.bb.GetShare(ctx, rev.ID, "agent-2")
		assert.True(t, boardroom.IsNotFound(err))
	})

	t.Run("participants recorded in submission order", func(t *testing.T) {
		agents, err := rig.bb.Participants(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"agent-1", "agent-2"}, agents)
	})
}

func TestSubmitThesisPreconditions(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rig.fund(t, "alice", "agent-1", 500, 300)
	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)

	t.Run("unknown review", func(t *testing.T) {
		err := rig.coord.SubmitThesis(ctx, "agent-1", 42, "x", true, 100, "alice")
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})

	t.Run("no delegation", func(t *testing.T) {
		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "x", true, 100, "mallory")
		assert.ErrorIs(t, err, ErrNoValidDelegation)
	})

	t.Run("expired delegation", func(t *testing.T) {
		require.NoError(t, rig.ledger.RegisterDelegation(ctx, "dave", "agent-1", 500, rig.nowMs+1000, ""))
		rig.nowMs += 1000

		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "x", true, 100, "dave")
		assert.ErrorIs(t, err, escrow.ErrDelegationExpired)
	})

	t.Run("bullish without pledge", func(t *testing.T) {
		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "x", true, 0, "alice")
		assert.ErrorIs(t, err, ErrMustPledgeIfBullish)
	})

	t.Run("pledge above delegation ceiling leaves state untouched", func(t *testing.T) {
		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "x", true, 501, "alice")
		assert.ErrorIs(t, err, ErrExceedsLimit)

		balance, err := rig.ledger.Balance(ctx, "agent-1")
		require.NoError(t, err)
		assert.Equal(t, int64(300), balance)

		review, err := rig.bb.GetReview(ctx, rev.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), review.TotalPledged)

		agents, err := rig.bb.Participants(ctx, rev.ID)
		require.NoError(t, err)
		assert.Empty(t, agents)
	})

	t.Run("pledge above escrow balance", func(t *testing.T) {
		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "x", true, 400, "alice")
		assert.ErrorIs(t, err, escrow.ErrInsufficientEscrow)
	})

	t.Run("window closed", func(t *testing.T) {
		rig.advancePastDeadline(t, rev.ID)

		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "x", true, 100, "alice")
		assert.ErrorIs(t, err, ErrWindowClosed)
	})

	t.Run("already executed", func(t *testing.T) {
		require.NoError(t, rig.coord.Execute(ctx, rev.ID))

		err := rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "x", true, 100, "alice")
		assert.ErrorIs(t, err, ErrAlreadyExecuted)
	})
}

// Two bullish agents at a doubling rate: proportional shares, even fee split.
func TestExecuteProportionalAllocation(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rig.fund(t, "alice", "agent-1", 1000, 1000)
	rig.fund(t, "carol", "agent-2", 1000, 1000)

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "in", true, 400, "alice"))
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-2", rev.ID, "in", true, 300, "carol"))

	rig.advancePastDeadline(t, rev.ID)
	require.NoError(t, rig.coord.Execute(ctx, rev.ID))

	executed, err := rig.bb.GetReview(ctx, rev.ID)
	require.NoError(t, err)
	assert.True(t, executed.Executed)
	assert.Equal(t, int64(700), executed.TotalPledged)
	assert.Equal(t, int64(1400), executed.TotalPurchased)

	share1, err := rig.bb.GetShare(ctx, rev.ID, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(800), share1.TokenShare)

	share2, err := rig.bb.GetShare(ctx, rev.ID, "agent-2")
	require.NoError(t, err)
	assert.Equal(t, int64(600), share2.TokenShare)

	assert.Equal(t, int64(50), rig.sim.FeesPaidTo("agent-1"))
	assert.Equal(t, int64(50), rig.sim.FeesPaidTo("agent-2"))
}

// Three equal pledges over an inexact purchase: shares floor, dust stays in
// protocol holdings, the last submitter absorbs the fee remainder.
func TestExecuteRoundingDust(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	for _, pair := range []struct{ principal, agent string }{
		{"alice", "agent-1"}, {"carol", "agent-2"}, {"dave", "agent-3"},
	} {
		rig.fund(t, pair.principal, pair.agent, 100, 100)
	}

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "in", true, 33, "alice"))
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-2", rev.ID, "in", true, 33, "carol"))
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-3", rev.ID, "in", true, 34, "dave"))

	rig.advancePastDeadline(t, rev.ID)
	require.NoError(t, rig.coord.Execute(ctx, rev.ID))

	executed, err := rig.bb.GetReview(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), executed.TotalPledged)
	assert.Equal(t, int64(200), executed.TotalPurchased)

	var allocated int64
	for _, agent := range []string{"agent-1", "agent-2", "agent-3"} {
		share, err := rig.bb.GetShare(ctx, rev.ID, agent)
		require.NoError(t, err)
		allocated += share.TokenShare
	}
	assert.LessOrEqual(t, allocated, executed.TotalPurchased)
	assert.Less(t, executed.TotalPurchased-allocated, int64(3))

	// Fee splits exactly: 33 + 33 + 34.
	assert.Equal(t, int64(33), rig.sim.FeesPaidTo("agent-1"))
	assert.Equal(t, int64(33), rig.sim.FeesPaidTo("agent-2"))
	assert.Equal(t, int64(34), rig.sim.FeesPaidTo("agent-3"))
}

// All-bearish review: no purchase, fee still distributed.
func TestExecuteWithoutPledges(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rig.fund(t, "alice", "agent-1", 100, 0)
	rig.fund(t, "carol", "agent-2", 100, 0)

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 101)
	require.NoError(t, err)
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "out", false, 0, "alice"))
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-2", rev.ID, "out", false, 0, "carol"))

	rig.advancePastDeadline(t, rev.ID)
	require.NoError(t, rig.coord.Execute(ctx, rev.ID))

	executed, err := rig.bb.GetReview(ctx, rev.ID)
	require.NoError(t, err)
	assert.True(t, executed.Executed)
	assert.Equal(t, int64(0), executed.TotalPurchased)

	holdings, err := rig.sim.Holdings(ctx, "ASSET-ALPHA")
	require.NoError(t, err)
	assert.Equal(t, int64(0), holdings)

	assert.Equal(t, int64(50), rig.sim.FeesPaidTo("agent-1"))
	assert.Equal(t, int64(51), rig.sim.FeesPaidTo("agent-2"))
}

// Review that nobody deliberated on: executes, nothing moves.
func TestExecuteWithNoParticipants(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)

	rig.advancePastDeadline(t, rev.ID)
	require.NoError(t, rig.coord.Execute(ctx, rev.ID))

	executed, err := rig.bb.GetReview(ctx, rev.ID)
	require.NoError(t, err)
	assert.True(t, executed.Executed)
}

func TestExecutePreconditions(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)

	t.Run("unknown review", func(t *testing.T) {
		err := rig.coord.Execute(ctx, 42)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})

	t.Run("window still open", func(t *testing.T) {
		err := rig.coord.Execute(ctx, rev.ID)
		assert.ErrorIs(t, err, ErrWindowNotClosed)
	})

	t.Run("second execution rejected", func(t *testing.T) {
		rig.advancePastDeadline(t, rev.ID)
		require.NoError(t, rig.coord.Execute(ctx, rev.ID))

		err := rig.coord.Execute(ctx, rev.ID)
		assert.ErrorIs(t, err, ErrAlreadyExecuted)
	})
}

// flakyVenue wraps the sim and refuses a set number of purchases, modeling
// a transiently unavailable venue.
type flakyVenue struct {
	*venue.Sim
	failures int
}

func (f *flakyVenue) Purchase(ctx context.Context, assetID string, spend int64) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("venue temporarily unavailable")
	}
	return f.Sim.Purchase(ctx, assetID, spend)
}

// A refused purchase must not brick the review: the executed flag rolls
// back, the due entry survives, and a later attempt completes in full.
func TestExecuteRetryAfterVenueFailure(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	flaky := &flakyVenue{Sim: rig.sim, failures: 1}
	coord := New(rig.bb, rig.ledger, flaky, nil, time.Hour, 10)
	coord.SetNow(func() time.Time { return time.UnixMilli(rig.nowMs) })

	rig.fund(t, "alice", "agent-1", 1000, 1000)
	rev, err := coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)
	require.NoError(t, coord.SubmitThesis(ctx, "agent-1", rev.ID, "in", true, 300, "alice"))
	require.NoError(t, rig.bb.AddDue(ctx, rev.ID, rev.DeadlineMs))

	rig.advancePastDeadline(t, rev.ID)

	err = coord.Execute(ctx, rev.ID)
	require.ErrorContains(t, err, "venue purchase failed")

	review, err := rig.bb.GetReview(ctx, rev.ID)
	require.NoError(t, err)
	assert.False(t, review.Executed, "failed purchase must not leave the review executed")
	assert.Equal(t, int64(0), review.TotalPurchased)

	due, err := rig.bb.DueBefore(ctx, rig.nowMs)
	require.NoError(t, err)
	assert.Contains(t, due, rev.ID, "due entry must survive the failed attempt")

	// Pledged escrow stays committed to the pending review.
	balance, err := rig.ledger.Balance(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(700), balance)

	// The next attempt, as the trigger's retry would make it, settles fully.
	require.NoError(t, coord.Execute(ctx, rev.ID))

	executed, err := rig.bb.GetReview(ctx, rev.ID)
	require.NoError(t, err)
	assert.True(t, executed.Executed)
	assert.Equal(t, int64(600), executed.TotalPurchased)

	share, err := rig.bb.GetShare(ctx, rev.ID, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(600), share.TokenShare)
	assert.Equal(t, int64(100), rig.sim.FeesPaidTo("agent-1"))

	due, err = rig.bb.DueBefore(ctx, rig.nowMs)
	require.NoError(t, err)
	assert.NotContains(t, due, rev.ID)
}

// collectEvents drains the subscription until the fee_distributed event that
// closes out an execution, returning every event type seen in order.
func collectEvents(t *testing.T, sub *boardroom.EventSubscription) []boardroom.EventType {
	t.Helper()
	var seen []boardroom.EventType
	for {
		select {
		case ev := <-sub.Events():
			seen = append(seen, ev.Type)
			if ev.Type == boardroom.EventFeeDistributed {
				return seen
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for fee_distributed, saw %v", seen)
		}
	}
}

// Executing a pledged review announces the purchase on the accounting
// channel; the all-bearish settlement announces only the fee distribution.
func TestExecuteEventEmission(t *testing.T) {
	t.Run("purchase path emits review_executed", func(t *testing.T) {
		rig := setupRig(t)
		ctx := context.Background()

		rig.fund(t, "alice", "agent-1", 1000, 1000)
		rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
		require.NoError(t, err)
		require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "in", true, 400, "alice"))
		rig.advancePastDeadline(t, rev.ID)

		sub, err := rig.bb.SubscribeEvents(ctx)
		require.NoError(t, err)
		defer sub.Close()

		// Give the subscriber goroutine time to attach
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, rig.coord.Execute(ctx, rev.ID))

		seen := collectEvents(t, sub)
		assert.Contains(t, seen, boardroom.EventShareUpdated)
		assert.Contains(t, seen, boardroom.EventReviewExecuted)
	})

	t.Run("settlement without purchase stays silent about execution", func(t *testing.T) {
		rig := setupRig(t)
		ctx := context.Background()

		rig.fund(t, "alice", "agent-1", 100, 0)
		rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
		require.NoError(t, err)
		require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "out", false, 0, "alice"))
		rig.advancePastDeadline(t, rev.ID)

		sub, err := rig.bb.SubscribeEvents(ctx)
		require.NoError(t, err)
		defer sub.Close()

		// Give the subscriber goroutine time to attach
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, rig.coord.Execute(ctx, rev.ID))

		seen := collectEvents(t, sub)
		assert.Contains(t, seen, boardroom.EventFeeDistributed)
		assert.NotContains(t, seen, boardroom.EventReviewExecuted)
		assert.NotContains(t, seen, boardroom.EventShareUpdated)
	})
}

// One recipient refusing its fee payment must not block the others.
func TestDistributeFeeFailureIsolation(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rig.fund(t, "alice", "agent-1", 100, 0)
	rig.fund(t, "carol", "agent-2", 100, 0)
	rig.fund(t, "dave", "agent-3", 100, 0)
	rig.sim.Deny("agent-2")

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 99)
	require.NoError(t, err)
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "out", false, 0, "alice"))
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-2", rev.ID, "out", false, 0, "carol"))
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-3", rev.ID, "out", false, 0, "dave"))

	rig.advancePastDeadline(t, rev.ID)
	require.NoError(t, rig.coord.Execute(ctx, rev.ID))

	assert.Equal(t, int64(33), rig.sim.FeesPaidTo("agent-1"))
	assert.Equal(t, int64(0), rig.sim.FeesPaidTo("agent-2"))
	assert.Equal(t, int64(33), rig.sim.FeesPaidTo("agent-3"))
}

func TestClaim(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rig.fund(t, "alice", "agent-1", 1000, 1000)
	rig.fund(t, "carol", "agent-2", 1000, 1000)

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "in", true, 400, "alice"))
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-2", rev.ID, "out", false, 0, "carol"))

	t.Run("claim before execution rejected", func(t *testing.T) {
		err := rig.coord.Claim(ctx, "agent-1", rev.ID)
		assert.ErrorIs(t, err, ErrNotExecuted)
	})

	rig.advancePastDeadline(t, rev.ID)
	require.NoError(t, rig.coord.Execute(ctx, rev.ID))

	t.Run("claim transfers the allocated tokens", func(t *testing.T) {
		err := rig.coord.Claim(ctx, "agent-1", rev.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(800), rig.sim.AgentHoldings("agent-1", "ASSET-ALPHA"))

		share, err := rig.bb.GetShare(ctx, rev.ID, "agent-1")
		require.NoError(t, err)
		assert.True(t, share.Claimed)
	})

	t.Run("second claim rejected", func(t *testing.T) {
		err := rig.coord.Claim(ctx, "agent-1", rev.ID)
		assert.ErrorIs(t, err, ErrAlreadyClaimed)

		assert.Equal(t, int64(800), rig.sim.AgentHoldings("agent-1", "ASSET-ALPHA"))
	})

	t.Run("bearish participant has nothing to claim", func(t *testing.T) {
		err := rig.coord.Claim(ctx, "agent-2", rev.ID)
		assert.ErrorIs(t, err, ErrNoShare)
	})

	t.Run("stranger has nothing to claim", func(t *testing.T) {
		err := rig.coord.Claim(ctx, "nobody", rev.ID)
		assert.ErrorIs(t, err, ErrNoShare)
	})

	t.Run("unknown review", func(t *testing.T) {
		err := rig.coord.Claim(ctx, "agent-1", 42)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
}

// A failed transfer must not burn the share: the claimed flag rolls back and
// the claim succeeds once the recipient cooperates.
func TestClaimRollbackOnTransferFailure(t *testing.T) {
	rig := setupRig(t)
	ctx := context.Background()

	rig.fund(t, "alice", "agent-1", 1000, 1000)

	rev, err := rig.coord.SubmitAsset(ctx, "bob", "ASSET-ALPHA", 100)
	require.NoError(t, err)
	require.NoError(t, rig.coord.SubmitThesis(ctx, "agent-1", rev.ID, "in", true, 400, "alice"))

	rig.advancePastDeadline(t, rev.ID)
	require.NoError(t, rig.coord.Execute(ctx, rev.ID))

	rig.sim.Deny("agent-1")
	err = rig.coord.Claim(ctx, "agent-1", rev.ID)
	require.Error(t, err)

	share, err := rig.bb.GetShare(ctx, rev.ID, "agent-1")
	require.NoError(t, err)
	assert.False(t, share.Claimed, "failed transfer must not leave the share claimed")
	assert.Equal(t, int64(0), rig.sim.AgentHoldings("agent-1", "ASSET-ALPHA"))
}
