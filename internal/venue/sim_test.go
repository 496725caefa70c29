package venue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimResolveAsset(t *testing.T) {
	sim := NewSim(2, "ASSET-ALPHA")
	ctx := context.Background()

	known, err := sim.ResolveAsset(ctx, "ASSET-ALPHA")
	require.NoError(t, err)
	assert.True(t, known)

	known, err = sim.ResolveAsset(ctx, "ASSET-UNKNOWN")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestSimPurchase(t *testing.T) {
	sim := NewSim(2, "ASSET-ALPHA")
	ctx := context.Background()

	t.Run("converts spend at the configured rate", func(t *testing.T) {
		require.NoError(t, sim.Purchase(ctx, "ASSET-ALPHA", 700))

		holdings, err := sim.Holdings(ctx, "ASSET-ALPHA")
		require.NoError(t, err)
		assert.Equal(t, int64(1400), holdings)
	})

	t.Run("rejects unknown asset", func(t *testing.T) {
		err := sim.Purchase(ctx, "ASSET-UNKNOWN", 100)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive spend", func(t *testing.T) {
		err := sim.Purchase(ctx, "ASSET-ALPHA", 0)
		assert.Error(t, err)
	})
}

func TestSimRateClamp(t *testing.T) {
	sim := NewSim(0, "ASSET-ALPHA")
	ctx := context.Background()

	require.NoError(t, sim.Purchase(ctx, "ASSET-ALPHA", 100))

	holdings, err := sim.Holdings(ctx, "ASSET-ALPHA")
	require.NoError(t, err)
	assert.Equal(t, int64(100), holdings)
}

func TestSimTransferAsset(t *testing.T) {
	sim := NewSim(1, "ASSET-ALPHA")
	ctx := context.Background()
	require.NoError(t, sim.Purchase(ctx, "ASSET-ALPHA", 1000))

	t.Run("moves units from holdings to the recipient", func(t *testing.T) {
		require.NoError(t, sim.TransferAsset(ctx, "ASSET-ALPHA", "agent-1", 400))

		holdings, err := sim.Holdings(ctx, "ASSET-ALPHA")
		require.NoError(t, err)
		assert.Equal(t, int64(600), holdings)
		assert.Equal(t, int64(400), sim.AgentHoldings("agent-1", "ASSET-ALPHA"))
	})

	t.Run("rejects transfers beyond holdings", func(t *testing.T) {
		err := sim.TransferAsset(ctx, "ASSET-ALPHA", "agent-1", 601)
		assert.Error(t, err)
	})

	t.Run("denied recipient refuses the transfer", func(t *testing.T) {
		sim.Deny("deadbeat")

		err := sim.TransferAsset(ctx, "ASSET-ALPHA", "deadbeat", 1)
		require.Error(t, err)
		assert.Equal(t, int64(0), sim.AgentHoldings("deadbeat", "ASSET-ALPHA"))
	})
}

func TestSimPayFee(t *testing.T) {
	sim := NewSim(1, "ASSET-ALPHA")
	ctx := context.Background()

	t.Run("accumulates payments", func(t *testing.T) {
		require.NoError(t, sim.PayFee(ctx, "agent-1", 50))
		require.NoError(t, sim.PayFee(ctx, "agent-1", 25))
		assert.Equal(t, int64(75), sim.FeesPaidTo("agent-1"))
	})

	t.Run("zero payment is a no-op", func(t *testing.T) {
		require.NoError(t, sim.PayFee(ctx, "agent-2", 0))
		assert.Equal(t, int64(0), sim.FeesPaidTo("agent-2"))
	})

	t.Run("denied recipient refuses payment", func(t *testing.T) {
		sim.Deny("deadbeat")

		err := sim.PayFee(ctx, "deadbeat", 10)
		require.Error(t, err)
		assert.Equal(t, int64(0), sim.FeesPaidTo("deadbeat"))
	})
}
