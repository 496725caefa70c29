package boardroom

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewHashRoundTrip(t *testing.T) {
	original := &Review{
		ID:             4,
		AssetID:        "ASSET-ALPHA",
		Creator:        "bob",
		SubmissionFee:  100,
		DeadlineMs:     1700000000000,
		Executed:       true,
		TotalPledged:   700,
		TotalPurchased: 1400,
		TriggerHandle:  "handle-1",
		CreatedAtMs:    1699999999000,
	}

	hash := ReviewToHash(original)
	stringHash := toStringHash(hash)

	restored, err := HashToReview(stringHash)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestHashToReviewRejectsBadID(t *testing.T) {
	_, err := HashToReview(map[string]string{"id": "not-a-number"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id field")
}

func TestThesisHashRoundTrip(t *testing.T) {
	t.Run("bullish", func(t *testing.T) {
		original := &Thesis{
			ReviewID:      2,
			Agent:         "agent-1",
			Text:          "undervalued at current fee",
			Bullish:       true,
			PledgedAmount: 400,
			SubmittedAtMs: 1700000000000,
		}

		restored, err := HashToThesis(toStringHash(ThesisToHash(original)))
		require.NoError(t, err)
		assert.Equal(t, original, restored)
	})

	t.Run("bearish has zero pledge", func(t *testing.T) {
		original := &Thesis{ReviewID: 2, Agent: "agent-2", Text: "pass", Bullish: false}

		restored, err := HashToThesis(toStringHash(ThesisToHash(original)))
		require.NoError(t, err)
		assert.False(t, restored.Bullish)
		assert.Equal(t, int64(0), restored.PledgedAmount)
	})
}

func TestShareHashRoundTrip(t *testing.T) {
	original := &Share{ReviewID: 2, Agent: "agent-1", PledgedAmount: 300, TokenShare: 150, Claimed: true}

	restored, err := HashToShare(toStringHash(ShareToHash(original)))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestDelegationHashRoundTrip(t *testing.T) {
	original := &Delegation{
		Principal:      "alice",
		Agent:          "agent-1",
		MaxAmount:      1000,
		ExpiryMs:       1700000000000,
		Attestation:    "sig:abc",
		RegisteredAtMs: 1699999999000,
	}

	restored, err := HashToDelegation(toStringHash(DelegationToHash(original)))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestIdentityHashRoundTrip(t *testing.T) {
	original := &AgentIdentity{
		Address:          "agent-1",
		MetadataURI:      "ipfs://meta",
		RegisteredAtMs:   1699999999000,
		ReputationScore:  -2,
		TotalTrades:      5,
		ProfitableTrades: 1,
	}

	restored, err := HashToIdentity(toStringHash(IdentityToHash(original)))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestHashToIdentityRejectsMissingAddress(t *testing.T) {
	_, err := HashToIdentity(map[string]string{"total_trades": "3"})
	assert.Error(t, err)
}

// toStringHash renders an interface hash the way go-redis stores it
// (ints as decimal strings, bools as "1"/"0").
func toStringHash(hash map[string]interface{}) map[string]string {
	out := make(map[string]string, len(hash))
	for k, v := range hash {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			if val {
				out[k] = "1"
			} else {
				out[k] = "0"
			}
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		default:
			panic("unsupported hash field type in test helper")
		}
	}
	return out
}
