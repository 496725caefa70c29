package boardroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyNamespacing(t *testing.T) {
	assert.Equal(t, "clawdera:prod:review:3", ReviewKey("prod", 3))
	assert.Equal(t, "clawdera:prod:review_seq", ReviewSeqKey("prod"))
	assert.Equal(t, "clawdera:prod:review:3:thesis:agent-1", ThesisKey("prod", 3, "agent-1"))
	assert.Equal(t, "clawdera:prod:review:3:share:agent-1", ShareKey("prod", 3, "agent-1"))
	assert.Equal(t, "clawdera:prod:review:3:participants", ParticipantsKey("prod", 3))
	assert.Equal(t, "clawdera:prod:delegation:alice:agent-1", DelegationKey("prod", "alice", "agent-1"))
	assert.Equal(t, "clawdera:prod:escrow", EscrowKey("prod"))
	assert.Equal(t, "clawdera:prod:identity:agent-1", IdentityKey("prod", "agent-1"))
	assert.Equal(t, "clawdera:prod:due", DueKey("prod"))
	assert.Equal(t, "clawdera:prod:oplock", OpLockKey("prod"))
	assert.Equal(t, "clawdera:prod:accounting_events", AccountingEventsChannel("prod"))
}

func TestKeysIsolateInstances(t *testing.T) {
	assert.NotEqual(t, ReviewKey("a", 0), ReviewKey("b", 0))
	assert.NotEqual(t, EscrowKey("a"), EscrowKey("b"))
	assert.NotEqual(t, AccountingEventsChannel("a"), AccountingEventsChannel("b"))
}
