package boardroom

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so
// multiple Clawdera instances can safely coexist on a single Redis server.
//
// Key pattern: clawdera:{instance_name}:{entity}:{id}
// Channel pattern: clawdera:{instance_name}:accounting_events

// ReviewKey returns the Redis key for a review.
// Pattern: clawdera:{instance_name}:review:{review_id}
func ReviewKey(instanceName string, reviewID int64) string {
	return fmt.Sprintf("clawdera:%s:review:%d", instanceName, reviewID)
}

// ReviewSeqKey returns the Redis key for the review id counter.
// The counter holds the number of reviews allocated so far; ids are dense
// and zero-based.
// Pattern: clawdera:{instance_name}:review_seq
func ReviewSeqKey(instanceName string) string {
	return fmt.Sprintf("clawdera:%s:review_seq", instanceName)
}

// ThesisKey returns the Redis key for an agent's thesis on a review.
// Pattern: clawdera:{instance_name}:review:{review_id}:thesis:{agent}
func ThesisKey(instanceName string, reviewID int64, agent string) string {
	return fmt.Sprintf("clawdera:%s:review:%d:thesis:%s", instanceName, reviewID, agent)
}

// ShareKey returns the Redis key for an agent's share of a review.
// Pattern: clawdera:{instance_name}:review:{review_id}:share:{agent}
func ShareKey(instanceName string, reviewID int64, agent string) string {
	return fmt.Sprintf("clawdera:%s:review:%d:share:%s", instanceName, reviewID, agent)
}

// ParticipantsKey returns the Redis key for a review's participant list.
// The list preserves submission order, which drives fee distribution.
// Pattern: clawdera:{instance_name}:review:{review_id}:participants
func ParticipantsKey(instanceName string, reviewID int64) string {
	return fmt.Sprintf("clawdera:%s:review:%d:participants", instanceName, reviewID)
}

// DelegationKey returns the Redis key for a (principal, agent) delegation.
// Pattern: clawdera:{instance_name}:delegation:{principal}:{agent}
func DelegationKey(instanceName, principal, agent string) string {
	return fmt.Sprintf("clawdera:%s:delegation:%s:%s", instanceName, principal, agent)
}

// EscrowKey returns the Redis key for the pooled escrow balances hash.
// Hash field = agent address, value = balance in capital units.
// Pattern: clawdera:{instance_name}:escrow
func EscrowKey(instanceName string) string {
	return fmt.Sprintf("clawdera:%s:escrow", instanceName)
}

// IdentityKey returns the Redis key for an agent identity record.
// Pattern: clawdera:{instance_name}:identity:{agent}
func IdentityKey(instanceName, agent string) string {
	return fmt.Sprintf("clawdera:%s:identity:%s", instanceName, agent)
}

// DueKey returns the Redis key for the deferred-execution due set.
// ZSET member = review id, score = deadline in Unix ms.
// Pattern: clawdera:{instance_name}:due
func DueKey(instanceName string) string {
	return fmt.Sprintf("clawdera:%s:due", instanceName)
}

// OpLockKey returns the Redis key for the instance operation lock.
// Pattern: clawdera:{instance_name}:oplock
func OpLockKey(instanceName string) string {
	return fmt.Sprintf("clawdera:%s:oplock", instanceName)
}

// AccountingEventsChannel returns the Pub/Sub channel name for accounting
// events. Every state mutation publishes here.
// Pattern: clawdera:{instance_name}:accounting_events
func AccountingEventsChannel(instanceName string) string {
	return fmt.Sprintf("clawdera:%s:accounting_events", instanceName)
}
