// Package boardroom provides type-safe Go definitions and Redis schema patterns
// for the Clawdera protocol state. The boardroom is the shared-state layer that
// every protocol component (coordinator, escrow ledger, identity registry,
// trigger daemon, CLI) reads and writes through well-defined records stored in
// Redis.
//
// All Redis keys and channels are namespaced by instance name so that multiple
// Clawdera instances can safely coexist on a single Redis server.
//
// # Records
//
// The boardroom stores six record kinds:
//
//   - Review: one time-boxed deliberation round for a single asset
//   - Thesis: an agent's recorded stance and pledge on a review
//   - Share: an agent's proportional entitlement to a review's purchase
//   - Delegation: a capped, optionally time-limited spending grant from a
//     principal to an agent
//   - AgentIdentity: a participant's one-time registration plus its running
//     reputation bookkeeping
//   - escrow balances: pooled per-agent capital funded by principals
//
// Reviews, theses and shares are owned by the coordinator; delegations and
// escrow balances by the ledger; identities by the registry. No component
// mutates another component's records directly.
//
// # Serialization
//
// Records are stored as Redis hashes. Scalar fields map to hash fields
// directly; booleans and integers are stored in their string forms and parsed
// back on read. See serialization.go for the conversion helpers.
//
// # Events
//
// Every state mutation publishes a typed accounting event on the instance's
// accounting channel (see Event and Client.SubscribeEvents). An external
// observer can reconstruct protocol state from the event feed alone without
// re-deriving it.
//
// # Serialized writes
//
// Protocol operations mutate several keys at once (for example a bullish
// thesis debits escrow, grows the review total, and creates a share). The
// boardroom provides an instance-wide operation lock (Client.WithLock) so that
// state transitions execute as if single-threaded. Reads are lock-free.
package boardroom
