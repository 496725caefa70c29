package boardroom

import (
	"fmt"
)

// Review represents one time-boxed deliberation round for a single asset.
// Review IDs are dense, zero-based, and allocated from a monotonic counter.
// A review is open from creation until its deadline; Executed flips exactly
// once and is irreversible.
type Review struct {
	ID             int64  `json:"id"`              // Dense zero-based identifier
	AssetID        string `json:"asset_id"`        // Asset under review, resolvable by the acquisition venue
	Creator        string `json:"creator"`         // Address that submitted the asset
	SubmissionFee  int64  `json:"submission_fee"`  // Flat fee posted at submission, split among participants
	DeadlineMs     int64  `json:"deadline_ms"`     // Unix ms; theses accepted strictly before this
	Executed       bool   `json:"executed"`        // Terminal flag, flips once
	TotalPledged   int64  `json:"total_pledged"`   // Sum of bullish pledges, accumulates during the window
	TotalPurchased int64  `json:"total_purchased"` // Asset units received, set exactly once at execution
	TriggerHandle  string `json:"trigger_handle"`  // Scheduler entry handle, observability only
	CreatedAtMs    int64  `json:"created_at_ms"`   // Unix ms when the review was opened
}

// Thesis represents an agent's recorded stance on a review. One per
// (review, agent), immutable once written. PledgedAmount is zero whenever
// Bullish is false.
type Thesis struct {
	ReviewID      int64  `json:"review_id"`
	Agent         string `json:"agent"`
	Text          string `json:"text"`
	Bullish       bool   `json:"bullish"`
	PledgedAmount int64  `json:"pledged_amount"`
	SubmittedAtMs int64  `json:"submitted_at_ms"`
}

// Share represents an agent's proportional entitlement to a review's
// collective purchase. Shares exist only for bullish participants;
// TokenShare is populated once at execution and Claimed flips once on a
// successful claim.
type Share struct {
	ReviewID      int64  `json:"review_id"`
	Agent         string `json:"agent"`
	PledgedAmount int64  `json:"pledged_amount"`
	TokenShare    int64  `json:"token_share"`
	Claimed       bool   `json:"claimed"`
}

// Delegation is a capped, optionally time-limited grant of spending
// authority from a principal to an agent. At most one active grant exists
// per (principal, agent) pair; re-registering overwrites.
//
// The attestation is stored verbatim for audit. Its cryptographic
// authenticity is not verified; the protocol trusts the caller's
// runtime-authenticated identity.
type Delegation struct {
	Principal      string `json:"principal"`
	Agent          string `json:"agent"`
	MaxAmount      int64  `json:"max_amount"` // Spending ceiling per pledge, > 0 while active
	ExpiryMs       int64  `json:"expiry_ms"`  // Unix ms; 0 means never expires
	Attestation    string `json:"attestation"`
	RegisteredAtMs int64  `json:"registered_at_ms"`
}

// ExpiredAt reports whether the delegation has expired as of the given
// Unix-millisecond timestamp. A zero expiry never expires.
func (d *Delegation) ExpiredAt(nowMs int64) bool {
	return d.ExpiryMs != 0 && nowMs >= d.ExpiryMs
}

// AgentIdentity is a participant's one-time self-registration record plus its
// running reputation bookkeeping. Identities are never deleted.
type AgentIdentity struct {
	Address          string `json:"address"`
	MetadataURI      string `json:"metadata_uri"`
	RegisteredAtMs   int64  `json:"registered_at_ms"`
	ReputationScore  int64  `json:"reputation_score"` // Signed, moves by ±1 per reputation update
	TotalTrades      int64  `json:"total_trades"`
	ProfitableTrades int64  `json:"profitable_trades"`
}

// EventType identifies an accounting event on the instance event channel.
type EventType string

const (
	EventAssetSubmitted       EventType = "asset_submitted"
	EventThesisSubmitted      EventType = "thesis_submitted"
	EventReviewExecuted       EventType = "review_executed"
	EventShareUpdated         EventType = "share_updated"
	EventReputationUpdated    EventType = "reputation_updated"
	EventDelegationRegistered EventType = "delegation_registered"
	EventEscrowDeposited      EventType = "escrow_deposited"
	EventFeeDistributed       EventType = "fee_distributed"
	EventFeePaymentFailed     EventType = "fee_payment_failed"
	EventTokensClaimed        EventType = "tokens_claimed"
)

// Event is a single accounting notification. Fields not relevant to a given
// event type are left at their zero values and omitted from the JSON form.
type Event struct {
	Type      EventType `json:"type"`
	ReviewID  int64     `json:"review_id,omitempty"`
	AssetID   string    `json:"asset_id,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Principal string    `json:"principal,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	AtMs      int64     `json:"at_ms"`
}

// Validate checks the Review for structurally valid field values.
func (r *Review) Validate() error {
	if r.ID < 0 {
		return fmt.Errorf("invalid review ID: must be >= 0, got %d", r.ID)
	}
	if r.AssetID == "" {
		return fmt.Errorf("review asset ID cannot be empty")
	}
	if r.Creator == "" {
		return fmt.Errorf("review creator cannot be empty")
	}
	if r.SubmissionFee < 0 {
		return fmt.Errorf("invalid submission fee: must be >= 0, got %d", r.SubmissionFee)
	}
	if r.TotalPledged < 0 {
		return fmt.Errorf("invalid total pledged: must be >= 0, got %d", r.TotalPledged)
	}
	if r.TotalPurchased < 0 {
		return fmt.Errorf("invalid total purchased: must be >= 0, got %d", r.TotalPurchased)
	}
	return nil
}

// Validate checks the Thesis for structurally valid field values,
// including the bearish-implies-zero-pledge invariant.
func (t *Thesis) Validate() error {
	if t.ReviewID < 0 {
		return fmt.Errorf("invalid review ID: must be >= 0, got %d", t.ReviewID)
	}
	if t.Agent == "" {
		return fmt.Errorf("thesis agent cannot be empty")
	}
	if t.PledgedAmount < 0 {
		return fmt.Errorf("invalid pledged amount: must be >= 0, got %d", t.PledgedAmount)
	}
	if !t.Bullish && t.PledgedAmount != 0 {
		return fmt.Errorf("bearish thesis cannot carry a pledge (got %d)", t.PledgedAmount)
	}
	return nil
}

// Validate checks the Share for structurally valid field values.
func (s *Share) Validate() error {
	if s.ReviewID < 0 {
		return fmt.Errorf("invalid review ID: must be >= 0, got %d", s.ReviewID)
	}
	if s.Agent == "" {
		return fmt.Errorf("share agent cannot be empty")
	}
	if s.PledgedAmount <= 0 {
		return fmt.Errorf("invalid share pledge: must be > 0, got %d", s.PledgedAmount)
	}
	if s.TokenShare < 0 {
		return fmt.Errorf("invalid token share: must be >= 0, got %d", s.TokenShare)
	}
	return nil
}

// Validate checks the Delegation for structurally valid field values.
func (d *Delegation) Validate() error {
	if d.Principal == "" {
		return fmt.Errorf("delegation principal cannot be empty")
	}
	if d.Agent == "" {
		return fmt.Errorf("delegation agent cannot be empty")
	}
	if d.MaxAmount <= 0 {
		return fmt.Errorf("invalid delegation ceiling: must be > 0, got %d", d.MaxAmount)
	}
	if d.ExpiryMs < 0 {
		return fmt.Errorf("invalid delegation expiry: must be >= 0, got %d", d.ExpiryMs)
	}
	return nil
}

// Validate checks the AgentIdentity for structurally valid field values.
func (a *AgentIdentity) Validate() error {
	if a.Address == "" {
		return fmt.Errorf("identity address cannot be empty")
	}
	if a.TotalTrades < 0 {
		return fmt.Errorf("invalid total trades: must be >= 0, got %d", a.TotalTrades)
	}
	if a.ProfitableTrades < 0 {
		return fmt.Errorf("invalid profitable trades: must be >= 0, got %d", a.ProfitableTrades)
	}
	if a.ProfitableTrades > a.TotalTrades {
		return fmt.Errorf("profitable trades (%d) cannot exceed total trades (%d)", a.ProfitableTrades, a.TotalTrades)
	}
	return nil
}

// Validate checks if the EventType is a known enum value.
func (et EventType) Validate() error {
	switch et {
	case EventAssetSubmitted, EventThesisSubmitted, EventReviewExecuted,
		EventShareUpdated, EventReputationUpdated, EventDelegationRegistered,
		EventEscrowDeposited, EventFeeDistributed, EventFeePaymentFailed,
		EventTokensClaimed:
		return nil
	default:
		return fmt.Errorf("unknown event type: %q", et)
	}
}
