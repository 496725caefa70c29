package boardroom

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Redis stores data as string-to-string maps (hashes). Integer and boolean
// fields are stored in their string forms and parsed back on read. This keeps
// individual fields queryable with plain Redis commands while the Go types
// stay strongly typed.

// ReviewToHash converts a Review struct to a Redis hash format.
func ReviewToHash(r *Review) map[string]interface{} {
	return map[string]interface{}{
		"id":              r.ID,
		"asset_id":        r.AssetID,
		"creator":         r.Creator,
		"submission_fee":  r.SubmissionFee,
		"deadline_ms":     r.DeadlineMs,
		"executed":        r.Executed,
		"total_pledged":   r.TotalPledged,
		"total_purchased": r.TotalPurchased,
		"trigger_handle":  r.TriggerHandle,
		"created_at_ms":   r.CreatedAtMs,
	}
}

// HashToReview converts a Redis hash to a Review struct.
func HashToReview(hash map[string]string) (*Review, error) {
	id, err := strconv.ParseInt(hash["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id field: %w", err)
	}

	executed, _ := strconv.ParseBool(hash["executed"])
	submissionFee, _ := strconv.ParseInt(hash["submission_fee"], 10, 64)
	deadlineMs, _ := strconv.ParseInt(hash["deadline_ms"], 10, 64)
	totalPledged, _ := strconv.ParseInt(hash["total_pledged"], 10, 64)
	totalPurchased, _ := strconv.ParseInt(hash["total_purchased"], 10, 64)
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	return &Review{
		ID:             id,
		AssetID:        hash["asset_id"],
		Creator:        hash["creator"],
		SubmissionFee:  submissionFee,
		DeadlineMs:     deadlineMs,
		Executed:       executed,
		TotalPledged:   totalPledged,
		TotalPurchased: totalPurchased,
		TriggerHandle:  hash["trigger_handle"],
		CreatedAtMs:    createdAtMs,
	}, nil
}

// ThesisToHash converts a Thesis struct to a Redis hash format.
func ThesisToHash(t *Thesis) map[string]interface{} {
	return map[string]interface{}{
		"review_id":       t.ReviewID,
		"agent":           t.Agent,
		"text":            t.Text,
		"bullish":         t.Bullish,
		"pledged_amount":  t.PledgedAmount,
		"submitted_at_ms": t.SubmittedAtMs,
	}
}

// HashToThesis converts a Redis hash to a Thesis struct.
func HashToThesis(hash map[string]string) (*Thesis, error) {
	reviewID, err := strconv.ParseInt(hash["review_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid review_id field: %w", err)
	}

	bullish, _ := strconv.ParseBool(hash["bullish"])
	pledged, _ := strconv.ParseInt(hash["pledged_amount"], 10, 64)
	submittedAtMs, _ := strconv.ParseInt(hash["submitted_at_ms"], 10, 64)

	return &Thesis{
		ReviewID:      reviewID,
		Agent:         hash["agent"],
		Text:          hash["text"],
		Bullish:       bullish,
		PledgedAmount: pledged,
		SubmittedAtMs: submittedAtMs,
	}, nil
}

// ShareToHash converts a Share struct to a Redis hash format.
func ShareToHash(s *Share) map[string]interface{} {
	return map[string]interface{}{
		"review_id":      s.ReviewID,
		"agent":          s.Agent,
		"pledged_amount": s.PledgedAmount,
		"token_share":    s.TokenShare,
		"claimed":        s.Claimed,
	}
}

// HashToShare converts a Redis hash to a Share struct.
func HashToShare(hash map[string]string) (*Share, error) {
	reviewID, err := strconv.ParseInt(hash["review_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid review_id field: %w", err)
	}

	pledged, _ := strconv.ParseInt(hash["pledged_amount"], 10, 64)
	tokenShare, _ := strconv.ParseInt(hash["token_share"], 10, 64)
	claimed, _ := strconv.ParseBool(hash["claimed"])

	return &Share{
		ReviewID:      reviewID,
		Agent:         hash["agent"],
		PledgedAmount: pledged,
		TokenShare:    tokenShare,
		Claimed:       claimed,
	}, nil
}

// DelegationToHash converts a Delegation struct to a Redis hash format.
func DelegationToHash(d *Delegation) map[string]interface{} {
	return map[string]interface{}{
		"principal":        d.Principal,
		"agent":            d.Agent,
		"max_amount":       d.MaxAmount,
		"expiry_ms":        d.ExpiryMs,
		"attestation":      d.Attestation,
		"registered_at_ms": d.RegisteredAtMs,
	}
}

// HashToDelegation converts a Redis hash to a Delegation struct.
func HashToDelegation(hash map[string]string) (*Delegation, error) {
	maxAmount, err := strconv.ParseInt(hash["max_amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid max_amount field: %w", err)
	}

	expiryMs, _ := strconv.ParseInt(hash["expiry_ms"], 10, 64)
	registeredAtMs, _ := strconv.ParseInt(hash["registered_at_ms"], 10, 64)

	return &Delegation{
		Principal:      hash["principal"],
		Agent:          hash["agent"],
		MaxAmount:      maxAmount,
		ExpiryMs:       expiryMs,
		Attestation:    hash["attestation"],
		RegisteredAtMs: registeredAtMs,
	}, nil
}

// IdentityToHash converts an AgentIdentity struct to a Redis hash format.
func IdentityToHash(a *AgentIdentity) map[string]interface{} {
	return map[string]interface{}{
		"address":           a.Address,
		"metadata_uri":      a.MetadataURI,
		"registered_at_ms":  a.RegisteredAtMs,
		"reputation_score":  a.ReputationScore,
		"total_trades":      a.TotalTrades,
		"profitable_trades": a.ProfitableTrades,
	}
}

// HashToIdentity converts a Redis hash to an AgentIdentity struct.
func HashToIdentity(hash map[string]string) (*AgentIdentity, error) {
	if hash["address"] == "" {
		return nil, fmt.Errorf("invalid identity hash: missing address")
	}

	registeredAtMs, _ := strconv.ParseInt(hash["registered_at_ms"], 10, 64)
	reputation, _ := strconv.ParseInt(hash["reputation_score"], 10, 64)
	totalTrades, _ := strconv.ParseInt(hash["total_trades"], 10, 64)
	profitable, _ := strconv.ParseInt(hash["profitable_trades"], 10, 64)

	return &AgentIdentity{
		Address:          hash["address"],
		MetadataURI:      hash["metadata_uri"],
		RegisteredAtMs:   registeredAtMs,
		ReputationScore:  reputation,
		TotalTrades:      totalTrades,
		ProfitableTrades: profitable,
	}, nil
}
