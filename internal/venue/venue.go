// Package venue defines the acquisition venue boundary: the external system
// that executes the actual purchase of a reviewed asset and holds the
// protocol's asset and fee balances. The coordinator never trusts a venue's
// own report of quantity received; it measures by diffing the protocol's
// holdings around the purchase call.
package venue

import "context"

// Venue is the adapter interface the coordinator calls out through.
// Implementations are external collaborators; the coordinator commits its own
// state before every Venue call so a reentrant call-back observes the
// already-advanced state.
type Venue interface {
	// ResolveAsset reports whether the venue recognizes the asset.
	ResolveAsset(ctx context.Context, assetID string) (bool, error)

	// Purchase spends the given capital on the asset for the protocol's
	// account. The quantity received is deliberately not returned; callers
	// measure it via Holdings before and after.
	Purchase(ctx context.Context, assetID string, spend int64) error

	// Holdings returns the protocol's current balance of the asset.
	Holdings(ctx context.Context, assetID string) (int64, error)

	// TransferAsset moves asset units from the protocol's account to a
	// participant. May fail if the recipient cannot accept the transfer.
	TransferAsset(ctx context.Context, assetID, to string, qty int64) error

	// PayFee pays capital units from the posted fee to a participant.
	// May fail per recipient; fee distribution treats failures as
	// best-effort partial success.
	PayFee(ctx context.Context, to string, amount int64) error
}
