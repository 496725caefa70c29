// Package allocation implements the pure share and fee arithmetic invoked by
// the coordinator at execution time. All computation is whole-number int64
// math; no floats touch an accounting path.
package allocation

import (
	"math/bits"
)

// Pledge pairs an agent with its pledged capital, in submission order.
type Pledge struct {
	Agent  string
	Amount int64
}

// TokenShares converts a review's totals into per-agent token shares:
//
//	share[i] = floor(pledges[i].Amount * totalPurchased / totalPledged)
//
// Each share is computed independently; there is no remainder
// redistribution, so the sum of shares may undershoot totalPurchased by up to
// len(pledges)-1 units. The residue stays in the protocol's holdings.
// Zero-amount pledges always yield a zero share.
//
// Returns nil if totalPledged or totalPurchased is not positive.
func TokenShares(pledges []Pledge, totalPledged, totalPurchased int64) []int64 {
	if totalPledged <= 0 || totalPurchased <= 0 {
		return nil
	}

	shares := make([]int64, len(pledges))
	for i, p := range pledges {
		if p.Amount <= 0 {
			continue
		}
		shares[i] = mulDiv(p.Amount, totalPurchased, totalPledged)
	}
	return shares
}

// FeeSplit divides a flat fee exactly among n participants:
// everyone gets floor(fee/n) and the last participant also receives the
// remainder. The returned amounts always sum to fee.
//
// Returns nil if n == 0.
func FeeSplit(fee int64, n int) []int64 {
	if n <= 0 || fee < 0 {
		return nil
	}

	perAgent := fee / int64(n)
	remainder := fee - perAgent*int64(n)

	amounts := make([]int64, n)
	for i := range amounts {
		amounts[i] = perAgent
	}
	amounts[n-1] += remainder
	return amounts
}

// mulDiv computes floor(a*b/c) for non-negative int64 inputs without
// overflowing, using a 128-bit intermediate product. The quotient fits in an
// int64 whenever a <= c, which holds for pledge/total pairs.
func mulDiv(a, b, c int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	return int64(q)
}
