// Package royalty defines the resale share configuration of a resource.
//
// The percentages travel to the smartcontract as integers scaled by a
// fixed precision factor. The scaling is exact, a percentage with more
// fractional digits than the factor supports is rejected, never rounded.
package royalty

import (
	"fmt"
	"math"

	"github.com/blocklords/market/market/price"
)

// PRECISION_DECIMALS is the fraction size of a percentage.
// Two digits, so the smartcontract works with basis points:
// "2.5" percent is stored as 250.
const PRECISION_DECIMALS = 2

// Beneficiary is one recipient of the resale share,
// tied to the resource and to the declared total of its configuration call.
type Beneficiary struct {
	ResourceId      uint64 `json:"resource_id"`
	Recipient       string `json:"recipient"`
	Percentage      uint64 `json:"percentage"`       // scaled
	TotalPercentage uint64 `json:"total_percentage"` // scaled
}

// ScalePercentage converts the percentage decimal string
// into the scaled integer. The conversion is exact.
func ScalePercentage(percentage string) (uint64, error) {
	scaled, err := price.ToBaseUnit(percentage, PRECISION_DECIMALS)
	if err != nil {
		return 0, fmt.Errorf("price.ToBaseUnit of '%s': %w", percentage, err)
	}
	if !scaled.IsUint64() || scaled.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("the percentage '%s' is too large", percentage)
	}

	return scaled.Uint64(), nil
}

// ValidateShares checks that the sum of the scaled percentages
// equals the declared scaled total.
//
// Called before any interaction with the ledger, so a mismatching
// configuration never wastes an RPC round trip.
func ValidateShares(percentages []uint64, total_percentage uint64) error {
	if len(percentages) == 0 {
		return fmt.Errorf("atleast one beneficiary should be given")
	}

	var sum uint64
	for _, percentage := range percentages {
		if percentage == 0 {
			return fmt.Errorf("a beneficiary with a zero percentage")
		}
		sum += percentage
	}

	if sum != total_percentage {
		return fmt.Errorf("the sum of the percentages %d is not equal to the declared total %d", sum, total_percentage)
	}

	return nil
}
