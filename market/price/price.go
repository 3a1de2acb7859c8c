// Package price converts the operator supplied decimal prices
// into the ledger's base unit.
//
// The conversion is exact integer arithmetic. Floating point is
// never used, so no precision is lost for any of the 18 fractional
// digits that the base unit supports.
package price

import (
	"fmt"
	"math/big"
	"strings"
)

// BASE_UNIT_DECIMALS is the fraction size of the ledger's native coin.
// 1 coin = 10^18 base units (wei).
const BASE_UNIT_DECIMALS = 18

// ToBaseUnit converts the decimal amount string into the base unit integer.
//
// The amount should be a non-negative decimal such as "1", "0.05" or
// "12.000000000000000001". More fractional digits than the decimals
// parameter is an error, not a rounding.
func ToBaseUnit(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("negative decimals %d", decimals)
	}

	trimmed := strings.TrimSpace(amount)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty amount")
	}
	if trimmed[0] == '-' {
		return nil, fmt.Errorf("negative amount '%s'", amount)
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid decimal amount '%s'", amount)
	}

	whole_part := parts[0]
	fraction_part := ""
	if len(parts) == 2 {
		fraction_part = parts[1]
	}
	if len(whole_part) == 0 && len(fraction_part) == 0 {
		return nil, fmt.Errorf("invalid decimal amount '%s'", amount)
	}
	if len(whole_part) == 0 {
		whole_part = "0"
	}

	if len(fraction_part) > decimals {
		return nil, fmt.Errorf("the amount '%s' has %d fractional digits, the limit is %d", amount, len(fraction_part), decimals)
	}

	// pad the fraction to the full decimals, then glue the digits together
	padded := whole_part + fraction_part + strings.Repeat("0", decimals-len(fraction_part))

	value, ok := new(big.Int).SetString(padded, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount '%s'", amount)
	}

	return value, nil
}

// FromBaseUnit converts the base unit integer back into the decimal string.
// The returned string has no trailing fraction zeros.
//
// The conversion round trips exactly with ToBaseUnit.
func FromBaseUnit(value *big.Int, decimals int) string {
	digits := value.String()

	if decimals == 0 {
		return digits
	}

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	split := len(digits) - decimals
	whole_part := digits[:split]
	fraction_part := strings.TrimRight(digits[split:], "0")

	if len(fraction_part) == 0 {
		return whole_part
	}

	return whole_part + "." + fraction_part
}
