package utils

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// wireTolerance is the largest rounding error FloatToWire accepts.
var wireTolerance = decimal.New(1, -12)

// FloatToWire converts a float64 to the exchange's wire format: at most 8
// decimals, trailing zeros trimmed, never "-0".
func FloatToWire(x float64) (string, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "", fmt.Errorf("invalid float value: %v", x)
	}

	d := decimal.NewFromFloat(x)
	rounded := d.Round(8)

	if d.Sub(rounded).Abs().GreaterThan(wireTolerance) {
		return "", fmt.Errorf(
			"float precision loss: %v rounds to %s",
			x,
			rounded,
		)
	}

	if rounded.IsZero() {
		return "0", nil
	}
	return rounded.String(), nil
}

// StringToFloat parses a decimal string as returned by the info endpoint.
func StringToFloat(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
