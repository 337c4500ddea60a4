package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/alinkon0207/hlsign/internal/utils"
	"github.com/shopspring/decimal"
)

// FloatString is a number the info endpoint sends as a JSON string, e.g.
// "12.5". Bare numbers and null are accepted too.
type FloatString float64

func (f *FloatString) UnmarshalJSON(b []byte) error {
	text := string(bytes.Trim(b, `"`))
	if text == "null" || text == "" {
		*f = 0
		return nil
	}

	v, err := utils.StringToFloat(text)
	if err != nil {
		return fmt.Errorf("invalid float string %s: %w", b, err)
	}
	*f = FloatString(v)
	return nil
}

// MarshalJSON writes the quoted form the API uses.
func (f FloatString) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f FloatString) String() string {
	if s, err := utils.FloatToWire(f.Raw()); err == nil {
		return s
	}
	return strconv.FormatFloat(f.Raw(), 'f', -1, 64)
}

func (f FloatString) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(f.Raw())
}

func (f FloatString) Raw() float64 {
	return float64(f)
}
