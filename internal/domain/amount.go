package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a THB figure. Decoding never fails: JSON numbers, numeric
// strings and null become a value, anything else becomes zero. Every money
// field of every record goes through this type, so consumers never need their
// own "missing means zero" fallback.
type Amount struct {
	d decimal.Decimal
}

// Rate is a fraction (0-1) or an hourly figure stored with the same lenient
// decoding as Amount.
type Rate = Amount

func AmountFromInt(v int64) Amount {
	return Amount{d: decimal.NewFromInt(v)}
}

func AmountFromFloat(v float64) Amount {
	return Amount{d: decimal.NewFromFloat(v)}
}

func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// ParseAmount coerces free-form input the same way JSON decoding does.
func ParseAmount(raw string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Amount{}
	}
	return Amount{d: d}
}

func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

func (a Amount) Mul(b Amount) Amount { return Amount{d: a.d.Mul(b.d)} }

func (a Amount) DivInt(n int64) Amount {
	if n == 0 {
		return Amount{}
	}
	return Amount{d: a.d.Div(decimal.NewFromInt(n))}
}

func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) LessThan(b Amount) bool { return a.d.LessThan(b.d) }

func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }

func (a Amount) IsZero() bool { return a.d.IsZero() }

func (a Amount) IsPositive() bool { return a.d.IsPositive() }

func (a Amount) IsNegative() bool { return a.d.IsNegative() }

// NonNegative clamps a negative value to zero.
func (a Amount) NonNegative() Amount {
	if a.d.IsNegative() {
		return Amount{}
	}
	return a
}

func (a Amount) Round(places int32) Amount { return Amount{d: a.d.Round(places)} }

func (a Amount) IntPart() int64 { return a.d.IntPart() }

func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

func (a Amount) String() string { return a.d.String() }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*a = ParseAmount(s)
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return nil
	}
	a.d = d
	return nil
}

// SumAmounts adds every value; the zero Amount is the identity.
func SumAmounts(values ...Amount) Amount {
	total := Amount{}
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
