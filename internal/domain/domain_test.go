package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountDecodesNumericStringsAsNumbers(t *testing.T) {
	var bookings []Booking
	raw := `[{"priceSnapshot":"100"},{"priceSnapshot":"50"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &bookings))

	total := SumAmounts(bookings[0].PriceSnapshot, bookings[1].PriceSnapshot)
	assert.True(t, total.Equal(AmountFromInt(150)), "got %s", total)
}

func TestAmountDecodesGarbageAsZero(t *testing.T) {
	cases := []string{`null`, `"abc"`, `true`, `{"x":1}`, `[1,2]`, `""`}
	for _, tc := range cases {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(tc), &a), tc)
		assert.True(t, a.IsZero(), "input %s decoded to %s", tc, a)
	}
}

func TestAmountMissingFieldIsZero(t *testing.T) {
	var v Voucher
	require.NoError(t, json.Unmarshal([]byte(`{"code":"X"}`), &v))
	assert.True(t, v.PricePaid.IsZero())
}

func TestAmountEncodesAsNumber(t *testing.T) {
	out, err := json.Marshal(struct {
		Value Amount `json:"value"`
	}{Value: ParseAmount("1250.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":1250.5}`, string(out))
}

func TestAmountArithmetic(t *testing.T) {
	a := AmountFromInt(1000)
	assert.Equal(t, "150", a.Mul(ParseAmount("0.15")).String())
	assert.True(t, a.Sub(AmountFromInt(1500)).NonNegative().IsZero())
	assert.True(t, a.DivInt(0).IsZero())
	assert.Equal(t, int64(333), a.DivInt(3).IntPart())
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-03-04", NormalizeDate("Today", "2025-03-04"))
	assert.Equal(t, "2025-03-04", NormalizeDate(" today ", "2025-03-04"))
	assert.Equal(t, "2025-01-10", NormalizeDate("2025-01-10T08:30:00.000Z", "2025-03-04"))
	assert.Equal(t, "2025-01-10", NormalizeDate("2025-01-10", "2025-03-04"))
	assert.Equal(t, "", NormalizeDate("  ", "2025-03-04"))
}

func TestMonthKeyAndValidation(t *testing.T) {
	assert.Equal(t, "2025-01", MonthKey("2025-01-10"))
	assert.Equal(t, "", MonthKey("2025"))
	assert.True(t, ValidMonth("2025-12"))
	assert.False(t, ValidMonth("2025-13"))
	assert.True(t, ValidDate("2024-02-29"))
	assert.False(t, ValidDate("Today"))
}

func TestTodayUsesLocation(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*3600)
	now := time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-02-01", Today(now, bangkok))
	assert.Equal(t, "2025-01-31", Today(now, nil))
}

func TestStaffDisplayNamePrefersNickname(t *testing.T) {
	assert.Equal(t, "Nok", Staff{Name: "Siriporn", Nickname: "Nok"}.DisplayName())
	assert.Equal(t, "Siriporn", Staff{Name: "Siriporn", Nickname: " "}.DisplayName())
}

func TestVoucherCountsTowardSpend(t *testing.T) {
	for status, want := range map[string]bool{
		VoucherStatusIssued:   true,
		VoucherStatusRedeemed: true,
		VoucherStatusVoid:     false,
		VoucherStatusRefunded: false,
	} {
		assert.Equal(t, want, Voucher{Status: status}.CountsTowardSpend(), status)
	}
}
