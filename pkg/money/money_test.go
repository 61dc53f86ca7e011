package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromString(t *testing.T) {
	cases := []struct {
		in    string
		units int64
	}{
		{"0", 0},
		{"1", 1000},
		{"12.345", 12345},
		{"12.3", 12300},
		{"0.005", 5},
		{".5", 500},
		{"100.", 100000},
	}
	for _, tc := range cases {
		m, err := FromString(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.units, m.Units(), tc.in)
	}
}

func TestFromStringRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "-1", "+1", "1.2345", "abc", "1,5", "."} {
		_, err := FromString(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestPercentRoundsHalfUp(t *testing.T) {
	// 0.001 * 50% = 0.0005 -> rounds up to 0.001
	assert.Equal(t, Money(1), FromUnits(1).Percent(MustPercent("50")))
	// 100 * 10% = 10 exactly
	assert.Equal(t, MustFromString("10"), MustFromString("100").Percent(MustPercent("10")))
	// 0.333 * 33.33% = 0.1109889 -> 0.111
	assert.Equal(t, Money(111), FromUnits(333).Percent(MustPercent("33.33")))
	// 0.001 * 49.99% = 0.0004999 -> 0.000
	assert.Equal(t, Money(0), FromUnits(1).Percent(MustPercent("49.99")))
}

func TestDivIntRoundsHalfUp(t *testing.T) {
	assert.Equal(t, Money(334), FromUnits(1001).DivInt(3))
	assert.Equal(t, Money(500), FromUnits(1000).DivInt(2))
	assert.Equal(t, Money(1), FromUnits(1).DivInt(2))
}

func TestString(t *testing.T) {
	assert.Equal(t, "90.000", MustFromString("90").String())
	assert.Equal(t, "0.005", FromUnits(5).String())
	assert.Equal(t, "-1.250", FromUnits(-1250).String())
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Amount  Money   `json:"amount"`
		Percent Percent `json:"percent"`
	}

	data, err := json.Marshal(payload{Amount: MustFromString("12.345"), Percent: MustPercent("12.5")})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.345","percent":"12.5"}`, string(data))

	var decoded payload
	assert.NoError(t, json.Unmarshal([]byte(`{"amount":90,"percent":10}`), &decoded))
	assert.Equal(t, MustFromString("90"), decoded.Amount)
	assert.Equal(t, MustPercent("10"), decoded.Percent)
}

func TestPercentValidation(t *testing.T) {
	assert.True(t, MustPercent("0.01").Valid())
	assert.True(t, MustPercent("100").Valid())
	assert.False(t, Percent(0).Valid())
	assert.False(t, MustPercent("100.01").Valid())
}

func TestSubAndMax(t *testing.T) {
	a := MustFromString("10")
	b := MustFromString("25")
	assert.True(t, a.Sub(b).IsNegative())
	assert.Equal(t, Money(0), a.Sub(b).Max(0))
}
