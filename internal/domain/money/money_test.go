package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"two decimals", "100.00", "100.00", nil},
		{"one decimal padded", "100.5", "100.50", nil},
		{"integer", "100", "100.00", nil},
		{"negative", "-40.00", "-40.00", nil},
		{"too many decimals", "100.005", "", ErrInvalidAmount},
		{"garbage", "abc", "", ErrInvalidAmount},
		{"empty", "", "", ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseOverflow(t *testing.T) {
	_, err := Parse("100000000000000000.01")
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAddSub(t *testing.T) {
	a, _ := Parse("100.00")
	b, _ := Parse("40.00")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "140.00", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "60.00", diff.String())
}

func TestSubOverflow(t *testing.T) {
	max := NewFromMinorUnits(1_000_000_000_000_000_000)
	one := NewFromMinorUnits(100)
	_, err := max.Sub(one.Neg())
	require.ErrorIs(t, err, ErrOverflow)
}

func TestNegAndCmp(t *testing.T) {
	a, _ := Parse("50.00")
	neg := a.Neg()
	assert.True(t, neg.IsNegative())
	assert.Equal(t, -1, neg.Cmp(a))
	assert.Equal(t, 1, a.Cmp(neg))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestGreaterThanOrEqual(t *testing.T) {
	balance, _ := Parse("100.00")
	amount, _ := Parse("100.00")
	assert.True(t, balance.GreaterThanOrEqual(amount))

	amount2, _ := Parse("100.01")
	assert.False(t, balance.GreaterThanOrEqual(amount2))
}

func TestMinorUnits(t *testing.T) {
	m := NewFromMinorUnits(12345)
	assert.Equal(t, "123.45", m.String())
	assert.Equal(t, int64(12345), m.MinorUnits())
}

func TestZeroIsZero(t *testing.T) {
	assert.True(t, Zero.IsZero())
	assert.Equal(t, "0.00", Zero.String())
}
