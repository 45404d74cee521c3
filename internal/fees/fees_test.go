package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestFeeAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		pct    string
		want   string
	}{
		{"one and a half percent", "1000.00", "1.50", "15.00"},
		{"rounds half away from zero", "100.17", "2.5", "2.50"},          // 2.50425 -> 2.50
		{"rounds half up at midpoint", "333.00", "1.5", "5.00"},          // 4.995 -> 5.00
		{"small amount", "0.10", "1", "0.00"},                            // 0.001 -> 0.00
		{"full percentage", "250.00", "100", "250.00"},
		{"zero percentage", "1000.00", "0", "0"},
		{"negative percentage treated as zero", "1000.00", "-3", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FeeAmount(d(tc.amount), d(tc.pct))
			assert.True(t, d(tc.want).Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestAmountAfterFee(t *testing.T) {
	net, fee := AmountAfterFee(d("1000.00"), d("1.50"))
	assert.True(t, d("985.00").Equal(net), "net = %s", net)
	assert.True(t, d("15.00").Equal(fee), "fee = %s", fee)
}

func TestAmountAfterFee_NetPlusFeeEqualsAmount(t *testing.T) {
	amounts := []string{"0.01", "1.00", "99.99", "1000.00", "12345.67", "100000.00"}
	percentages := []string{"0", "0.5", "1", "1.5", "2.75", "10", "33.33", "100"}

	for _, a := range amounts {
		for _, p := range percentages {
			amount := d(a)
			net, fee := AmountAfterFee(amount, d(p))
			require.True(t, net.Add(fee).Equal(amount),
				"amount=%s pct=%s: net %s + fee %s != amount", a, p, net, fee)
		}
	}
}

func TestAmountWithFee(t *testing.T) {
	total, fee := AmountWithFee(d("985.00"), d("1.50"))
	assert.True(t, d("1000.00").Equal(total), "total = %s", total)
	assert.True(t, d("15.00").Equal(fee), "fee = %s", fee)
}

func TestAmountWithFee_ZeroPercentageIdentity(t *testing.T) {
	total, fee := AmountWithFee(d("500.00"), d("0"))
	assert.True(t, d("500.00").Equal(total))
	assert.True(t, fee.IsZero())

	net, fwdFee := AmountAfterFee(d("500.00"), d("0"))
	assert.True(t, d("500.00").Equal(net))
	assert.True(t, fwdFee.IsZero())
}

func TestAmountWithFee_RoundTrip(t *testing.T) {
	// Recovering the net from the computed gross must agree within the
	// standard 2-decimal rounding tolerance.
	tolerance := d("0.01")

	nets := []string{"10.00", "100.00", "985.00", "4999.99", "25000.00"}
	percentages := []string{"0.5", "1", "1.5", "2.75", "5", "12.5"}

	for _, n := range nets {
		for _, p := range percentages {
			netWanted := d(n)
			pct := d(p)

			total, fee := AmountWithFee(netWanted, pct)
			netBack, feeBack := AmountAfterFee(total, pct)

			require.True(t, netBack.Sub(netWanted).Abs().LessThanOrEqual(tolerance),
				"net=%s pct=%s: round trip net %s drifted", n, p, netBack)
			require.True(t, feeBack.Sub(fee).Abs().LessThanOrEqual(tolerance),
				"net=%s pct=%s: round trip fee %s vs %s", n, p, feeBack, fee)
		}
	}
}

func TestFeeAmount_Deterministic(t *testing.T) {
	amount, pct := d("777.77"), d("3.33")
	first := FeeAmount(amount, pct)
	for i := 0; i < 100; i++ {
		require.True(t, first.Equal(FeeAmount(amount, pct)))
	}
}
