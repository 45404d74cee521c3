/**
 * @description
 * Pure fee arithmetic for transfers and purchases. Every payment-method
 * instance carries its own fee percentage; these functions turn that
 * percentage into concrete fee and net amounts.
 *
 * @notes
 * - Rounding is half away from zero at 2 decimal places (decimal.Round), which
 *   financial reconciliation depends on.
 * - The net amount is always derived by subtraction from the rounded fee, so
 *   net + fee == amount holds exactly.
 */

package fees

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FeeAmount computes the fee for amount at feePercentage (e.g. 1.5 for 1.5%),
// rounded half away from zero to 2 decimal places. A percentage of zero or
// less yields a zero fee.
func FeeAmount(amount, feePercentage decimal.Decimal) decimal.Decimal {
	if feePercentage.Sign() <= 0 {
		return decimal.Zero
	}
	return amount.Mul(feePercentage).Div(hundred).Round(2)
}

// AmountAfterFee returns the net amount delivered after fee deduction together
// with the fee itself. net + fee == amount exactly.
func AmountAfterFee(amount, feePercentage decimal.Decimal) (net, fee decimal.Decimal) {
	fee = FeeAmount(amount, feePercentage)
	return amount.Sub(fee), fee
}

// AmountWithFee solves the reverse problem: given the desired net amount, it
// returns the gross total that must be charged so the net survives the fee.
//
//	total = round(net / (1 - pct/100), 2)
//	fee   = total - net
//
// A percentage of zero or less returns the net unchanged with a zero fee.
func AmountWithFee(netAmount, feePercentage decimal.Decimal) (total, fee decimal.Decimal) {
	if feePercentage.Sign() <= 0 {
		return netAmount, decimal.Zero
	}
	multiplier := decimal.NewFromInt(1).Sub(feePercentage.Div(hundred))
	total = netAmount.Div(multiplier).Round(2)
	return total, total.Sub(netAmount)
}
