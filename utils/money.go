package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds a monetary amount to 2 fractional digits, half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal is quantity × unit price, unrounded.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// SafeAvg divides total by count, rounded to 2 digits; a zero count
// yields zero instead of a division fault.
func SafeAvg(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count)).Round(2)
}
