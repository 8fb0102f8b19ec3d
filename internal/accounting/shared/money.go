package shared

import "github.com/shopspring/decimal"

// AmountPlaces is the scale of every stored amount.
const AmountPlaces = 2

// Balanced reports whether debit and credit agree at cent precision.
func Balanced(debit, credit decimal.Decimal) bool {
	return debit.Round(AmountPlaces).Equal(credit.Round(AmountPlaces))
}

// Numeric renders an amount for a NUMERIC column.
func Numeric(v decimal.Decimal) string {
	return v.StringFixed(AmountPlaces)
}
