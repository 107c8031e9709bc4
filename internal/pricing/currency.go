package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is used for any currency not listed below, including unknown codes.
const DefaultDecimals int32 = 2

// Currencies priced in whole units. IQD, LBP and IRR carry minor units in
// ISO 4217 but have none in circulation. IRT is the toman, quoted in whole units.
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {}, "KRW": {}, "VND": {}, "CLP": {}, "COP": {}, "IDR": {}, "IQD": {}, "LBP": {},
	"IRR": {}, "IRT": {},
	"BIF": {}, "DJF": {}, "GNF": {}, "ISK": {}, "KMF": {}, "PYG": {}, "RWF": {},
	"UGX": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

var threeDecimalCurrencies = map[string]struct{}{
	"KWD": {}, "BHD": {}, "OMR": {}, "JOD": {}, "TND": {}, "LYD": {},
}

// DecimalsFor returns the number of minor-unit digits used for currency.
func DecimalsFor(currency string) int32 {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return 0
	}
	if _, ok := threeDecimalCurrencies[code]; ok {
		return 3
	}
	return DefaultDecimals
}

// Round rounds amount to the precision of currency. Ties round half away from
// zero: 2.5 JPY becomes 3 and -2.5 JPY becomes -3.
func Round(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(DecimalsFor(currency))
}
