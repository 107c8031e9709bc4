package pricing

import "github.com/shopspring/decimal"

// TaxMode says whether a tax rate is added on top of an amount or already
// contained in it.
type TaxMode string

const (
	TaxExclusive TaxMode = "exclusive"
	TaxInclusive TaxMode = "inclusive"
)

// TaxResult is the split produced by CalculateTax.
type TaxResult struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// CalculateTax splits amount into net, tax and gross for a percentage taxRate.
// In inclusive mode amount is the gross and the tax is extracted from it; any
// other mode adds the tax on top. A rate of zero or less yields no tax.
func CalculateTax(amount, taxRate decimal.Decimal, mode TaxMode, currency string) TaxResult {
	if !taxRate.IsPositive() {
		return TaxResult{Subtotal: amount, TaxAmount: decimal.Zero, Total: amount}
	}

	if mode == TaxInclusive {
		tax := Round(amount.Mul(taxRate).Div(hundred.Add(taxRate)), currency)
		return TaxResult{
			Subtotal:  Round(amount.Sub(tax), currency),
			TaxAmount: tax,
			Total:     amount,
		}
	}

	tax := Round(amount.Mul(taxRate).Div(hundred), currency)
	return TaxResult{
		Subtotal:  amount,
		TaxAmount: tax,
		Total:     Round(amount.Add(tax), currency),
	}
}
