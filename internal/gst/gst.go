// Package gst computes the Indian GST breakdown for invoice amounts.
// Intra-state sales split the tax into equal CGST and SGST halves;
// inter-state sales carry the whole tax as IGST.
package gst

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidArgument is returned for a negative base amount or rate.
var ErrInvalidArgument = errors.New("gst: base amount and rate must be non-negative")

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Breakdown is the tax split for one invoice line. Exactly one of
// (CGST+SGST) or IGST is nonzero; Total is always base*rate/100.
type Breakdown struct {
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	Total       decimal.Decimal `json:"total"`
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// Compute returns the GST breakdown for baseAmount at rate percent.
// sameState selects the CGST/SGST split; both halves are derived from a
// single division so they can never drift apart from the total.
func Compute(baseAmount, rate decimal.Decimal, sameState bool) (Breakdown, error) {
	if baseAmount.IsNegative() || rate.IsNegative() {
		return Breakdown{}, ErrInvalidArgument
	}

	total := baseAmount.Mul(rate).Div(hundred)

	b := Breakdown{Total: total, FinalAmount: baseAmount.Add(total)}
	if sameState {
		half := total.Div(two)
		b.CGST = half
		b.SGST = total.Sub(half)
	} else {
		b.IGST = total
	}
	return b, nil
}

// SameState reports whether the buyer's state matches the seller's
// configured home state, i.e. whether the sale is intra-state.
func SameState(buyerState, homeState string) bool {
	return buyerState == homeState
}
