// Package pricing computes reservation prices and cancellation refunds.
//
// Arithmetic runs at full precision; Round2 is applied only when a value
// leaves the package for storage or display.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Dosada05/sports-center/apperr"
	"github.com/Dosada05/sports-center/schedule"
)

var (
	// MemberDiscountRate is the share of the base price active members save.
	MemberDiscountRate = decimal.RequireFromString("0.15")

	memberRefundRate    = decimal.NewFromInt(1)
	nonMemberRefundRate = decimal.RequireFromString("0.5")

	minutesPerHour = decimal.NewFromInt(60)
)

// Quote is the price breakdown of a reservation request.
type Quote struct {
	BasePrice  decimal.Decimal `json:"base_price"`
	Discount   decimal.Decimal `json:"member_discount"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Member     bool            `json:"is_member"`
}

// Calculate prices a booking of r at hourlyPrice. Active members get
// MemberDiscountRate off the base price.
func Calculate(hourlyPrice decimal.Decimal, r schedule.Range, activeMember bool) (Quote, error) {
	if r.Minutes() <= 0 {
		return Quote{}, apperr.New(apperr.ErrInvalidRange, "La hora de fin debe ser mayor que la de inicio")
	}
	if hourlyPrice.IsNegative() {
		return Quote{}, apperr.New(apperr.ErrValidation, "El precio por hora no puede ser negativo")
	}

	hours := decimal.NewFromInt(int64(r.Minutes())).Div(minutesPerHour)
	base := hourlyPrice.Mul(hours)

	q := Quote{BasePrice: base, Discount: decimal.Zero, FinalPrice: base, Member: activeMember}
	if activeMember {
		q.Discount = base.Mul(MemberDiscountRate)
		q.FinalPrice = base.Sub(q.Discount)
	}
	return q, nil
}

// Rounded returns the quote with every amount rounded to cents.
func (q Quote) Rounded() Quote {
	return Quote{
		BasePrice:  Round2(q.BasePrice),
		Discount:   Round2(q.Discount),
		FinalPrice: Round2(q.FinalPrice),
		Member:     q.Member,
	}
}

// RefundQuote describes what a cancellation gives back. It is informative
// only; no money is moved.
type RefundQuote struct {
	PaidPrice    decimal.Decimal `json:"paid_price"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Percentage   int             `json:"refund_percentage"`
	Member       bool            `json:"is_member"`
}

// Refund computes the refund for a cancelled reservation: the full amount
// for active members, half for everyone else.
func Refund(paid decimal.Decimal, activeMember bool) RefundQuote {
	rate, pct := nonMemberRefundRate, 50
	if activeMember {
		rate, pct = memberRefundRate, 100
	}
	return RefundQuote{
		PaidPrice:    Round2(paid),
		RefundAmount: Round2(paid.Mul(rate)),
		Percentage:   pct,
		Member:       activeMember,
	}
}

// Round2 rounds half-up to two decimal places. Prices are never negative,
// so decimal's half-away-from-zero rounding is half-up here.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
