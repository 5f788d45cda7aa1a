package commission_fee

import (
	"github.com/rxtech-lab/tidemark/pkg/errors"
	"github.com/shopspring/decimal"
)

// PercentageCommissionFee charges a fixed fraction of the fill notional.
type PercentageCommissionFee struct {
	rate float64
}

func NewPercentageCommissionFee(rate float64) (*PercentageCommissionFee, error) {
	if rate < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidCommission, "commission rate must be non-negative, got %f", rate)
	}
	return &PercentageCommissionFee{rate: rate}, nil
}

func (c *PercentageCommissionFee) Calculate(quantity float64, price float64) float64 {
	fee, _ := decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(price)).
		Mul(decimal.NewFromFloat(c.rate)).
		Float64()

	return fee
}
