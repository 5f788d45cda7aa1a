package commission_fee

import (
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

type CommissionFee interface {
	// Calculate the commission fee in account currency for a fill of the
	// given quantity at the given price.
	Calculate(quantity float64, price float64) float64
}

type Model string

const (
	ModelPercentage Model = "percentage"
	ModelZero       Model = "zero_commission"
)

var AllModels = []any{
	ModelPercentage,
	ModelZero,
}

func GetCommissionFeeHandler(model Model, rate float64) (CommissionFee, error) {
	switch model {
	case ModelPercentage:
		return NewPercentageCommissionFee(rate)
	case ModelZero, "":
		return NewZeroCommissionFee(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidCommission, "unknown commission model %q", model)
	}
}
