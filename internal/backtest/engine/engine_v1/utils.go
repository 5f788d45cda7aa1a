package engine

import (
	"math"

	"github.com/rxtech-lab/tidemark/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/shopspring/decimal"
)

// maxAffordableQuantity returns the largest whole quantity whose cost
// plus commission fits inside cash at the given price. The initial
// guess ignores commission, then shrinks until the full cost fits.
func maxAffordableQuantity(cash float64, price float64, fee commission_fee.CommissionFee) float64 {
	if price <= 0 || cash <= 0 {
		return 0
	}

	qty := math.Floor(cash / price)
	for qty > 0 {
		if fillCost(qty, price)+fee.Calculate(qty, price) <= cash {
			return qty
		}
		qty--
	}

	return 0
}

// fillCost is the notional of a fill, computed with decimal arithmetic
// to keep cash mutations exact.
func fillCost(quantity float64, price float64) float64 {
	cost, _ := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).Float64()

	return cost
}
