package engine

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/tidemark/internal/logger"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Broker owns cash and the pending order queue. An intent submitted on
// bar N becomes a pending order that fills at bar N+1's open; orders
// whose full cost exceeds available cash are rejected without touching
// cash or position.
type Broker struct {
	logger     *logger.Logger
	ledger     *Ledger
	commission commission_fee.CommissionFee

	symbol       string
	strategyName string
	stake        float64
	sizeAllCash  bool

	cash    float64
	pending []types.Order
}

func NewBroker(
	ledger *Ledger,
	commission commission_fee.CommissionFee,
	logger *logger.Logger,
	symbol string,
	strategyName string,
	startingCash float64,
	stake float64,
	sizeAllCash bool,
) (*Broker, error) {
	if startingCash <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidCapital, "starting cash must be positive, got %f", startingCash)
	}
	if !sizeAllCash && stake <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidStake, "fixed sizing requires a positive stake, got %f", stake)
	}

	return &Broker{
		logger:       logger,
		ledger:       ledger,
		commission:   commission,
		symbol:       symbol,
		strategyName: strategyName,
		stake:        stake,
		sizeAllCash:  sizeAllCash,
		cash:         startingCash,
	}, nil
}

// Submit converts a strategy intent into a pending order. Enter while
// already positioned and Exit while flat are no-ops, as is any intent
// while an order is already pending.
func (b *Broker) Submit(intent types.Intent, barIndex int) (optional.Option[types.Order], error) {
	if intent.Type == types.IntentTypeHold {
		return optional.None[types.Order](), nil
	}
	if len(b.pending) > 0 {
		return optional.None[types.Order](), nil
	}

	position, err := b.ledger.GetPosition(b.symbol)
	if err != nil {
		return optional.None[types.Order](), err
	}

	order := types.Order{
		OrderID:      uuid.New().String(),
		Symbol:       b.symbol,
		Status:       types.OrderStatusSubmitted,
		SubmittedAt:  intent.Time,
		SubmittedBar: barIndex,
		Reason: types.Reason{
			Reason:  types.OrderReasonStrategy,
			Message: intent.Reason,
		},
		StrategyName: b.strategyName,
	}

	switch intent.Type {
	case types.IntentTypeEnter:
		if !position.IsFlat() {
			return optional.None[types.Order](), nil
		}
		order.Side = types.SideBuy
		if b.sizeAllCash {
			order.SizeAllCash = true
		} else {
			order.Quantity = b.stake
		}
	case types.IntentTypeExit:
		if position.IsFlat() {
			return optional.None[types.Order](), nil
		}
		order.Side = types.SideSell
		order.Quantity = position.Quantity
	default:
		return optional.None[types.Order](), errors.Newf(errors.ErrCodeInvalidOrder, "unknown intent type %q", intent.Type)
	}

	if err := order.Validate(); err != nil {
		return optional.None[types.Order](), err
	}
	if err := b.ledger.RecordOrder(order); err != nil {
		return optional.None[types.Order](), err
	}

	order.Status = types.OrderStatusAccepted
	if err := b.ledger.RecordOrder(order); err != nil {
		return optional.None[types.Order](), err
	}

	b.pending = append(b.pending, order)
	b.logger.Debug("Order accepted",
		zap.String("order_id", order.OrderID),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity))

	return optional.Some(order), nil
}

// ProcessPendingOrders fills every pending order at the given bar's
// open price and returns the finalized orders, filled or rejected.
func (b *Broker) ProcessPendingOrders(bar types.Bar, barIndex int) ([]types.Order, error) {
	if len(b.pending) == 0 {
		return nil, nil
	}

	processed := make([]types.Order, 0, len(b.pending))
	for _, order := range b.pending {
		final, err := b.fillOrder(order, bar, barIndex)
		if err != nil {
			return nil, err
		}
		processed = append(processed, final)
	}
	b.pending = b.pending[:0]

	return processed, nil
}

func (b *Broker) fillOrder(order types.Order, bar types.Bar, barIndex int) (types.Order, error) {
	price := bar.Open

	quantity := order.Quantity
	if order.SizeAllCash {
		quantity = maxAffordableQuantity(b.cash, price, b.commission)
	}

	if order.Side == types.SideBuy {
		cost := fillCost(quantity, price)
		fee := b.commission.Calculate(quantity, price)

		if quantity <= 0 || cost+fee > b.cash {
			order.Status = types.OrderStatusRejected
			order.Reason = types.Reason{
				Reason:  types.OrderReasonInsufficientFunds,
				Message: errors.Newf(errors.ErrCodeInsufficientFunds, "order cost %f exceeds cash %f", cost+fee, b.cash).Error(),
			}
			if err := b.ledger.RecordOrder(order); err != nil {
				return types.Order{}, err
			}
			b.logger.Warn("Order rejected",
				zap.String("order_id", order.OrderID),
				zap.Float64("cost", cost+fee),
				zap.Float64("cash", b.cash))

			return order, nil
		}

		b.cash = b.debit(cost, fee)
		return b.complete(order, quantity, price, cost, fee, bar, barIndex)
	}

	// sell: proceeds minus commission are credited to cash
	cost := fillCost(quantity, price)
	fee := b.commission.Calculate(quantity, price)
	b.cash = b.credit(cost, fee)

	return b.complete(order, quantity, price, cost, fee, bar, barIndex)
}

func (b *Broker) complete(order types.Order, quantity, price, cost, fee float64, bar types.Bar, barIndex int) (types.Order, error) {
	order.Status = types.OrderStatusCompleted
	order.Quantity = quantity
	order.FilledAt = bar.Time
	order.FilledBar = barIndex
	order.FillPrice = price
	order.FillCost = cost
	order.Commission = fee

	if err := b.ledger.RecordOrder(order); err != nil {
		return types.Order{}, err
	}
	if err := b.ledger.RecordFill(types.Fill{
		OrderID:    order.OrderID,
		Symbol:     order.Symbol,
		Side:       order.Side,
		Quantity:   quantity,
		Price:      price,
		Commission: fee,
		ExecutedAt: bar.Time,
		BarIndex:   barIndex,
	}); err != nil {
		return types.Order{}, err
	}

	b.logger.Debug("Order filled",
		zap.String("order_id", order.OrderID),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", quantity),
		zap.Float64("price", price))

	return order, nil
}

func (b *Broker) debit(cost, fee float64) float64 {
	cash, _ := decimal.NewFromFloat(b.cash).
		Sub(decimal.NewFromFloat(cost)).
		Sub(decimal.NewFromFloat(fee)).
		Float64()

	return cash
}

func (b *Broker) credit(cost, fee float64) float64 {
	cash, _ := decimal.NewFromFloat(b.cash).
		Add(decimal.NewFromFloat(cost)).
		Sub(decimal.NewFromFloat(fee)).
		Float64()

	return cash
}

// CancelPendingOrders cancels every pending order with the given
// reason, typically at end of data.
func (b *Broker) CancelPendingOrders(reason types.Reason) ([]types.Order, error) {
	canceled := make([]types.Order, 0, len(b.pending))
	for _, order := range b.pending {
		order.Status = types.OrderStatusCanceled
		order.Reason = reason
		if err := b.ledger.RecordOrder(order); err != nil {
			return nil, err
		}
		canceled = append(canceled, order)
	}
	b.pending = b.pending[:0]

	return canceled, nil
}

func (b *Broker) Cash() float64 {
	return b.cash
}

func (b *Broker) HasPendingOrders() bool {
	return len(b.pending) > 0
}

func (b *Broker) Position() (types.Position, error) {
	return b.ledger.GetPosition(b.symbol)
}

// PortfolioValue is cash plus the position marked at the given price.
func (b *Broker) PortfolioValue(price float64) (float64, error) {
	position, err := b.Position()
	if err != nil {
		return 0, err
	}

	value, _ := decimal.NewFromFloat(b.cash).
		Add(decimal.NewFromFloat(position.MarketValue(price))).
		Float64()

	return value, nil
}
