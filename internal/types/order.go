package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

type Side string

type OrderStatus string

const (
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	OrderReasonStrategy          string = "strategy"
	OrderReasonInsufficientFunds string = "insufficient_funds"
	OrderReasonEndOfData         string = "end_of_data"
)

type Reason struct {
	Reason  string `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	Message string `yaml:"message" json:"message" csv:"message"`
}

// Order is the full lifecycle record of a simulated order. An order is
// created when the broker converts a strategy intent, fills at the next
// eligible fill point and is immutable once completed.
type Order struct {
	OrderID string `yaml:"order_id" json:"order_id" csv:"order_id" validate:"required,uuid"`
	Symbol  string `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side    Side   `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	// Quantity is the requested quantity. Zero when SizeAllCash is set, in
	// which case the broker sizes the order at fill time from available cash.
	Quantity float64 `yaml:"quantity" json:"quantity" csv:"quantity" validate:"gte=0"`
	// SizeAllCash sizes the order at fill time as cash / fill price floored
	// to a whole unit.
	SizeAllCash bool        `yaml:"size_all_cash" json:"size_all_cash" csv:"size_all_cash"`
	Status      OrderStatus `yaml:"status" json:"status" csv:"status" validate:"required"`
	// SubmittedAt/SubmittedBar identify the bar the strategy decided on.
	SubmittedAt  time.Time `yaml:"submitted_at" json:"submitted_at" csv:"submitted_at" validate:"required"`
	SubmittedBar int       `yaml:"submitted_bar" json:"submitted_bar" csv:"submitted_bar" validate:"gte=0"`
	// Fill fields are zero until the order completes.
	FilledAt   time.Time `yaml:"filled_at" json:"filled_at" csv:"filled_at"`
	FilledBar  int       `yaml:"filled_bar" json:"filled_bar" csv:"filled_bar"`
	FillPrice  float64   `yaml:"fill_price" json:"fill_price" csv:"fill_price" validate:"gte=0"`
	FillCost   float64   `yaml:"fill_cost" json:"fill_cost" csv:"fill_cost"`
	Commission float64   `yaml:"commission" json:"commission" csv:"commission" validate:"gte=0"`
	// Reason records why the order was created or finalized
	Reason       Reason `yaml:"reason" json:"reason" csv:"reason" validate:"required"`
	StrategyName string `yaml:"strategy_name" json:"strategy_name" csv:"strategy_name" validate:"required"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	if !o.SizeAllCash && o.Quantity <= 0 {
		return errors.Newf(errors.ErrCodeInvalidOrder, "fixed-size order requires positive quantity, got %f", o.Quantity)
	}

	return nil
}

// Fill is the execution record of a completed order.
type Fill struct {
	OrderID    string    `yaml:"order_id" json:"order_id" csv:"order_id"`
	Symbol     string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side       Side      `yaml:"side" json:"side" csv:"side"`
	Quantity   float64   `yaml:"quantity" json:"quantity" csv:"quantity"`
	Price      float64   `yaml:"price" json:"price" csv:"price"`
	Commission float64   `yaml:"commission" json:"commission" csv:"commission"`
	ExecutedAt time.Time `yaml:"executed_at" json:"executed_at" csv:"executed_at"`
	BarIndex   int       `yaml:"bar_index" json:"bar_index" csv:"bar_index"`
}
