package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents current holdings of the simulated instrument.
// Quantity is signed: positive is long, negative is short, zero is flat.
// It is mutated only by the broker on fill.
type Position struct {
	Symbol   string  `yaml:"symbol" csv:"symbol"`
	Quantity float64 `yaml:"quantity" csv:"quantity"`

	TotalInQuantity  float64 `yaml:"total_in_quantity" csv:"total_in_quantity"`
	TotalOutQuantity float64 `yaml:"total_out_quantity" csv:"total_out_quantity"`
	TotalInAmount    float64 `yaml:"total_in_amount" csv:"total_in_amount"`
	TotalOutAmount   float64 `yaml:"total_out_amount" csv:"total_out_amount"`
	TotalInFee       float64 `yaml:"total_in_fee" csv:"total_in_fee"`
	TotalOutFee      float64 `yaml:"total_out_fee" csv:"total_out_fee"`

	OpenTimestamp time.Time `yaml:"open_timestamp" csv:"open_timestamp"`
	OpenBar       int       `yaml:"open_bar" csv:"open_bar"`
	StrategyName  string    `yaml:"strategy_name" csv:"strategy_name"`
}

// IsFlat reports whether the position holds no quantity.
func (p *Position) IsFlat() bool {
	return p.Quantity == 0
}

// Direction returns +1 for a long position, -1 for short, 0 for flat.
func (p *Position) Direction() int {
	switch {
	case p.Quantity > 0:
		return 1
	case p.Quantity < 0:
		return -1
	default:
		return 0
	}
}

// GetAverageEntryPrice calculates the cost-weighted mean entry price across
// all entry fills. Commission is tracked separately and excluded here.
func (p *Position) GetAverageEntryPrice() float64 {
	if p.TotalInQuantity == 0 {
		return 0
	}

	return p.TotalInAmount / p.TotalInQuantity
}

// GetAverageExitPrice calculates the cost-weighted mean exit price across all
// exit fills.
func (p *Position) GetAverageExitPrice() float64 {
	if p.TotalOutQuantity == 0 {
		return 0
	}

	return p.TotalOutAmount / p.TotalOutQuantity
}

// MarketValue returns the value of the held quantity at the given price.
func (p *Position) MarketValue(price float64) float64 {
	v, _ := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(price)).Float64()

	return v
}

// UnrealizedPnL returns the open profit/loss of the position at the given
// price, excluding commission already paid on the entry leg.
func (p *Position) UnrealizedPnL(price float64) float64 {
	if p.Quantity == 0 {
		return 0
	}

	entryDec := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(p.GetAverageEntryPrice()))
	markDec := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(price))
	result, _ := markDec.Sub(entryDec).Float64()

	return result
}

// ClosedTrade is an entry order matched with its closing order(s): one full
// round trip of the position from flat back to flat.
type ClosedTrade struct {
	Symbol     string    `yaml:"symbol" csv:"symbol"`
	Quantity   float64   `yaml:"quantity" csv:"quantity"`
	Direction  int       `yaml:"direction" csv:"direction"`
	OpenBar    int       `yaml:"open_bar" csv:"open_bar"`
	CloseBar   int       `yaml:"close_bar" csv:"close_bar"`
	OpenedAt   time.Time `yaml:"opened_at" csv:"opened_at"`
	ClosedAt   time.Time `yaml:"closed_at" csv:"closed_at"`
	EntryPrice float64   `yaml:"entry_price" csv:"entry_price"`
	ExitPrice  float64   `yaml:"exit_price" csv:"exit_price"`
	// GrossPnL is (exit - entry) * quantity * direction before commission.
	GrossPnL float64 `yaml:"gross_pnl" csv:"gross_pnl"`
	// Commission is the total commission across entry and exit legs.
	Commission float64 `yaml:"commission" csv:"commission"`
	// NetPnL is GrossPnL minus Commission.
	NetPnL   float64 `yaml:"net_pnl" csv:"net_pnl"`
	IsClosed bool    `yaml:"is_closed" csv:"is_closed"`
}

// ComputePnL fills in GrossPnL and NetPnL from the price legs using decimal
// arithmetic so repeated round trips do not accumulate float drift.
func (t *ClosedTrade) ComputePnL() {
	entryDec := decimal.NewFromFloat(t.Quantity).Mul(decimal.NewFromFloat(t.EntryPrice))
	exitDec := decimal.NewFromFloat(t.Quantity).Mul(decimal.NewFromFloat(t.ExitPrice))

	grossDec := exitDec.Sub(entryDec)
	if t.Direction < 0 {
		grossDec = grossDec.Neg()
	}

	t.GrossPnL, _ = grossDec.Float64()
	t.NetPnL, _ = grossDec.Sub(decimal.NewFromFloat(t.Commission)).Float64()
}
