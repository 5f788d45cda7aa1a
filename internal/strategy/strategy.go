package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/indicator"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// Strategy turns one bar plus its indicator snapshots into a trading
// intent. Decide must be a pure function of its arguments: every piece
// of temporal memory lives in the indicator engine, delivered through
// the current and previous snapshots.
type Strategy interface {
	Name() string
	// IndicatorConfig declares the indicators the strategy reads.
	IndicatorConfig() indicator.Config
	Decide(bar types.Bar, cur indicator.Snapshot, prev optional.Option[indicator.Snapshot], inPosition bool) types.Intent
}

const (
	StrategySMACross       = "sma_cross"
	StrategyTrendFollowing = "trend_following"
)

func NewStrategy(cfg Config) (Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Name {
	case StrategySMACross:
		return &SMACross{config: cfg}, nil
	case StrategyTrendFollowing:
		return &TrendFollowing{config: cfg}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "unknown strategy %q", cfg.Name)
	}
}

// crossedAbove reports whether series a moved from at-or-below series b
// on the previous bar to strictly above it on the current bar. Any
// missing value means no crossover.
func crossedAbove(prevA, prevB, curA, curB optional.Option[float64]) bool {
	if prevA.IsNone() || prevB.IsNone() || curA.IsNone() || curB.IsNone() {
		return false
	}
	return prevA.Unwrap() <= prevB.Unwrap() && curA.Unwrap() > curB.Unwrap()
}

func crossedBelow(prevA, prevB, curA, curB optional.Option[float64]) bool {
	if prevA.IsNone() || prevB.IsNone() || curA.IsNone() || curB.IsNone() {
		return false
	}
	return prevA.Unwrap() >= prevB.Unwrap() && curA.Unwrap() < curB.Unwrap()
}
