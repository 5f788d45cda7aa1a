package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/indicator"
	"github.com/rxtech-lab/tidemark/internal/types"
)

// SMACross buys when the fast moving average crosses above the slow
// one and sells on the opposite crossover. A crossover is a change in
// relative ordering between the previous and current bar, so a signal
// fires once per cross instead of on every bar where fast > slow.
type SMACross struct {
	config Config
}

func (s *SMACross) Name() string {
	return StrategySMACross
}

func (s *SMACross) IndicatorConfig() indicator.Config {
	return indicator.Config{
		FastPeriod:     s.config.FastPeriod,
		SlowPeriod:     s.config.SlowPeriod,
		RSIPeriod:      s.config.OscillatorPeriod,
		BandsPeriod:    s.config.BandsPeriod,
		BandsDeviation: s.config.BandsDeviation,
	}
}

func (s *SMACross) Decide(bar types.Bar, cur indicator.Snapshot, prev optional.Option[indicator.Snapshot], inPosition bool) types.Intent {
	if prev.IsNone() {
		return types.Hold(bar)
	}
	p := prev.Unwrap()

	if !inPosition && crossedAbove(p.SMAFast, p.SMASlow, cur.SMAFast, cur.SMASlow) {
		return types.Intent{
			Time:   bar.Time,
			Symbol: bar.Symbol,
			Type:   types.IntentTypeEnter,
			Reason: "fast sma crossed above slow sma",
		}
	}
	if inPosition && crossedBelow(p.SMAFast, p.SMASlow, cur.SMAFast, cur.SMASlow) {
		return types.Intent{
			Time:   bar.Time,
			Symbol: bar.Symbol,
			Type:   types.IntentTypeExit,
			Reason: "fast sma crossed below slow sma",
		}
	}
	return types.Hold(bar)
}
