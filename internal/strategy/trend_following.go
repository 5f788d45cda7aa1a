package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/indicator"
	"github.com/rxtech-lab/tidemark/internal/types"
)

// TrendFollowing combines moving-average crossovers, volatility-band
// breakouts, oscillator threshold crossings, and candlestick patterns.
// Bullish terms are ORed together for an entry and bearish terms for an
// exit; each crossing term compares the previous bar against the
// current one so it fires only when the ordering actually flips.
type TrendFollowing struct {
	config Config
}

func (s *TrendFollowing) Name() string {
	return StrategyTrendFollowing
}

func (s *TrendFollowing) IndicatorConfig() indicator.Config {
	return indicator.Config{
		FastPeriod:     s.config.FastPeriod,
		SlowPeriod:     s.config.SlowPeriod,
		RSIPeriod:      s.config.OscillatorPeriod,
		BandsPeriod:    s.config.BandsPeriod,
		BandsDeviation: s.config.BandsDeviation,
		EnablePatterns: s.config.HammerEnabled || s.config.ShootingStarEnabled,
	}
}

func (s *TrendFollowing) Decide(bar types.Bar, cur indicator.Snapshot, prev optional.Option[indicator.Snapshot], inPosition bool) types.Intent {
	if prev.IsNone() {
		return types.Hold(bar)
	}
	p := prev.Unwrap()

	oversold := optional.Some(s.config.Oversold)
	overbought := optional.Some(s.config.Overbought)
	prevClose := optional.Some(p.Close)
	curClose := optional.Some(cur.Close)

	if !inPosition {
		switch {
		case crossedAbove(p.SMAFast, p.SMASlow, cur.SMAFast, cur.SMASlow):
			return enter(bar, "fast average crossed above slow average")
		case crossedAbove(prevClose, p.BandUpper, curClose, cur.BandUpper):
			return enter(bar, "close broke above upper band")
		case crossedAbove(p.RSI, oversold, cur.RSI, oversold):
			return enter(bar, "oscillator recovered from oversold")
		case s.config.HammerEnabled && cur.Hammer > 0:
			return enter(bar, "hammer pattern")
		}
		return types.Hold(bar)
	}

	switch {
	case crossedBelow(p.SMAFast, p.SMASlow, cur.SMAFast, cur.SMASlow):
		return exit(bar, "fast average crossed below slow average")
	case crossedBelow(prevClose, p.BandLower, curClose, cur.BandLower):
		return exit(bar, "close broke below lower band")
	case crossedBelow(p.RSI, overbought, cur.RSI, overbought):
		return exit(bar, "oscillator fell from overbought")
	case s.config.ShootingStarEnabled && cur.ShootingStar < 0:
		return exit(bar, "shooting star pattern")
	}
	return types.Hold(bar)
}

func enter(bar types.Bar, reason string) types.Intent {
	return types.Intent{
		Time:   bar.Time,
		Symbol: bar.Symbol,
		Type:   types.IntentTypeEnter,
		Reason: reason,
	}
}

func exit(bar types.Bar, reason string) types.Intent {
	return types.Intent{
		Time:   bar.Time,
		Symbol: bar.Symbol,
		Type:   types.IntentTypeExit,
		Reason: reason,
	}
}
