package strategy

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/indicator"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func snapshotWithSMAs(fast, slow float64) indicator.Snapshot {
	return indicator.Snapshot{
		SMAFast: optional.Some(fast),
		SMASlow: optional.Some(slow),
	}
}

func testBar() types.Bar {
	return types.Bar{
		Time:   time.Date(2014, 6, 2, 0, 0, 0, 0, time.UTC),
		Symbol: "ORCL",
		Open:   40, High: 41, Low: 39, Close: 40.5,
		Volume: 1000,
	}
}

func (s *StrategyTestSuite) TestNewStrategyUnknownName() {
	cfg := DefaultConfig("momentum")
	_, err := NewStrategy(cfg)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (s *StrategyTestSuite) TestConfigValidation() {
	testcases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero fast period", mutate: func(c *Config) { c.FastPeriod = 0 }, wantErr: true},
		{name: "overbought below oversold", mutate: func(c *Config) { c.Overbought = 20 }, wantErr: true},
		{name: "negative deviation", mutate: func(c *Config) { c.BandsDeviation = -1 }, wantErr: true},
		{name: "oscillator period zero", mutate: func(c *Config) { c.OscillatorPeriod = 0 }, wantErr: true},
	}

	for _, tc := range testcases {
		s.Run(tc.name, func() {
			cfg := DefaultConfig(StrategySMACross)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				s.Error(err)
				s.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
			} else {
				s.NoError(err)
			}
		})
	}
}

func (s *StrategyTestSuite) TestSMACrossEnterOnUpwardCross() {
	strat, err := NewStrategy(DefaultConfig(StrategySMACross))
	s.Require().NoError(err)

	prev := snapshotWithSMAs(99, 100)
	cur := snapshotWithSMAs(101, 100)

	intent := strat.Decide(testBar(), cur, optional.Some(prev), false)
	s.Equal(types.IntentTypeEnter, intent.Type)
}

func (s *StrategyTestSuite) TestSMACrossNoRetrigger() {
	strat, err := NewStrategy(DefaultConfig(StrategySMACross))
	s.Require().NoError(err)

	// fast already above slow on both bars: no new crossover
	prev := snapshotWithSMAs(101, 100)
	cur := snapshotWithSMAs(102, 100)

	intent := strat.Decide(testBar(), cur, optional.Some(prev), false)
	s.Equal(types.IntentTypeHold, intent.Type)
}

func (s *StrategyTestSuite) TestSMACrossExitOnDownwardCross() {
	strat, err := NewStrategy(DefaultConfig(StrategySMACross))
	s.Require().NoError(err)

	prev := snapshotWithSMAs(101, 100)
	cur := snapshotWithSMAs(99, 100)

	intent := strat.Decide(testBar(), cur, optional.Some(prev), true)
	s.Equal(types.IntentTypeExit, intent.Type)

	// same crossover while flat is not an exit signal
	intent = strat.Decide(testBar(), cur, optional.Some(prev), false)
	s.Equal(types.IntentTypeHold, intent.Type)
}

func (s *StrategyTestSuite) TestSMACrossHoldsDuringWarmup() {
	strat, err := NewStrategy(DefaultConfig(StrategySMACross))
	s.Require().NoError(err)

	cur := indicator.Snapshot{SMAFast: optional.Some(101.0)}
	intent := strat.Decide(testBar(), cur, optional.None[indicator.Snapshot](), false)
	s.Equal(types.IntentTypeHold, intent.Type)

	// previous snapshot exists but slow sma is still warming up
	prev := indicator.Snapshot{SMAFast: optional.Some(99.0)}
	intent = strat.Decide(testBar(), cur, optional.Some(prev), false)
	s.Equal(types.IntentTypeHold, intent.Type)
}

func (s *StrategyTestSuite) TestTrendFollowingAverageCrossover() {
	strat, err := NewStrategy(DefaultConfig(StrategyTrendFollowing))
	s.Require().NoError(err)

	// fast crosses above slow while every other term stays quiet
	prev := indicator.Snapshot{
		Close:     100,
		SMAFast:   optional.Some(99.0),
		SMASlow:   optional.Some(100.0),
		RSI:       optional.Some(100.0),
		BandUpper: optional.Some(200.0),
		BandLower: optional.Some(10.0),
	}
	cur := indicator.Snapshot{
		Close:     100,
		SMAFast:   optional.Some(101.0),
		SMASlow:   optional.Some(100.0),
		RSI:       optional.Some(100.0),
		BandUpper: optional.Some(200.0),
		BandLower: optional.Some(10.0),
	}

	intent := strat.Decide(testBar(), cur, optional.Some(prev), false)
	s.Equal(types.IntentTypeEnter, intent.Type)
	s.Equal("fast average crossed above slow average", intent.Reason)

	// the mirror crossover closes an open position
	intent = strat.Decide(testBar(), swapAverages(cur), optional.Some(swapAverages(prev)), true)
	s.Equal(types.IntentTypeExit, intent.Type)
	s.Equal("fast average crossed below slow average", intent.Reason)
}

// swapAverages mirrors a snapshot's fast/slow averages so an upward
// crossover pair becomes a downward one.
func swapAverages(snap indicator.Snapshot) indicator.Snapshot {
	snap.SMAFast, snap.SMASlow = snap.SMASlow, snap.SMAFast
	return snap
}

func (s *StrategyTestSuite) TestTrendFollowingBandBreakout() {
	cfg := DefaultConfig(StrategyTrendFollowing)
	strat, err := NewStrategy(cfg)
	s.Require().NoError(err)

	prev := indicator.Snapshot{
		Close:     100,
		BandUpper: optional.Some(102.0),
		BandLower: optional.Some(95.0),
	}
	cur := indicator.Snapshot{
		Close:     103,
		BandUpper: optional.Some(102.5),
		BandLower: optional.Some(95.5),
	}

	intent := strat.Decide(testBar(), cur, optional.Some(prev), false)
	s.Equal(types.IntentTypeEnter, intent.Type)
	s.Equal("close broke above upper band", intent.Reason)
}

func (s *StrategyTestSuite) TestTrendFollowingOscillatorRecovery() {
	strat, err := NewStrategy(DefaultConfig(StrategyTrendFollowing))
	s.Require().NoError(err)

	prev := indicator.Snapshot{Close: 100, RSI: optional.Some(25.0)}
	cur := indicator.Snapshot{Close: 100, RSI: optional.Some(35.0)}

	intent := strat.Decide(testBar(), cur, optional.Some(prev), false)
	s.Equal(types.IntentTypeEnter, intent.Type)
	s.Equal("oscillator recovered from oversold", intent.Reason)
}

func (s *StrategyTestSuite) TestTrendFollowingPatternsGatedByConfig() {
	bullish := indicator.Snapshot{Close: 100, Hammer: 100}
	prev := indicator.Snapshot{Close: 100}

	disabled, err := NewStrategy(DefaultConfig(StrategyTrendFollowing))
	s.Require().NoError(err)
	intent := disabled.Decide(testBar(), bullish, optional.Some(prev), false)
	s.Equal(types.IntentTypeHold, intent.Type)

	cfg := DefaultConfig(StrategyTrendFollowing)
	cfg.HammerEnabled = true
	enabled, err := NewStrategy(cfg)
	s.Require().NoError(err)
	intent = enabled.Decide(testBar(), bullish, optional.Some(prev), false)
	s.Equal(types.IntentTypeEnter, intent.Type)
	s.Equal("hammer pattern", intent.Reason)
}

func (s *StrategyTestSuite) TestTrendFollowingExitSignals() {
	cfg := DefaultConfig(StrategyTrendFollowing)
	cfg.ShootingStarEnabled = true
	strat, err := NewStrategy(cfg)
	s.Require().NoError(err)

	prev := indicator.Snapshot{Close: 100, BandLower: optional.Some(95.0)}
	cur := indicator.Snapshot{Close: 94, BandLower: optional.Some(95.0)}
	intent := strat.Decide(testBar(), cur, optional.Some(prev), true)
	s.Equal(types.IntentTypeExit, intent.Type)
	s.Equal("close broke below lower band", intent.Reason)

	bearish := indicator.Snapshot{Close: 100, ShootingStar: -100}
	intent = strat.Decide(testBar(), bearish, optional.Some(prev), true)
	s.Equal(types.IntentTypeExit, intent.Type)
	s.Equal("shooting star pattern", intent.Reason)

	// exit signals while flat are no-ops
	intent = strat.Decide(testBar(), bearish, optional.Some(prev), false)
	s.Equal(types.IntentTypeHold, intent.Type)
}
