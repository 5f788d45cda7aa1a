package indicator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func barsFromCloses(closes ...float64) []types.Bar {
	start := time.Date(2014, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Symbol: "ORCL",
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func (s *IndicatorTestSuite) TestSMAWarmupAndRollingWindow() {
	sma, err := NewSMA(types.IndicatorTypeSMAFast, 3)
	s.Require().NoError(err)

	bars := barsFromCloses(10, 20, 30, 40)

	sma.Update(bars[0])
	s.True(sma.Value().IsNone())
	sma.Update(bars[1])
	s.True(sma.Value().IsNone())

	sma.Update(bars[2])
	s.Require().True(sma.Value().IsSome())
	s.InDelta(20, sma.Value().Unwrap(), 1e-9)

	sma.Update(bars[3])
	s.InDelta(30, sma.Value().Unwrap(), 1e-9)
}

func (s *IndicatorTestSuite) TestSMAConstantSeries() {
	sma, err := NewSMA(types.IndicatorTypeSMASlow, 5)
	s.Require().NoError(err)

	for _, bar := range barsFromCloses(42, 42, 42, 42, 42, 42, 42, 42) {
		sma.Update(bar)
		if sma.Value().IsSome() {
			s.InDelta(42, sma.Value().Unwrap(), 1e-9)
		}
	}
}

func (s *IndicatorTestSuite) TestSMAInvalidPeriod() {
	_, err := NewSMA(types.IndicatorTypeSMAFast, 0)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (s *IndicatorTestSuite) TestRSIWarmupAndBounds() {
	rsi, err := NewRSI(3)
	s.Require().NoError(err)

	bars := barsFromCloses(100, 101, 99, 102, 98, 103, 97)
	for i, bar := range bars {
		rsi.Update(bar)
		if i < 3 {
			// one seed close plus three deltas before the first value
			s.True(rsi.Value().IsNone(), "bar %d", i)
			continue
		}
		s.Require().True(rsi.Value().IsSome(), "bar %d", i)
		v := rsi.Value().Unwrap()
		s.GreaterOrEqual(v, 0.0)
		s.LessOrEqual(v, 100.0)
	}
}

func (s *IndicatorTestSuite) TestRSIAllGainsIsHundred() {
	rsi, err := NewRSI(3)
	s.Require().NoError(err)

	for _, bar := range barsFromCloses(10, 11, 12, 13, 14) {
		rsi.Update(bar)
	}
	s.Require().True(rsi.Value().IsSome())
	s.InDelta(100, rsi.Value().Unwrap(), 1e-9)
}

func (s *IndicatorTestSuite) TestBollingerBandsConstantSeries() {
	bands, err := NewBollingerBands(4, 2.0)
	s.Require().NoError(err)

	for _, bar := range barsFromCloses(50, 50, 50) {
		bands.Update(bar)
	}
	s.True(bands.Middle().IsNone())

	bands.Update(barsFromCloses(50)[0])
	s.Require().True(bands.Middle().IsSome())
	s.InDelta(50, bands.Middle().Unwrap(), 1e-9)
	s.InDelta(50, bands.Upper().Unwrap(), 1e-9)
	s.InDelta(50, bands.Lower().Unwrap(), 1e-9)
}

func (s *IndicatorTestSuite) TestBollingerBandsSpread() {
	bands, err := NewBollingerBands(2, 2.0)
	s.Require().NoError(err)

	for _, bar := range barsFromCloses(10, 20) {
		bands.Update(bar)
	}
	// mean 15, sample stddev sqrt((25+25)/1) ~ 7.0711
	s.InDelta(15, bands.Middle().Unwrap(), 1e-9)
	s.InDelta(15+2*7.0710678118654755, bands.Upper().Unwrap(), 1e-6)
	s.InDelta(15-2*7.0710678118654755, bands.Lower().Unwrap(), 1e-6)
}

func (s *IndicatorTestSuite) TestBollingerBandsInvalidConfig() {
	_, err := NewBollingerBands(1, 2.0)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = NewBollingerBands(20, 0)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidDeviation))
}

func (s *IndicatorTestSuite) TestHammerDetection() {
	hammer := NewHammer()
	s.True(hammer.Value().IsNone())

	base := time.Date(2014, 3, 3, 0, 0, 0, 0, time.UTC)

	// long lower shadow, body in upper third
	hammer.Update(types.Bar{Time: base, Open: 98, High: 100, Low: 90, Close: 99})
	s.InDelta(100, hammer.Value().Unwrap(), 1e-9)

	// body in the middle of the range: not a hammer
	hammer.Update(types.Bar{Time: base.AddDate(0, 0, 1), Open: 94, High: 100, Low: 90, Close: 96})
	s.InDelta(0, hammer.Value().Unwrap(), 1e-9)

	// zero-range bar never matches
	hammer.Update(types.Bar{Time: base.AddDate(0, 0, 2), Open: 95, High: 95, Low: 95, Close: 95})
	s.InDelta(0, hammer.Value().Unwrap(), 1e-9)
}

func (s *IndicatorTestSuite) TestShootingStarDetection() {
	star := NewShootingStar()

	base := time.Date(2014, 3, 3, 0, 0, 0, 0, time.UTC)

	// long upper shadow, body in lower third
	star.Update(types.Bar{Time: base, Open: 92, High: 100, Low: 90, Close: 91})
	s.InDelta(-100, star.Value().Unwrap(), 1e-9)

	star.Update(types.Bar{Time: base.AddDate(0, 0, 1), Open: 95, High: 100, Low: 90, Close: 96})
	s.InDelta(0, star.Value().Unwrap(), 1e-9)
}

func (s *IndicatorTestSuite) TestEngineSnapshotAndPrevious() {
	engine, err := NewEngine(Config{
		FastPeriod:     2,
		SlowPeriod:     3,
		RSIPeriod:      2,
		BandsPeriod:    2,
		BandsDeviation: 2.0,
		EnablePatterns: true,
	})
	s.Require().NoError(err)

	bars := barsFromCloses(10, 20, 30)

	first := engine.Update(bars[0])
	s.True(first.SMAFast.IsNone())
	s.True(engine.Previous().IsNone())

	second := engine.Update(bars[1])
	s.Require().True(second.SMAFast.IsSome())
	s.InDelta(15, second.SMAFast.Unwrap(), 1e-9)
	s.True(second.SMASlow.IsNone())
	prev, err := engine.Previous().Take()
	s.Require().NoError(err)
	s.Equal(first.Time, prev.Time)

	third := engine.Update(bars[2])
	s.InDelta(25, third.SMAFast.Unwrap(), 1e-9)
	s.InDelta(20, third.SMASlow.Unwrap(), 1e-9)
	s.Require().True(third.RSI.IsSome())
	s.InDelta(100, third.RSI.Unwrap(), 1e-9)
}

func (s *IndicatorTestSuite) TestEngineInvalidConfigFailsFast() {
	_, err := NewEngine(Config{
		FastPeriod:     0,
		SlowPeriod:     30,
		RSIPeriod:      14,
		BandsPeriod:    20,
		BandsDeviation: 2.0,
	})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (s *IndicatorTestSuite) TestRegistryDuplicateAndLookup() {
	reg := NewRegistry()
	sma, err := NewSMA(types.IndicatorTypeSMAFast, 5)
	s.Require().NoError(err)
	s.Require().NoError(reg.Register(sma))

	dup, err := NewSMA(types.IndicatorTypeSMAFast, 10)
	s.Require().NoError(err)
	s.Error(reg.Register(dup))

	got, err := reg.Get(types.IndicatorTypeSMAFast)
	s.Require().NoError(err)
	s.Equal(sma, got)

	_, err = reg.Get(types.IndicatorTypeRSI)
	s.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}
