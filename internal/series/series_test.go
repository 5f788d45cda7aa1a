package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

type BarSeriesTestSuite struct {
	suite.Suite
}

func TestBarSeriesSuite(t *testing.T) {
	suite.Run(t, new(BarSeriesTestSuite))
}

func barAt(day int, close float64) types.Bar {
	return types.Bar{
		Time:   time.Date(2014, 1, day, 0, 0, 0, 0, time.UTC),
		Symbol: "ORCL",
		Open:   close,
		High:   close + 1,
		Low:    close - 1,
		Close:  close,
		Volume: 1000,
	}
}

func (suite *BarSeriesTestSuite) TestNewBarSeriesValid() {
	s, err := NewBarSeries([]types.Bar{barAt(1, 100), barAt(2, 101), barAt(3, 102)})
	suite.Require().NoError(err)
	suite.Equal(3, s.Len())
}

func (suite *BarSeriesTestSuite) TestRejectsDuplicateTimestamp() {
	_, err := NewBarSeries([]types.Bar{barAt(1, 100), barAt(1, 101)})
	suite.Error(err)
	suite.Equal(errors.ErrCodeDuplicateTimestamp, errors.GetCode(err))
}

func (suite *BarSeriesTestSuite) TestRejectsOutOfOrderBar() {
	_, err := NewBarSeries([]types.Bar{barAt(2, 100), barAt(1, 101)})
	suite.Error(err)
	suite.Equal(errors.ErrCodeBarOutOfOrder, errors.GetCode(err))
}

func (suite *BarSeriesTestSuite) TestAt() {
	s, err := NewBarSeries([]types.Bar{barAt(1, 100), barAt(2, 101)})
	suite.Require().NoError(err)

	bar, err := s.At(1)
	suite.NoError(err)
	suite.Equal(101.0, bar.Close)

	_, err = s.At(2)
	suite.Equal(errors.ErrCodeLookbackOutOfRange, errors.GetCode(err))

	_, err = s.At(-1)
	suite.Equal(errors.ErrCodeLookbackOutOfRange, errors.GetCode(err))
}

func (suite *BarSeriesTestSuite) TestAdvanceAndCurrent() {
	s, err := NewBarSeries([]types.Bar{barAt(1, 100), barAt(2, 101)})
	suite.Require().NoError(err)

	_, ok := s.Current()
	suite.False(ok, "no current bar before first Advance")
	suite.Equal(-1, s.CursorIndex())

	suite.True(s.Advance())
	bar, ok := s.Current()
	suite.True(ok)
	suite.Equal(100.0, bar.Close)

	suite.True(s.Advance())
	suite.False(s.Advance(), "series exhausted")

	bar, ok = s.Current()
	suite.True(ok)
	suite.Equal(101.0, bar.Close)
}

func (suite *BarSeriesTestSuite) TestLookback() {
	s, err := NewBarSeries([]types.Bar{barAt(1, 100), barAt(2, 101), barAt(3, 102)})
	suite.Require().NoError(err)

	s.Advance()
	s.Advance()

	bar, err := s.Lookback(0)
	suite.NoError(err)
	suite.Equal(101.0, bar.Close)

	bar, err = s.Lookback(1)
	suite.NoError(err)
	suite.Equal(100.0, bar.Close)

	// the offset walks past the start of the series
	_, err = s.Lookback(2)
	suite.Equal(errors.ErrCodeInsufficientHistory, errors.GetCode(err))
	suite.True(errors.IsInsufficientHistoryError(err))

	_, err = s.Lookback(-1)
	suite.Equal(errors.ErrCodeLookbackOutOfRange, errors.GetCode(err))
	suite.False(errors.IsInsufficientHistoryError(err))
}

func (suite *BarSeriesTestSuite) TestReset() {
	s, err := NewBarSeries([]types.Bar{barAt(1, 100), barAt(2, 101)})
	suite.Require().NoError(err)

	s.Advance()
	s.Advance()
	s.Reset()

	suite.Equal(-1, s.CursorIndex())
	suite.True(s.Advance())

	bar, ok := s.Current()
	suite.True(ok)
	suite.Equal(100.0, bar.Close)
}

func (suite *BarSeriesTestSuite) TestLast() {
	s, err := NewBarSeries([]types.Bar{barAt(1, 100), barAt(2, 101)})
	suite.Require().NoError(err)

	bar, err := s.Last()
	suite.NoError(err)
	suite.Equal(101.0, bar.Close)

	empty, err := NewBarSeries(nil)
	suite.Require().NoError(err)
	_, err = empty.Last()
	suite.Equal(errors.ErrCodeEmptySeries, errors.GetCode(err))
}
