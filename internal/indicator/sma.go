package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// SMA is a rolling simple moving average over closing prices.
type SMA struct {
	name   types.IndicatorType
	period int

	window []float64
	head   int
	count  int
	sum    float64
}

func NewSMA(name types.IndicatorType, period int) (*SMA, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be positive, got %d", period)
	}
	return &SMA{
		name:   name,
		period: period,
		window: make([]float64, period),
	}, nil
}

func (s *SMA) Name() types.IndicatorType {
	return s.name
}

func (s *SMA) Update(bar types.Bar) {
	if s.count == s.period {
		s.sum -= s.window[s.head]
	} else {
		s.count++
	}
	s.window[s.head] = bar.Close
	s.sum += bar.Close
	s.head = (s.head + 1) % s.period
}

func (s *SMA) Value() optional.Option[float64] {
	if s.count < s.period {
		return optional.None[float64]()
	}
	return optional.Some(s.sum / float64(s.period))
}
