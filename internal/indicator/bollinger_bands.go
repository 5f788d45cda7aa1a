package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// BollingerBands computes a rolling mean band plus upper and lower
// bands offset by k sample standard deviations.
type BollingerBands struct {
	period    int
	deviation float64

	window []float64
	head   int
	count  int
}

func NewBollingerBands(period int, deviation float64) (*BollingerBands, error) {
	if period < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "bollinger bands period must be at least 2, got %d", period)
	}
	if deviation <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidDeviation, "bollinger bands deviation must be positive, got %f", deviation)
	}
	return &BollingerBands{
		period:    period,
		deviation: deviation,
		window:    make([]float64, period),
	}, nil
}

func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

func (b *BollingerBands) Update(bar types.Bar) {
	b.window[b.head] = bar.Close
	b.head = (b.head + 1) % b.period
	if b.count < b.period {
		b.count++
	}
}

// Value returns the middle band.
func (b *BollingerBands) Value() optional.Option[float64] {
	return b.Middle()
}

func (b *BollingerBands) Middle() optional.Option[float64] {
	if b.count < b.period {
		return optional.None[float64]()
	}
	mean, _ := b.stats()
	return optional.Some(mean)
}

func (b *BollingerBands) Upper() optional.Option[float64] {
	if b.count < b.period {
		return optional.None[float64]()
	}
	mean, stddev := b.stats()
	return optional.Some(mean + b.deviation*stddev)
}

func (b *BollingerBands) Lower() optional.Option[float64] {
	if b.count < b.period {
		return optional.None[float64]()
	}
	mean, stddev := b.stats()
	return optional.Some(mean - b.deviation*stddev)
}

func (b *BollingerBands) stats() (mean, stddev float64) {
	sum := 0.0
	for _, v := range b.window {
		sum += v
	}
	mean = sum / float64(b.period)

	variance := 0.0
	for _, v := range b.window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(b.period - 1)
	return mean, math.Sqrt(variance)
}
