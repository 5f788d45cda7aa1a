package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// RSI is the relative strength index with Wilder exponential smoothing.
// The first period deltas seed the averages with a simple mean; every
// delta after that is blended in at weight 1/period.
type RSI struct {
	period int

	prevClose  float64
	hasPrev    bool
	deltaCount int
	avgGain    float64
	avgLoss    float64
	sumGain    float64
	sumLoss    float64
}

func NewRSI(period int) (*RSI, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "rsi period must be positive, got %d", period)
	}
	return &RSI{period: period}, nil
}

func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

func (r *RSI) Update(bar types.Bar) {
	if !r.hasPrev {
		r.prevClose = bar.Close
		r.hasPrev = true
		return
	}

	delta := bar.Close - r.prevClose
	r.prevClose = bar.Close

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	r.deltaCount++
	switch {
	case r.deltaCount < r.period:
		r.sumGain += gain
		r.sumLoss += loss
	case r.deltaCount == r.period:
		r.sumGain += gain
		r.sumLoss += loss
		r.avgGain = r.sumGain / float64(r.period)
		r.avgLoss = r.sumLoss / float64(r.period)
	default:
		n := float64(r.period)
		r.avgGain = (r.avgGain*(n-1) + gain) / n
		r.avgLoss = (r.avgLoss*(n-1) + loss) / n
	}
}

func (r *RSI) Value() optional.Option[float64] {
	if r.deltaCount < r.period {
		return optional.None[float64]()
	}
	if r.avgLoss == 0 {
		return optional.Some(100.0)
	}
	rs := r.avgGain / r.avgLoss
	return optional.Some(100.0 - 100.0/(1.0+rs))
}
