package indicator

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/types"
)

// Indicator consumes bars one at a time and exposes its latest value.
// Value returns None until the indicator has seen enough history.
type Indicator interface {
	Name() types.IndicatorType
	Update(bar types.Bar)
	Value() optional.Option[float64]
}

// Snapshot captures every indicator value after a single bar update.
// Optional fields stay None while the corresponding indicator warms up.
type Snapshot struct {
	Time  time.Time
	Close float64

	SMAFast optional.Option[float64]
	SMASlow optional.Option[float64]
	RSI     optional.Option[float64]

	BandUpper  optional.Option[float64]
	BandMiddle optional.Option[float64]
	BandLower  optional.Option[float64]

	Hammer       float64
	ShootingStar float64
}
