package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/types"
)

// Config selects the indicators an Engine maintains and their periods.
type Config struct {
	FastPeriod     int
	SlowPeriod     int
	RSIPeriod      int
	BandsPeriod    int
	BandsDeviation float64

	EnablePatterns bool
}

// Engine updates every configured indicator once per bar and packages
// the results into a Snapshot. It retains the snapshot of the previous
// bar so callers can compare consecutive readings.
type Engine struct {
	registry *Registry

	smaFast *SMA
	smaSlow *SMA
	rsi     *RSI
	bands   *BollingerBands
	hammer  *Hammer
	star    *ShootingStar

	last optional.Option[Snapshot]
	prev optional.Option[Snapshot]
}

func NewEngine(cfg Config) (*Engine, error) {
	e := &Engine{registry: NewRegistry()}

	var err error
	if e.smaFast, err = NewSMA(types.IndicatorTypeSMAFast, cfg.FastPeriod); err != nil {
		return nil, err
	}
	if e.smaSlow, err = NewSMA(types.IndicatorTypeSMASlow, cfg.SlowPeriod); err != nil {
		return nil, err
	}
	if e.rsi, err = NewRSI(cfg.RSIPeriod); err != nil {
		return nil, err
	}
	if e.bands, err = NewBollingerBands(cfg.BandsPeriod, cfg.BandsDeviation); err != nil {
		return nil, err
	}

	all := []Indicator{e.smaFast, e.smaSlow, e.rsi, e.bands}
	if cfg.EnablePatterns {
		e.hammer = NewHammer()
		e.star = NewShootingStar()
		all = append(all, e.hammer, e.star)
	}
	for _, ind := range all {
		if err := e.registry.Register(ind); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Update feeds the bar to every indicator and returns the resulting
// snapshot. The snapshot of the bar before it stays available through
// Previous until the next call.
func (e *Engine) Update(bar types.Bar) Snapshot {
	e.registry.UpdateAll(bar)

	snap := Snapshot{
		Time:       bar.Time,
		Close:      bar.Close,
		SMAFast:    e.smaFast.Value(),
		SMASlow:    e.smaSlow.Value(),
		RSI:        e.rsi.Value(),
		BandUpper:  e.bands.Upper(),
		BandMiddle: e.bands.Middle(),
		BandLower:  e.bands.Lower(),
	}
	if e.hammer != nil {
		snap.Hammer = e.hammer.Value().TakeOr(0)
		snap.ShootingStar = e.star.Value().TakeOr(0)
	}

	e.prev = e.last
	e.last = optional.Some(snap)
	return snap
}

// Previous returns the snapshot of the bar before the most recent
// Update, or None on the first bar.
func (e *Engine) Previous() optional.Option[Snapshot] {
	return e.prev
}

func (e *Engine) Indicator(name types.IndicatorType) (Indicator, error) {
	return e.registry.Get(name)
}
