package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/types"
)

// candleShape breaks a bar into the measurements the single-candle
// pattern detectors share. ok is false for zero-range bars, which can
// never form a pattern.
type candleShape struct {
	bodyTop, bodyBottom float64
	body                float64
	upperShadow         float64
	lowerShadow         float64
	candleRange         float64
}

func shapeOf(bar types.Bar) (candleShape, bool) {
	r := bar.High - bar.Low
	if r <= 0 {
		return candleShape{}, false
	}
	top, bottom := bar.Open, bar.Close
	if bottom > top {
		top, bottom = bottom, top
	}
	return candleShape{
		bodyTop:     top,
		bodyBottom:  bottom,
		body:        top - bottom,
		upperShadow: bar.High - top,
		lowerShadow: bottom - bar.Low,
		candleRange: r,
	}, true
}

// Hammer detects a small body in the upper third of the range with a
// lower shadow at least twice the body. Reports 100 on a match, 0
// otherwise.
type Hammer struct {
	seen  bool
	value float64
}

func NewHammer() *Hammer {
	return &Hammer{}
}

func (h *Hammer) Name() types.IndicatorType {
	return types.IndicatorTypeHammer
}

func (h *Hammer) Update(bar types.Bar) {
	h.seen = true
	h.value = 0

	shape, ok := shapeOf(bar)
	if !ok || shape.body == 0 {
		return
	}
	inUpperThird := shape.bodyBottom >= bar.Low+shape.candleRange*2/3
	if inUpperThird && shape.lowerShadow >= 2*shape.body {
		h.value = 100
	}
}

func (h *Hammer) Value() optional.Option[float64] {
	if !h.seen {
		return optional.None[float64]()
	}
	return optional.Some(h.value)
}

// ShootingStar detects a small body in the lower third of the range
// with an upper shadow at least twice the body. Reports -100 on a
// match, 0 otherwise.
type ShootingStar struct {
	seen  bool
	value float64
}

func NewShootingStar() *ShootingStar {
	return &ShootingStar{}
}

func (s *ShootingStar) Name() types.IndicatorType {
	return types.IndicatorTypeShootingStar
}

func (s *ShootingStar) Update(bar types.Bar) {
	s.seen = true
	s.value = 0

	shape, ok := shapeOf(bar)
	if !ok || shape.body == 0 {
		return
	}
	inLowerThird := shape.bodyTop <= bar.High-shape.candleRange*2/3
	if inLowerThird && shape.upperShadow >= 2*shape.body {
		s.value = -100
	}
}

func (s *ShootingStar) Value() optional.Option[float64] {
	if !s.seen {
		return optional.None[float64]()
	}
	return optional.Some(s.value)
}
