package types

import "time"

// Bar is one OHLCV price observation for a fixed time interval.
// Bars are immutable once appended to a series.
type Bar struct {
	Time   time.Time `csv:"time" yaml:"time"`
	Symbol string    `csv:"symbol" yaml:"symbol"`
	Open   float64   `csv:"open" yaml:"open"`
	High   float64   `csv:"high" yaml:"high"`
	Low    float64   `csv:"low" yaml:"low"`
	Close  float64   `csv:"close" yaml:"close"`
	Volume float64   `csv:"volume" yaml:"volume"`
}

// Range returns the high-low span of the bar. Zero for a flat bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Body returns the absolute open-close span of the bar.
func (b Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}

	return b.Open - b.Close
}
