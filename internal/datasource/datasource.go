// Package datasource supplies historical bars to the simulation. Sources
// parse date-indexed OHLCV files and yield bars in ascending timestamp order,
// filtered to a caller-specified date range.
package datasource

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/tidemark/internal/series"
	"github.com/rxtech-lab/tidemark/internal/types"
)

type BarSource interface {
	// Initialize loads market data from the given file path.
	Initialize(path string) error
	// Read returns all bars within [start, end] in ascending timestamp order.
	// None bounds mean unbounded.
	Read(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error)
	// Count returns the number of bars within [start, end].
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any resources held by the source.
	Close() error
}

// LoadSeries reads the given range from a source and builds a validated bar
// series from it.
func LoadSeries(source BarSource, start optional.Option[time.Time], end optional.Option[time.Time]) (*series.BarSeries, error) {
	bars, err := source.Read(start, end)
	if err != nil {
		return nil, err
	}

	return series.NewBarSeries(bars)
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
