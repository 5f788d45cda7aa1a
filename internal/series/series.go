// Package series provides an append-only, time-ordered sequence of price bars
// with O(1) indexed and lookback access for the simulation loop.
package series

import (
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// BarSeries is an ordered, append-only sequence of historical price bars.
// Integrity is enforced on append: timestamps must be strictly increasing, so
// out-of-order or duplicate bars are rejected at construction time rather
// than discovered mid-run.
//
// The series carries a cursor used by the run loop. Lookback access is
// bounds-checked relative to the cursor; there is no implicit coercion of a
// missing value to zero. Because the cursor is per-series mutable state, a
// series must drive at most one simulation; simulations sharing one series
// would interleave cursor moves.
type BarSeries struct {
	bars   []types.Bar
	cursor int
}

// NewBarSeries builds a series from the given bars, validating ordering.
func NewBarSeries(bars []types.Bar) (*BarSeries, error) {
	s := &BarSeries{
		bars:   make([]types.Bar, 0, len(bars)),
		cursor: -1,
	}

	for _, bar := range bars {
		if err := s.Append(bar); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Append adds a bar to the end of the series. The bar's timestamp must be
// strictly after the last bar's.
func (s *BarSeries) Append(bar types.Bar) error {
	if len(s.bars) > 0 {
		last := s.bars[len(s.bars)-1]
		if bar.Time.Equal(last.Time) {
			return errors.Newf(errors.ErrCodeDuplicateTimestamp,
				"duplicate bar timestamp %s at index %d", bar.Time, len(s.bars))
		}

		if bar.Time.Before(last.Time) {
			return errors.Newf(errors.ErrCodeBarOutOfOrder,
				"bar at index %d (%s) precedes previous bar (%s)", len(s.bars), bar.Time, last.Time)
		}
	}

	s.bars = append(s.bars, bar)

	return nil
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	return len(s.bars)
}

// At returns the bar at absolute index i.
func (s *BarSeries) At(i int) (types.Bar, error) {
	if i < 0 || i >= len(s.bars) {
		return types.Bar{}, errors.Newf(errors.ErrCodeLookbackOutOfRange,
			"index %d out of range [0, %d)", i, len(s.bars))
	}

	return s.bars[i], nil
}

// Lookback returns the bar offset bars before the cursor. Offset 0 is the
// current bar, offset 1 the previous one. An offset that reaches past the
// start of the series yields an insufficient-history error.
func (s *BarSeries) Lookback(offset int) (types.Bar, error) {
	if offset < 0 {
		return types.Bar{}, errors.Newf(errors.ErrCodeLookbackOutOfRange,
			"lookback offset must be non-negative, got %d", offset)
	}

	i := s.cursor - offset
	if s.cursor < 0 || i < 0 {
		cause := errors.NewInsufficientHistoryErrorf(offset+1, s.cursor+1, "series",
			"lookback offset %d exceeds available history at cursor %d", offset, s.cursor)

		return types.Bar{}, errors.Wrap(errors.ErrCodeInsufficientHistory,
			"insufficient history for lookback", cause)
	}

	return s.bars[i], nil
}

// Advance moves the cursor to the next bar. Returns false when the series is
// exhausted.
func (s *BarSeries) Advance() bool {
	if s.cursor+1 >= len(s.bars) {
		return false
	}

	s.cursor++

	return true
}

// Current returns the bar at the cursor. The second return is false before
// the first Advance.
func (s *BarSeries) Current() (types.Bar, bool) {
	if s.cursor < 0 || s.cursor >= len(s.bars) {
		return types.Bar{}, false
	}

	return s.bars[s.cursor], true
}

// CursorIndex returns the current cursor position (-1 before the first
// Advance).
func (s *BarSeries) CursorIndex() int {
	return s.cursor
}

// Reset rewinds the cursor so the series can drive another simulation.
func (s *BarSeries) Reset() {
	s.cursor = -1
}

// Last returns the final bar of the series.
func (s *BarSeries) Last() (types.Bar, error) {
	if len(s.bars) == 0 {
		return types.Bar{}, errors.New(errors.ErrCodeEmptySeries, "series has no bars")
	}

	return s.bars[len(s.bars)-1], nil
}
