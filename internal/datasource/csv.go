package datasource

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/tidemark/internal/logger"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// csvDate parses the date-only format used by Yahoo-style daily files.
type csvDate struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *csvDate) UnmarshalCSV(value string) error {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return err
	}

	d.Time = parsed

	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (d csvDate) MarshalCSV() (string, error) {
	return d.Format("2006-01-02"), nil
}

// yahooRow is one line of a Yahoo-style daily OHLCV file
// (Date,Open,High,Low,Close,Adj Close,Volume).
type yahooRow struct {
	Date     csvDate `csv:"Date"`
	Open     float64 `csv:"Open"`
	High     float64 `csv:"High"`
	Low      float64 `csv:"Low"`
	Close    float64 `csv:"Close"`
	AdjClose float64 `csv:"Adj Close"`
	Volume   float64 `csv:"Volume"`
}

// CSVBarSource reads daily OHLCV bars from a Yahoo-style CSV file.
type CSVBarSource struct {
	symbol string
	log    *logger.Logger
	bars   []types.Bar
}

// NewCSVBarSource creates a CSV bar source. If symbol is empty it is derived
// from the data file name on Initialize.
func NewCSVBarSource(symbol string, log *logger.Logger) *CSVBarSource {
	return &CSVBarSource{
		symbol: symbol,
		log:    log,
		bars:   nil,
	}
}

// Initialize implements BarSource.
func (s *CSVBarSource) Initialize(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	var rows []yahooRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return errors.Wrapf(errors.ErrCodeDataParseFailed, err, "failed to parse CSV file %s", path)
	}

	symbol := s.symbol
	if symbol == "" {
		symbol = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	bars := make([]types.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, types.Bar{
			Time:   row.Date.Time,
			Symbol: symbol,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	// Some exports are newest-first; the engine requires ascending order.
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	s.symbol = symbol
	s.bars = bars

	s.log.Debug("Loaded CSV bars",
		zap.String("path", path),
		zap.String("symbol", symbol),
		zap.Int("count", len(bars)),
	)

	return nil
}

// Read implements BarSource.
func (s *CSVBarSource) Read(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	if s.bars == nil {
		return nil, errors.New(errors.ErrCodeDataNotFound, "source not initialized")
	}

	var filtered []types.Bar

	for _, bar := range s.bars {
		if inRange(bar.Time, start, end) {
			filtered = append(filtered, bar)
		}
	}

	return filtered, nil
}

// Count implements BarSource.
func (s *CSVBarSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	bars, err := s.Read(start, end)
	if err != nil {
		return 0, err
	}

	return len(bars), nil
}

// Symbol returns the symbol the source yields bars for.
func (s *CSVBarSource) Symbol() string {
	return s.symbol
}

// Close implements BarSource.
func (s *CSVBarSource) Close() error {
	s.bars = nil

	return nil
}
