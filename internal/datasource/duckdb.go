package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/tidemark/internal/logger"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
)

// DuckDBBarSource reads bars from CSV or Parquet files via an in-memory
// DuckDB view, so large files can be range-filtered without loading
// everything into Go.
type DuckDBBarSource struct {
	db     *sql.DB
	log    *logger.Logger
	sq     squirrel.StatementBuilderType
	symbol string
}

// NewDuckDBBarSource creates a DuckDB-backed bar source. If symbol is empty
// it is derived from the data file name on Initialize.
func NewDuckDBBarSource(symbol string, log *logger.Logger) (*DuckDBBarSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataNotFound, "failed to open duckdb", err)
	}

	return &DuckDBBarSource{
		db:     db,
		log:    log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		symbol: symbol,
	}, nil
}

// Initialize implements BarSource. The view reads the file directly; CSV
// column names are normalized so both Yahoo-style daily exports and
// time/open/high/low/close/volume files work.
func (s *DuckDBBarSource) Initialize(path string) error {
	if _, err := s.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeDataNotFound, "failed to drop existing view", err)
	}

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = fmt.Sprintf(`read_parquet('%s')`, path)
	case ".csv", ".txt":
		reader = fmt.Sprintf(`read_csv_auto('%s', normalize_names=true)`, path)
	default:
		return errors.Newf(errors.ErrCodeDataParseFailed, "unsupported data file extension: %s", filepath.Ext(path))
	}

	// Yahoo-style daily files carry a "date" column, intraday exports a
	// "time" column. Try both; normalize_names lower-cases the header.
	created := false

	var lastErr error

	for _, timeCol := range []string{"time", "date"} {
		query := fmt.Sprintf(`
			CREATE VIEW bars AS
			SELECT CAST(%s AS TIMESTAMP) AS time, open, high, low, close, volume
			FROM %s;
		`, timeCol, reader)

		if _, err := s.db.Exec(query); err != nil {
			lastErr = err

			continue
		}

		created = true

		break
	}

	if !created {
		return errors.Wrapf(errors.ErrCodeDataParseFailed, lastErr, "failed to create bars view from %s", path)
	}

	if s.symbol == "" {
		s.symbol = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s.log.Debug("Initialized DuckDB bar source",
		zap.String("path", path),
		zap.String("symbol", s.symbol),
	)

	return nil
}

// Read implements BarSource.
func (s *DuckDBBarSource) Read(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	query := s.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		OrderBy("time ASC")

	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataNotFound, "failed to query bars", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		bar := types.Bar{Symbol: s.symbol}
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan bar", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataNotFound, "error iterating bars", err)
	}

	return bars, nil
}

// Count implements BarSource.
func (s *DuckDBBarSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query := s.sq.Select("COUNT(*)").From("bars")

	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	var count int
	if err := query.RunWith(s.db).QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeDataNotFound, "failed to count bars", err)
	}

	return count, nil
}

// Symbol returns the symbol the source yields bars for.
func (s *DuckDBBarSource) Symbol() string {
	return s.symbol
}

// Close implements BarSource.
func (s *DuckDBBarSource) Close() error {
	return s.db.Close()
}
