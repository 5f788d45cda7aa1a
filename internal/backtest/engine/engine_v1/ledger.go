package engine

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tidemark/internal/logger"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger records every order's lifecycle and every fill in an in-memory
// DuckDB database, and derives positions and closed trades from the
// fill history.
type Ledger struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewLedger(logger *logger.Logger) (*Ledger, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open ledger database", zap.Error(err))
		return nil, errors.Wrap(errors.ErrCodeLedgerInitFailed, "failed to open ledger database", err)
	}

	return &Ledger{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the orders and fills tables.
func (l *Ledger) Initialize() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			size_all_cash BOOLEAN,
			status TEXT,
			submitted_at TIMESTAMP,
			submitted_bar INTEGER,
			filled_at TIMESTAMP,
			filled_bar INTEGER,
			fill_price DOUBLE,
			fill_cost DOUBLE,
			commission DOUBLE,
			reason TEXT,
			message TEXT,
			strategy_name TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerInitFailed, "failed to create orders table", err)
	}

	_, err = l.db.Exec(`
		CREATE TABLE IF NOT EXISTS fills (
			order_id TEXT,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			price DOUBLE,
			commission DOUBLE,
			executed_at TIMESTAMP,
			bar_index INTEGER
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerInitFailed, "failed to create fills table", err)
	}

	return nil
}

// RecordOrder upserts the order row so the ledger always holds the
// latest lifecycle state of each order.
func (l *Ledger) RecordOrder(order types.Order) error {
	tx, err := l.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to begin transaction", err)
	}

	deleteQuery := l.sq.
		Delete("orders").
		Where(squirrel.Eq{"order_id": order.OrderID}).
		RunWith(tx)
	if _, err := deleteQuery.Exec(); err != nil {
		tx.Rollback()
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to delete stale order", err)
	}

	insertQuery := l.sq.
		Insert("orders").
		Columns(
			"order_id", "symbol", "side", "quantity", "size_all_cash", "status",
			"submitted_at", "submitted_bar", "filled_at", "filled_bar",
			"fill_price", "fill_cost", "commission",
			"reason", "message", "strategy_name",
		).
		Values(
			order.OrderID, order.Symbol, order.Side, order.Quantity, order.SizeAllCash, order.Status,
			order.SubmittedAt, order.SubmittedBar, order.FilledAt, order.FilledBar,
			order.FillPrice, order.FillCost, order.Commission,
			order.Reason.Reason, order.Reason.Message, order.StrategyName,
		).
		RunWith(tx)
	if _, err := insertQuery.Exec(); err != nil {
		tx.Rollback()
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to insert order", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to commit order", err)
	}

	return nil
}

func (l *Ledger) RecordFill(fill types.Fill) error {
	insertQuery := l.sq.
		Insert("fills").
		Columns("order_id", "symbol", "side", "quantity", "price", "commission", "executed_at", "bar_index").
		Values(fill.OrderID, fill.Symbol, fill.Side, fill.Quantity, fill.Price, fill.Commission, fill.ExecutedAt, fill.BarIndex).
		RunWith(l.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWriteFailed, "failed to insert fill", err)
	}

	return nil
}

// GetPosition derives the current position for a symbol from the fill
// history.
func (l *Ledger) GetPosition(symbol string) (types.Position, error) {
	query := `
		WITH buys AS (
			SELECT
				SUM(quantity) as in_qty,
				SUM(quantity * price) as in_amount,
				SUM(commission) as in_fee,
				MIN(executed_at) as first_at,
				MIN(bar_index) as first_bar
			FROM fills
			WHERE symbol = ? AND side = ?
		),
		sells AS (
			SELECT
				SUM(quantity) as out_qty,
				SUM(quantity * price) as out_amount,
				SUM(commission) as out_fee
			FROM fills
			WHERE symbol = ? AND side = ?
		)
		SELECT
			COALESCE(b.in_qty, 0) - COALESCE(s.out_qty, 0) as quantity,
			COALESCE(b.in_qty, 0) as total_in_quantity,
			COALESCE(s.out_qty, 0) as total_out_quantity,
			COALESCE(b.in_amount, 0) as total_in_amount,
			COALESCE(s.out_amount, 0) as total_out_amount,
			COALESCE(b.in_fee, 0) as total_in_fee,
			COALESCE(s.out_fee, 0) as total_out_fee,
			COALESCE(b.first_at, TIMESTAMP '1970-01-01') as open_timestamp,
			COALESCE(b.first_bar, 0) as open_bar
		FROM buys b, sells s
	`

	position := types.Position{Symbol: symbol}
	err := l.db.QueryRow(query, symbol, types.SideBuy, symbol, types.SideSell).Scan(
		&position.Quantity,
		&position.TotalInQuantity,
		&position.TotalOutQuantity,
		&position.TotalInAmount,
		&position.TotalOutAmount,
		&position.TotalInFee,
		&position.TotalOutFee,
		&position.OpenTimestamp,
		&position.OpenBar,
	)
	if err != nil {
		return types.Position{}, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "failed to query position", err)
	}

	return position, nil
}

// Orders returns every recorded order in submission order.
func (l *Ledger) Orders() ([]types.Order, error) {
	selectQuery := l.sq.
		Select(
			"order_id", "symbol", "side", "quantity", "size_all_cash", "status",
			"submitted_at", "submitted_bar", "filled_at", "filled_bar",
			"fill_price", "fill_cost", "commission",
			"reason", "message", "strategy_name",
		).
		From("orders").
		OrderBy("submitted_bar ASC", "submitted_at ASC").
		RunWith(l.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "failed to query orders", err)
	}
	defer rows.Close()

	var orders []types.Order
	for rows.Next() {
		var order types.Order
		err := rows.Scan(
			&order.OrderID,
			&order.Symbol,
			&order.Side,
			&order.Quantity,
			&order.SizeAllCash,
			&order.Status,
			&order.SubmittedAt,
			&order.SubmittedBar,
			&order.FilledAt,
			&order.FilledBar,
			&order.FillPrice,
			&order.FillCost,
			&order.Commission,
			&order.Reason.Reason,
			&order.Reason.Message,
			&order.StrategyName,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "failed to scan order", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "error iterating orders", err)
	}

	return orders, nil
}

// Fills returns every fill in execution order.
func (l *Ledger) Fills(symbol string) ([]types.Fill, error) {
	selectQuery := l.sq.
		Select("order_id", "symbol", "side", "quantity", "price", "commission", "executed_at", "bar_index").
		From("fills").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("bar_index ASC", "executed_at ASC").
		RunWith(l.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "failed to query fills", err)
	}
	defer rows.Close()

	var fills []types.Fill
	for rows.Next() {
		var fill types.Fill
		err := rows.Scan(
			&fill.OrderID,
			&fill.Symbol,
			&fill.Side,
			&fill.Quantity,
			&fill.Price,
			&fill.Commission,
			&fill.ExecutedAt,
			&fill.BarIndex,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "failed to scan fill", err)
		}
		fills = append(fills, fill)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "error iterating fills", err)
	}

	return fills, nil
}

// ClosedTrades pairs entry fills with the exits that flattened them and
// returns one trade per round trip, in close order. A round trip built
// from several entry fills uses the cost-weighted mean entry price.
func (l *Ledger) ClosedTrades(symbol string) ([]types.ClosedTrade, error) {
	trades, _, err := l.roundTrips(symbol)

	return trades, err
}

// OpenTrade returns the in-progress round trip when the position is not
// flat. EntryPrice and Commission cover the entry legs seen so far;
// IsClosed stays false and the exit fields stay zero.
func (l *Ledger) OpenTrade(symbol string) (optional.Option[types.ClosedTrade], error) {
	_, open, err := l.roundTrips(symbol)
	if err != nil {
		return optional.None[types.ClosedTrade](), err
	}
	if open == nil {
		return optional.None[types.ClosedTrade](), nil
	}

	return optional.Some(*open), nil
}

func (l *Ledger) roundTrips(symbol string) ([]types.ClosedTrade, *types.ClosedTrade, error) {
	fills, err := l.Fills(symbol)
	if err != nil {
		return nil, nil, err
	}

	var trades []types.ClosedTrade
	var open *types.ClosedTrade

	netQty := decimal.Zero
	entryQty, entryAmount := decimal.Zero, decimal.Zero
	exitQty, exitAmount := decimal.Zero, decimal.Zero
	fees := decimal.Zero

	for _, fill := range fills {
		qty := decimal.NewFromFloat(fill.Quantity)
		notional := qty.Mul(decimal.NewFromFloat(fill.Price))

		if open == nil {
			direction := 1
			if fill.Side == types.SideSell {
				direction = -1
			}
			open = &types.ClosedTrade{
				Symbol:    symbol,
				Direction: direction,
				OpenBar:   fill.BarIndex,
				OpenedAt:  fill.ExecutedAt,
			}
			netQty = decimal.Zero
			entryQty, entryAmount = decimal.Zero, decimal.Zero
			exitQty, exitAmount = decimal.Zero, decimal.Zero
			fees = decimal.Zero
		}

		entering := (open.Direction > 0) == (fill.Side == types.SideBuy)
		if entering {
			entryQty = entryQty.Add(qty)
			entryAmount = entryAmount.Add(notional)
		} else {
			exitQty = exitQty.Add(qty)
			exitAmount = exitAmount.Add(notional)
		}
		fees = fees.Add(decimal.NewFromFloat(fill.Commission))

		if fill.Side == types.SideBuy {
			netQty = netQty.Add(qty)
		} else {
			netQty = netQty.Sub(qty)
		}

		if netQty.IsZero() {
			open.Quantity, _ = entryQty.Float64()
			open.EntryPrice, _ = entryAmount.Div(entryQty).Float64()
			open.ExitPrice, _ = exitAmount.Div(exitQty).Float64()
			open.Commission, _ = fees.Float64()
			open.CloseBar = fill.BarIndex
			open.ClosedAt = fill.ExecutedAt
			open.IsClosed = true
			open.ComputePnL()

			trades = append(trades, *open)
			open = nil
		}
	}

	if open != nil {
		open.Quantity, _ = netQty.Abs().Float64()
		open.EntryPrice, _ = entryAmount.Div(entryQty).Float64()
		open.Commission, _ = fees.Float64()
	}

	return trades, open, nil
}

// TotalCommission sums commission across all fills for a symbol.
func (l *Ledger) TotalCommission(symbol string) (float64, error) {
	query := l.sq.
		Select("COALESCE(SUM(commission), 0)").
		From("fills").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(l.db)

	var total float64
	if err := query.QueryRow().Scan(&total); err != nil {
		return 0, errors.Wrap(errors.ErrCodeLedgerQueryFailed, "failed to sum commission", err)
	}

	return total, nil
}

// Reset drops and recreates the tables so the ledger can serve another
// run.
func (l *Ledger) Reset() error {
	_, err := l.db.Exec(`
		DROP TABLE IF EXISTS fills;
		DROP TABLE IF EXISTS orders;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerInitFailed, "failed to drop tables", err)
	}

	return l.Initialize()
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
