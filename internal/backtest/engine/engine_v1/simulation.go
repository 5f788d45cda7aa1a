package engine

import (
	"github.com/rxtech-lab/tidemark/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/tidemark/internal/indicator"
	"github.com/rxtech-lab/tidemark/internal/logger"
	"github.com/rxtech-lab/tidemark/internal/series"
	"github.com/rxtech-lab/tidemark/internal/strategy"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SimulationState string

const (
	SimulationStateInitialized SimulationState = "initialized"
	SimulationStateRunning     SimulationState = "running"
	SimulationStateFinished    SimulationState = "finished"
)

// Callbacks are invoked by the run loop as the simulation progresses.
// Any nil callback is skipped.
type Callbacks struct {
	OnProcessBar  func(index int, total int, bar types.Bar)
	OnOrderFilled func(order types.Order)
	OnTradeClosed func(trade types.ClosedTrade)
}

// Simulation drives one configuration over one bar series: fills
// pending orders at each bar's open, updates the indicators, asks the
// strategy for an intent and hands it to the broker, bar by bar until
// the series is exhausted.
type Simulation struct {
	config     Config
	bars       *series.BarSeries
	strategy   strategy.Strategy
	indicators *indicator.Engine
	ledger     *Ledger
	broker     *Broker
	logger     *logger.Logger

	symbol        string
	state         SimulationState
	startingValue float64
	reportedClose int
}

// NewSimulation validates the configuration, wires the strategy,
// indicator engine, ledger and broker, and leaves the simulation in the
// initialized state. Configuration errors surface here, before any bar
// is processed. The simulation takes over the series cursor, so each
// simulation needs its own BarSeries.
func NewSimulation(config Config, bars *series.BarSeries, log *logger.Logger) (*Simulation, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if bars.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "bar series is empty")
	}

	strat, err := strategy.NewStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	indicators, err := indicator.NewEngine(strat.IndicatorConfig())
	if err != nil {
		return nil, err
	}
	commission, err := commission_fee.GetCommissionFeeHandler(config.CommissionModel, config.CommissionRate)
	if err != nil {
		return nil, err
	}

	ledger, err := NewLedger(log)
	if err != nil {
		return nil, err
	}
	if err := ledger.Initialize(); err != nil {
		return nil, err
	}

	first, err := bars.At(0)
	if err != nil {
		return nil, err
	}
	symbol := first.Symbol

	broker, err := NewBroker(
		ledger,
		commission,
		log,
		symbol,
		strat.Name(),
		config.StartingCash,
		config.Stake,
		config.SizingMode == SizingModeAllCash,
	)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		config:        config,
		bars:          bars,
		strategy:      strat,
		indicators:    indicators,
		ledger:        ledger,
		broker:        broker,
		logger:        log,
		symbol:        symbol,
		state:         SimulationStateInitialized,
		startingValue: config.StartingCash,
	}, nil
}

func (s *Simulation) State() SimulationState {
	return s.state
}

func (s *Simulation) Broker() *Broker {
	return s.broker
}

func (s *Simulation) Ledger() *Ledger {
	return s.ledger
}

func (s *Simulation) StartingValue() float64 {
	return s.startingValue
}

// Run drives the simulation to completion and returns the final
// summary. Calling Run on a finished simulation is an error rather
// than a silent no-op.
func (s *Simulation) Run(callbacks Callbacks) (types.Summary, error) {
	if s.state == SimulationStateFinished {
		return types.Summary{}, errors.New(errors.ErrCodeSimulationFinished, "simulation has already finished")
	}

	s.bars.Reset()
	s.state = SimulationStateRunning
	s.logger.Info("Simulation started",
		zap.String("symbol", s.symbol),
		zap.String("strategy", s.strategy.Name()),
		zap.Int("bars", s.bars.Len()),
		zap.Float64("starting_value", s.startingValue))

	total := s.bars.Len()
	for s.bars.Advance() {
		bar, ok := s.bars.Current()
		if !ok {
			break
		}
		index := s.bars.CursorIndex()

		if err := s.processBar(bar, index, callbacks); err != nil {
			return types.Summary{}, err
		}

		if callbacks.OnProcessBar != nil {
			callbacks.OnProcessBar(index, total, bar)
		}
	}

	if _, err := s.broker.CancelPendingOrders(types.Reason{
		Reason:  types.OrderReasonEndOfData,
		Message: "bar series exhausted",
	}); err != nil {
		return types.Summary{}, err
	}

	s.state = SimulationStateFinished

	summary, err := s.buildSummary()
	if err != nil {
		return types.Summary{}, err
	}

	s.logger.Info("Simulation finished",
		zap.Float64("ending_value", summary.EndingValue),
		zap.Int("closed_trades", summary.TradeResult.NumberOfTrades))

	return summary, nil
}

func (s *Simulation) processBar(bar types.Bar, index int, callbacks Callbacks) error {
	processed, err := s.broker.ProcessPendingOrders(bar, index)
	if err != nil {
		return err
	}
	for _, order := range processed {
		if order.Status != types.OrderStatusCompleted {
			continue
		}
		if callbacks.OnOrderFilled != nil {
			callbacks.OnOrderFilled(order)
		}
		if err := s.notifyClosedTrades(callbacks); err != nil {
			return err
		}
	}

	snapshot := s.indicators.Update(bar)
	previous := s.indicators.Previous()

	position, err := s.broker.Position()
	if err != nil {
		return err
	}

	intent := s.strategy.Decide(bar, snapshot, previous, !position.IsFlat())
	if _, err := s.broker.Submit(intent, index); err != nil {
		return err
	}

	return nil
}

func (s *Simulation) notifyClosedTrades(callbacks Callbacks) error {
	if callbacks.OnTradeClosed == nil {
		return nil
	}

	trades, err := s.ledger.ClosedTrades(s.symbol)
	if err != nil {
		return err
	}
	for ; s.reportedClose < len(trades); s.reportedClose++ {
		callbacks.OnTradeClosed(trades[s.reportedClose])
	}

	return nil
}

func (s *Simulation) buildSummary() (types.Summary, error) {
	last, err := s.bars.Last()
	if err != nil {
		return types.Summary{}, err
	}

	endingValue, err := s.broker.PortfolioValue(last.Close)
	if err != nil {
		return types.Summary{}, err
	}

	trades, err := s.ledger.ClosedTrades(s.symbol)
	if err != nil {
		return types.Summary{}, err
	}

	realized := 0.0
	for _, trade := range trades {
		realized += trade.NetPnL
	}

	// Unrealized P&L is commission-adjusted: fees already paid on the
	// open entry legs are subtracted, so starting value plus realized
	// plus unrealized equals the ending value exactly.
	unrealized := 0.0
	openTrade, err := s.ledger.OpenTrade(s.symbol)
	if err != nil {
		return types.Summary{}, err
	}
	if openTrade.IsSome() {
		open := openTrade.Unwrap()
		grossDec := decimal.NewFromFloat(last.Close).
			Sub(decimal.NewFromFloat(open.EntryPrice)).
			Mul(decimal.NewFromFloat(open.Quantity))
		if open.Direction < 0 {
			grossDec = grossDec.Neg()
		}
		unrealized, _ = grossDec.Sub(decimal.NewFromFloat(open.Commission)).Float64()
	}

	totalFees, err := s.ledger.TotalCommission(s.symbol)
	if err != nil {
		return types.Summary{}, err
	}

	summary := types.Summary{
		Symbol:        s.symbol,
		StartingValue: s.startingValue,
		EndingValue:   endingValue,
		RealizedPnL:   realized,
		UnrealizedPnL: unrealized,
		TotalFees:     totalFees,
		Trades:        trades,
	}
	summary.ComputeTradeResult()

	return summary, nil
}

// CheckAccountingIdentity verifies that ending value equals starting
// value plus realized and unrealized P&L, within tolerance.
func (s *Simulation) CheckAccountingIdentity(summary types.Summary, tolerance float64) error {
	expected := summary.StartingValue + summary.RealizedPnL + summary.UnrealizedPnL
	diff := summary.EndingValue - expected
	if diff < -tolerance || diff > tolerance {
		return errors.Newf(errors.ErrCodeAccountingViolation,
			"accounting identity violated: ending value %f, expected %f", summary.EndingValue, expected)
	}

	return nil
}

// Close releases the ledger database.
func (s *Simulation) Close() error {
	return s.ledger.Close()
}
