package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type TradeResult struct {
	// Count of all closed trades.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of winning trades that have positive net pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of losing trades that have negative net pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate.
	WinRate float64 `yaml:"win_rate"`
}

// Summary is the final report of a simulation run.
type Summary struct {
	// Symbol of the simulated instrument.
	Symbol string `yaml:"symbol"`
	// StartingValue is total portfolio value before the first bar.
	StartingValue float64 `yaml:"starting_value"`
	// EndingValue is cash plus position value at the last close.
	EndingValue float64 `yaml:"ending_value"`
	// RealizedPnL is the sum of all closed trades' net pnl.
	RealizedPnL float64 `yaml:"realized_pnl"`
	// UnrealizedPnL is the open position's pnl at the last close.
	UnrealizedPnL float64 `yaml:"unrealized_pnl"`
	// TotalFees is the total commission paid.
	TotalFees float64 `yaml:"total_fees"`
	// TradeResult aggregates win/loss counts over closed trades.
	TradeResult TradeResult `yaml:"trade_result"`
	// Trades is the ordered list of closed trades.
	Trades []ClosedTrade `yaml:"trades"`
}

// ComputeTradeResult fills in TradeResult from the trade list.
func (s *Summary) ComputeTradeResult() {
	result := TradeResult{}
	result.NumberOfTrades = len(s.Trades)

	for _, trade := range s.Trades {
		if trade.NetPnL > 0 {
			result.NumberOfWinningTrades++
		} else if trade.NetPnL < 0 {
			result.NumberOfLosingTrades++
		}
	}

	if result.NumberOfTrades > 0 {
		result.WinRate = float64(result.NumberOfWinningTrades) / float64(result.NumberOfTrades)
	}

	s.TradeResult = result
}

// WriteSummary writes the summary to a YAML file.
func WriteSummary(path string, summary Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary to file: %w", err)
	}

	return nil
}
