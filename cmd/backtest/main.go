package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	engine "github.com/rxtech-lab/tidemark/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/tidemark/internal/datasource"
	"github.com/rxtech-lab/tidemark/internal/logger"
	"github.com/rxtech-lab/tidemark/internal/series"
	"github.com/rxtech-lab/tidemark/internal/types"
	"github.com/rxtech-lab/tidemark/internal/version"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// backtestAction loads the data and configuration, runs the simulation
// and prints the final report.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	configPath := cmd.String("config")
	resultsPath := cmd.String("results")

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	config := engine.DefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		config, err = engine.ParseConfig(data)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	start := config.StartTime
	end := config.EndTime
	if from := cmd.Timestamp("from"); !from.IsZero() {
		start = optional.Some(from)
	}
	if to := cmd.Timestamp("to"); !to.IsZero() {
		end = optional.Some(to)
	}

	bars, err := loadBars(dataPath, start, end, appLogger)
	if err != nil {
		return err
	}

	sim, err := engine.NewSimulation(config, bars, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize simulation: %w", err)
	}
	defer sim.Close()

	fmt.Printf("Starting Portfolio Value: %.2f\n", sim.StartingValue())

	bar := progressbar.Default(int64(bars.Len()))
	summary, err := sim.Run(engine.Callbacks{
		OnProcessBar: func(index, total int, _ types.Bar) {
			bar.Add(1)
		},
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	fmt.Printf("Final Portfolio Value: %.2f\n", summary.EndingValue)
	fmt.Printf("Closed Trades: %d (win rate %.1f%%)\n",
		summary.TradeResult.NumberOfTrades, summary.TradeResult.WinRate*100)

	if resultsPath != "" {
		if err := types.WriteSummary(resultsPath, summary); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		fmt.Printf("Results written to %s\n", resultsPath)
	}

	return nil
}

func loadBars(path string, start, end optional.Option[time.Time], log *logger.Logger) (*series.BarSeries, error) {
	symbol := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	var source datasource.BarSource
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		source = datasource.NewCSVBarSource(symbol, log)
	case ".parquet":
		duck, err := datasource.NewDuckDBBarSource(symbol, log)
		if err != nil {
			return nil, err
		}
		source = duck
	default:
		return nil, fmt.Errorf("unsupported data file %q", path)
	}
	defer source.Close()

	if err := source.Initialize(path); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return datasource.LoadSeries(source, start, end)
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Run a trading simulation over historical OHLCV data",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to a CSV or Parquet file of daily bars",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML simulation config; defaults apply when omitted",
			},
			&cli.TimestampFlag{
				Name:  "from",
				Usage: "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:  "to",
				Usage: "End date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Write the summary report to this YAML file",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
