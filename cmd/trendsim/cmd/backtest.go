package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/trendsim/backtest"
	"github.com/rustyeddy/trendsim/config"
	"github.com/rustyeddy/trendsim/logger"
	"github.com/rustyeddy/trendsim/market"
	"github.com/rustyeddy/trendsim/pkg/id"
	"github.com/rustyeddy/trendsim/sim"
	"github.com/rustyeddy/trendsim/store"
	"github.com/rustyeddy/trendsim/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical candles through the configured strategies",
	Long: `Backtest replays a candle CSV through each configured strategy against
a fresh simulated exchange and prints a performance report per strategy.

Example:
  trendsim backtest --config trendsim.yaml --data data/btcusdt-4h.csv`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btDataPath   string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (YAML or JSON); defaults apply when omitted")
	backtestCmd.Flags().StringVarP(&btDataPath, "data", "d", "", "path to candle CSV (overrides backtest.data_file)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if btConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(btConfigPath)
		if err != nil {
			return err
		}
	}

	dataPath := btDataPath
	if dataPath == "" {
		dataPath = cfg.Backtest.DataFile
	}
	if dataPath == "" {
		return fmt.Errorf("no candle data: pass --data or set backtest.data_file")
	}

	candles, err := market.LoadCSV(dataPath)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}
	logger.Infof("loaded %d candles from %s", len(candles), dataPath)

	fundingInterval, err := cfg.Engine.ParseFundingInterval()
	if err != nil {
		return err
	}

	runID := id.New()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, sc := range cfg.Strategies {
		if err := runOne(ctx, cfg, sc, candles, fundingInterval, runID); err != nil {
			return fmt.Errorf("strategy %s: %w", sc.ID, err)
		}
	}
	return nil
}

// runOne backtests a single strategy entry against its own engine and
// store, so strategies never share a ledger.
func runOne(ctx context.Context, cfg *config.Config, sc config.StrategyConfig, candles []market.Candle, fundingInterval time.Duration, runID string) error {
	tf, err := market.ParseTimeframe(sc.Timeframe)
	if err != nil {
		return err
	}
	settle, err := sc.ParseSettleDelay()
	if err != nil {
		return err
	}

	eng := sim.NewEngine(sim.Config{
		InitialBalance:  cfg.Engine.InitialBalance,
		FeeRate:         cfg.Engine.FeeRate,
		FundingRate:     cfg.Engine.FundingRate,
		FundingInterval: fundingInterval,
	})

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	trader := strategy.NewTrader(strategy.TraderConfig{
		StrategyID:  sc.ID,
		Symbol:      sc.Symbol,
		MaxAdds:     sc.MaxAdds,
		Leverage:    sc.Leverage,
		SizeMode:    strategy.SizeMode(strings.ToUpper(sc.SizeMode)),
		SizeValue:   sc.SizeValue,
		SettleDelay: settle,
	}, eng, st)

	strat, err := strategy.New(sc.Strategy, trader, sc.FastPeriod, sc.SlowPeriod)
	if err != nil {
		return err
	}

	runner := &backtest.Runner{
		Exchange: eng,
		Strategy: strat,
		Symbol:   sc.Symbol,
		Warmup:   cfg.Backtest.Warmup,
	}

	logger.Infof("run %s: %s on %s %s (%d candles)", runID, strat.Name(), sc.Symbol, tf.Key, len(candles))
	res, err := runner.Run(ctx, candles)
	if err != nil {
		return err
	}

	rep := backtest.Summarize(res.Curve, cfg.Engine.InitialBalance, len(res.Orders), tf.AnnualizationFactor())
	printReport(sc.ID, rep)
	return nil
}

func printReport(id string, rep backtest.Report) {
	fmt.Printf("\n=== %s ===\n", id)
	fmt.Printf("  initial balance: %12.2f\n", rep.InitialBalance)
	fmt.Printf("  final balance:   %12.2f\n", rep.FinalBalance)
	fmt.Printf("  total return:    %11.2f%%\n", rep.TotalReturnPct)
	fmt.Printf("  max drawdown:    %11.2f%%\n", rep.MaxDrawdownPct)
	fmt.Printf("  sharpe:          %12.2f\n", rep.Sharpe)
	fmt.Printf("  trades:          %12d\n", rep.TotalTrades)
}

func openStore(sc config.StoreConfig) (store.Store, error) {
	if sc.Type == "sqlite" {
		return store.NewSQLite(sc.Path)
	}
	return store.NewMemory(), nil
}
