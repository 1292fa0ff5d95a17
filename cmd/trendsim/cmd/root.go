package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/trendsim/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "trendsim",
	Short: "A trend-following strategy backtester for perpetual futures",
	Long: `Trendsim replays historical candles through trend-following strategies
against a simulated exchange with realistic accounting.

It provides tools for:
  - Backtesting EMA-crossover strategies with historical data
  - Simulated fills with fees, weighted-average entries and funding
  - Equity-curve statistics (return, max drawdown, Sharpe)
  - Downloading candle history from Binance futures

Complete documentation is available at https://github.com/rustyeddy/trendsim`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(logLevel)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
