package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/trendsim/logger"
	"github.com/rustyeddy/trendsim/market"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download candle history from Binance futures",
	Long: `Download pages through the Binance USDⓈ-M klines endpoint and writes
the result as a candle CSV that backtest can replay.

Example:
  trendsim download -s BTCUSDT -t 4h --start 2024-01-01 --end 2025-01-01 -o btcusdt-4h.csv`,
	RunE: runDownload,
}

var (
	dlSymbol    string
	dlTimeframe string
	dlStart     string
	dlEnd       string
	dlOut       string
)

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&dlSymbol, "symbol", "s", "BTCUSDT", "perp symbol")
	downloadCmd.Flags().StringVarP(&dlTimeframe, "timeframe", "t", "4h", "bar timeframe (1m, 1h, 4h, 1d, ...)")
	downloadCmd.Flags().StringVar(&dlStart, "start", "", "range start, YYYY-MM-DD or RFC3339 (required)")
	downloadCmd.Flags().StringVar(&dlEnd, "end", "", "range end, YYYY-MM-DD or RFC3339 (default: now)")
	downloadCmd.Flags().StringVarP(&dlOut, "out", "o", "", "output CSV path (required)")

	downloadCmd.MarkFlagRequired("start")
	downloadCmd.MarkFlagRequired("out")
}

func runDownload(cmd *cobra.Command, args []string) error {
	tf, err := market.ParseTimeframe(dlTimeframe)
	if err != nil {
		return err
	}

	start, err := parseTime(dlStart)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end := time.Now().UTC()
	if dlEnd != "" {
		if end, err = parseTime(dlEnd); err != nil {
			return fmt.Errorf("end: %w", err)
		}
	}
	if !end.After(start) {
		return fmt.Errorf("end %s is not after start %s", end, start)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src := market.NewBinanceSource()
	candles, err := src.Download(ctx, dlSymbol, tf, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("no candles returned for %s %s", dlSymbol, tf.Key)
	}

	if err := market.WriteCSV(dlOut, candles); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	logger.Infof("wrote %d candles to %s", len(candles), dlOut)
	return nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
