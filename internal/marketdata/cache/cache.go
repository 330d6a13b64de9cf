// Package cache persists the market data pipeline's three output series to
// columnar files, the local parquet-equivalent artifact layout.
package cache

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/flipper1994/trading-core/internal/marketdata"
)

// DefaultDir is the root directory for cached columnar artifacts.
const DefaultDir = "artifacts/marketdata/cache"

// StoreBars writes bars to "{dir}/{symbol}_{vendor}.csv" and returns the
// path. Returns "", nil if bars is empty.
func StoreBars(dir, symbol, vendorName string, bars marketdata.Bars) (string, error) {
	if len(bars.Rows) == 0 {
		return "", nil
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", symbol, vendorName))
	return path, writeCSV(path,
		[]string{"timestamp", "open", "high", "low", "close", "volume"},
		len(bars.Rows),
		func(i int) []string {
			b := bars.Rows[i]
			return []string{
				b.Timestamp.UTC().Format(timestampLayout),
				f(b.Open), f(b.High), f(b.Low), f(b.Close), f(b.Volume),
			}
		},
	)
}

// StoreSignals writes signals to "{dir}/{symbol}_{vendor}_signals.csv" and
// returns the path. Returns "", nil if signals is empty.
func StoreSignals(dir, symbol, vendorName string, signals []marketdata.SignalFrame) (string, error) {
	if len(signals) == 0 {
		return "", nil
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_signals.csv", symbol, vendorName))
	return path, writeCSV(path,
		[]string{"timestamp", "price", "filtered_price", "velocity", "uncertainty"},
		len(signals),
		func(i int) []string {
			s := signals[i]
			return []string{
				s.Timestamp.UTC().Format(timestampLayout),
				f(s.Price), f(s.Filtered), f(s.Velocity), f(s.Uncertainty),
			}
		},
	)
}

// StoreRegimes writes regimes to "{dir}/{symbol}_regimes.csv" and returns
// the path. Returns "", nil if regimes is empty.
func StoreRegimes(dir, symbol string, regimes []marketdata.RegimeSnapshot) (string, error) {
	if len(regimes) == 0 {
		return "", nil
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_regimes.csv", symbol))
	return path, writeCSV(path,
		[]string{"timestamp", "label", "momentum", "volatility", "uncertainty"},
		len(regimes),
		func(i int) []string {
			r := regimes[i]
			return []string{
				r.Timestamp.UTC().Format(timestampLayout),
				r.Label, f(r.Momentum), f(r.Volatility), f(r.Uncertainty),
			}
		},
	)
}

const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func f(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }

func writeCSV(path string, header []string, n int, row func(i int) []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
