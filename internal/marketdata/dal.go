package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flipper1994/trading-core/internal/events"
	"github.com/flipper1994/trading-core/internal/marketdata/cache"
	"github.com/flipper1994/trading-core/internal/marketdata/filter"
	"github.com/flipper1994/trading-core/internal/marketdata/regime"
	"github.com/flipper1994/trading-core/internal/marketdata/vendor"
)

// MetadataSink persists which vendor/interval last served a symbol.
// Satisfied by internal/marketdata/store.Store; kept as an interface here
// so the facade doesn't import the store package directly.
type MetadataSink interface {
	UpsertMetadata(symbol, vendorName, interval string) error
}

// DAL is the vendor-agnostic market data facade: fetch a vendor's bars,
// run them through the probabilistic filter/regime pipeline, and persist
// metadata about the fetch. Mirrors app/dal/manager.py's MarketDataDAL.
type DAL struct {
	registry  *vendor.Registry
	sink      MetadataSink
	publisher *events.Publisher

	window     int
	filterCfg  filter.Config
	thresholds regime.Thresholds
	cacheDir   string
}

// New constructs a DAL. sink and publisher may both be nil: sink to skip
// metadata persistence, publisher to skip telemetry (useful for tests and
// one-off CLI fetches).
func New(registry *vendor.Registry, sink MetadataSink, publisher *events.Publisher, window int) *DAL {
	return &DAL{
		registry:   registry,
		sink:       sink,
		publisher:  publisher,
		window:     window,
		filterCfg:  filter.DefaultConfig(),
		thresholds: regime.DefaultThresholds(),
		cacheDir:   cache.DefaultDir,
	}
}

// FetchBars fetches historical bars from the named vendor (or the
// registry's default if vendorKey is empty), runs the probabilistic
// pipeline over them, and returns the aggregate batch.
func (d *DAL) FetchBars(ctx context.Context, vendorKey, symbol, interval string, start, end time.Time) (ProbabilisticBatch, error) {
	client, ok := d.resolveVendor(vendorKey, interval)
	if !ok {
		return ProbabilisticBatch{}, vendor.ErrMissingCredentials
	}

	bars, err := client.FetchBars(ctx, vendor.FetchRequest{Symbol: symbol, Interval: interval, Start: start, End: end})
	if err != nil {
		return ProbabilisticBatch{}, err
	}

	var firstTS, lastTS time.Time
	if len(bars.Rows) > 0 {
		firstTS, lastTS = bars.Rows[0].Timestamp, bars.Rows[len(bars.Rows)-1].Timestamp
	}
	d.publisher.Publish(events.TopicBarsSnapshot, map[string]interface{}{
		"symbol": symbol, "vendor": client.Name(), "interval": interval,
		"count": len(bars.Rows), "first_ts": firstTS, "last_ts": lastTS,
	})

	batch := d.runProbabilisticPipeline(symbol, bars)
	batch.CachePaths = d.persistCache(symbol, client.Name(), batch)

	if d.sink != nil {
		if err := d.sink.UpsertMetadata(symbol, client.Name(), interval); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist fetch metadata")
		}
	}

	d.publisher.Publish(events.TopicSignalsSnapshot, map[string]interface{}{"symbol": symbol, "count": len(batch.Signals)})
	d.publisher.Publish(events.TopicRegimesSnapshot, map[string]interface{}{"symbol": symbol, "count": len(batch.Regimes)})

	return batch, nil
}

// resolveVendor resolves vendorKey to a client, silently remapping
// (vendor=alphavantage, interval=1Day) to the daily-optimized client.
func (d *DAL) resolveVendor(vendorKey, interval string) (vendor.Client, bool) {
	if vendorKey == "alphavantage" && isDailyInterval(interval) {
		if c, ok := d.registry.Get("alphavantage_daily"); ok {
			return c, true
		}
	}
	if vendorKey == "" {
		return d.registry.Default()
	}
	return d.registry.Get(vendorKey)
}

func isDailyInterval(interval string) bool {
	switch interval {
	case "1Day", "1day", "1d", "1D":
		return true
	default:
		return false
	}
}

// persistCache writes the three columnar artifacts and returns their
// paths, keyed "bars" | "signals" | "regimes". Failures are logged and
// leave the corresponding key out of the map; persistence is best-effort
// and must never fail the fetch.
func (d *DAL) persistCache(symbol, vendorName string, batch ProbabilisticBatch) map[string]string {
	paths := make(map[string]string, 3)

	if p, err := cache.StoreBars(d.cacheDir, symbol, vendorName, batch.Bars); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist bars cache")
	} else if p != "" {
		paths["bars"] = p
	}
	if p, err := cache.StoreSignals(d.cacheDir, symbol, vendorName, batch.Signals); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist signals cache")
	} else if p != "" {
		paths["signals"] = p
	}
	if p, err := cache.StoreRegimes(d.cacheDir, symbol, batch.Regimes); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist regimes cache")
	} else if p != "" {
		paths["regimes"] = p
	}

	return paths
}

// runProbabilisticPipeline runs every bar through a fresh filter bank and
// regime classifier, in chronological order, producing one SignalFrame and
// RegimeSnapshot per bar. Frame i depends only on bars 0..i. The regime
// classifier is fed the filtered price (falling back to raw close), per
// the pipeline's column-priority convention.
func (d *DAL) runProbabilisticPipeline(symbol string, bars Bars) ProbabilisticBatch {
	bank := filter.NewBank(d.filterCfg)
	classifier := regime.NewClassifier(d.window, d.thresholds)

	signals := make([]SignalFrame, 0, len(bars.Rows))
	regimes := make([]RegimeSnapshot, 0, len(bars.Rows))
	annotated := make([]Bar, 0, len(bars.Rows))

	for _, bar := range bars.Rows {
		out := bank.Step(bar.Close)
		bar.FilteredPrice = out.FilteredPrice
		bar.ProbFilteredPrice = out.FilteredPrice
		bar.ProbPrice = out.KalmanPrice
		bar.ProbButterworthPrice = out.ButterworthPrice
		bar.ProbVelocity = out.KalmanVelocity
		annotated = append(annotated, bar)

		regimePrice := out.FilteredPrice
		if regimePrice == 0 {
			regimePrice = bar.Close
		}
		snap := classifier.Classify(bar.Timestamp, regimePrice, out.KalmanUncertainty)
		regimes = append(regimes, snap)

		signals = append(signals, SignalFrame{
			Symbol:      symbol,
			Timestamp:   bar.Timestamp,
			Price:       bar.Close,
			Filtered:    out.FilteredPrice,
			Velocity:    out.KalmanVelocity,
			Uncertainty: out.KalmanUncertainty,
			Regime:      snap,
		})
	}

	return ProbabilisticBatch{
		Bars:    Bars{Symbol: symbol, Interval: bars.Interval, Rows: annotated},
		Signals: signals,
		Regimes: regimes,
	}
}
