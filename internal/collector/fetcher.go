package collector

import (
	"context"

	"TpexRadar/internal/model"
)

// Fetcher defines the interface for fetching intraday market data.
type Fetcher interface {
	// FetchIntradayBars returns 5-minute bars for the instrument code
	// over the given number of days. An unknown or unlisted code yields
	// an empty series, not an error.
	FetchIntradayBars(ctx context.Context, code string, days int) ([]model.OHLCV, error)
	Name() string
}
