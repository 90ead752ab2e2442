package collector

import (
	"context"
	"time"

	"TpexRadar/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	// Bars maps instrument code to its canned series. A missing code
	// yields an empty series, like an unlisted instrument.
	Bars map[string][]model.OHLCV
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchIntradayBars(_ context.Context, code string, _ int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Bars[code], nil
}

// GenerateBars builds a synthetic 5-minute series of count bars starting
// at basePrice and changing by step per bar.
func GenerateBars(basePrice, step float64, count int) []model.OHLCV {
	start := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice + step*float64(i)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   p,
			High:   p * 1.002,
			Low:    p * 0.998,
			Close:  p,
			Volume: 10000,
		}
	}
	return bars
}
