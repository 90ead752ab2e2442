// Package radar walks the daily net-buy watchlist, retrieves each
// instrument's intraday series and classifies its trend.
package radar

import (
	"context"
	"log"

	"TpexRadar/internal/collector"
	"TpexRadar/internal/model"
	"TpexRadar/internal/tpex"
	"TpexRadar/internal/trend"
)

// FlowSource supplies the ranked institutional flow rows.
type FlowSource interface {
	FetchDaily(ctx context.Context, side tpex.Side, dateToken string) (string, []model.FlowRow, error)
}

// Scanner runs the watchlist pipeline: top-K net-buy instruments, one
// bar series and one verdict per instrument.
type Scanner struct {
	Flow   FlowSource
	Bars   collector.Fetcher
	Params trend.Params
	TopN   int
	Days   int
}

// NewScanner creates a Scanner with the given collaborators.
func NewScanner(flow FlowSource, bars collector.Fetcher, params trend.Params, topN, days int) *Scanner {
	return &Scanner{Flow: flow, Bars: bars, Params: params, TopN: topN, Days: days}
}

// Scan fetches the watchlist and classifies each instrument in turn.
// The report endpoint's own ranking is trusted for the top-K cut. An
// instrument whose bar retrieval yields an empty series gets an N/A
// verdict instead of failing the scan.
func (s *Scanner) Scan(ctx context.Context) (string, []model.InstrumentResult, error) {
	label, rows, err := s.Flow.FetchDaily(ctx, tpex.SideBuy, "")
	if err != nil {
		return "", nil, err
	}
	watch := tpex.TopN(rows, s.TopN)

	results := make([]model.InstrumentResult, 0, len(watch))
	for _, item := range watch {
		bars, err := s.Bars.FetchIntradayBars(ctx, item.Code, s.Days)
		if err != nil {
			log.Printf("[WARN] fetch bars for %s: %v", item.Code, err)
			bars = nil
		}
		if len(bars) == 0 {
			results = append(results, model.InstrumentResult{
				Code: item.Code,
				Name: item.Name,
				Verdict: model.TrendVerdict{
					Direction: model.DirectionNotAvailable,
					Status:    model.StatusNoData,
				},
			})
			continue
		}
		results = append(results, model.InstrumentResult{
			Code:    item.Code,
			Name:    item.Name,
			Verdict: trend.Classify(bars, s.Params),
		})
	}
	return label, results, nil
}
