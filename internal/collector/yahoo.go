package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"TpexRadar/internal/model"
)

// Venue suffixes tried in priority order: secondary board (TPEx) before
// the main board, matching the domain's listing precedence.
var defaultSuffixes = []string{".TWO", ".TW"}

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client   *http.Client
	BaseURL  string
	Suffixes []string
	Location *time.Location
	limiter  *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. Outbound requests
// are paced to avoid provider throttling; set requestsPerSecond to 0 to
// disable pacing.
func NewYahooFetcher(proxyURL string, requestsPerSecond float64) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL:  "https://query1.finance.yahoo.com",
		Suffixes: defaultSuffixes,
		Location: loc,
		limiter:  limiter,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// FetchIntradayBars tries each venue suffix in order and returns the
// first non-empty 5-minute series. Per-candidate failures are absorbed:
// a candidate that errors is treated exactly like one with no data, and
// only the terminal empty series is observable.
func (f *YahooFetcher) FetchIntradayBars(ctx context.Context, code string, days int) ([]model.OHLCV, error) {
	code = nonDigits.ReplaceAllString(code, "")
	if code == "" {
		return nil, nil
	}
	for _, suffix := range f.Suffixes {
		bars, err := f.fetchChart(ctx, code+suffix, days)
		if err != nil {
			log.Printf("[DEBUG] %s%s: %v, trying next venue", code, suffix, err)
			continue
		}
		if len(bars) == 0 {
			continue
		}
		return bars, nil
	}
	return nil, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// Unadjusted quotes, regular session only.
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=5m&range=%dd&includePrePost=false",
		f.BaseURL, url.PathEscape(symbol), days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		o := toFloat(at(quote.Open, i))
		h := toFloat(at(quote.High, i))
		l := toFloat(at(quote.Low, i))
		c := toFloat(at(quote.Close, i))
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (halts etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).In(f.Location),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(at(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func at(vals []interface{}, i int) interface{} {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}
