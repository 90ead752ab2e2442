// Package tpex fetches the TPEx institutional-investor daily report and
// parses its loosely-typed JSON tables into typed flow rows.
package tpex

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"TpexRadar/internal/model"
	"TpexRadar/internal/web"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the TPEx daily SITC statistics endpoint.
const DefaultBaseURL = "https://www.tpex.org.tw/www/zh-tw/insti/sitcStat"

// DefaultReferer is required by the endpoint to accept the request as a
// browser-originated AJAX call.
const DefaultReferer = "https://www.tpex.org.tw/zh-tw/mainboard/trading/major-institutional/domestic-inst/day.html"

// LabelLatestTradingDay is the resolved-date label when no explicit date
// was requested.
const LabelLatestTradingDay = "最近交易日"

// Side selects which flow direction the report is ranked by.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// DefaultHeaders returns the identification header set the endpoint
// expects on every request.
func DefaultHeaders(referer string) map[string]string {
	if referer == "" {
		referer = DefaultReferer
	}
	return map[string]string{
		"User-Agent":       "Mozilla/5.0",
		"Referer":          referer,
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"X-Requested-With": "XMLHttpRequest",
	}
}

// Client fetches the institutional daily report.
type Client struct {
	HTTP    *web.Client
	BaseURL string
}

// NewClient creates a report client. An empty baseURL falls back to the
// production endpoint.
func NewClient(httpClient *web.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{HTTP: httpClient, BaseURL: baseURL}
}

// FetchDaily retrieves the daily report for the given side and date
// token. A response without tables (a non-trading day) is not an error:
// it yields an empty row slice and, when no date was resolved, the
// "most recent trading day" label.
func (c *Client) FetchDaily(ctx context.Context, side Side, dateToken string) (string, []model.FlowRow, error) {
	date, err := NormalizeDate(dateToken)
	if err != nil {
		return "", nil, err
	}

	searchType := "sell"
	if strings.EqualFold(string(side), string(SideBuy)) {
		searchType = "buy"
	}
	params := url.Values{}
	params.Set("type", "Daily")
	params.Set("date", date)
	params.Set("searchType", searchType)
	params.Set("id", "")
	params.Set("response", "json")

	js, err := c.HTTP.GetJSON(ctx, c.BaseURL, params)
	if err != nil {
		return "", nil, fmt.Errorf("fetch daily report: %w", err)
	}

	label := date
	if label == "" {
		label = LabelLatestTradingDay
	}

	tables := js.Get("tables")
	if !tables.Exists() || len(tables.Array()) == 0 {
		return label, nil, nil
	}
	if !tables.IsArray() {
		return "", nil, fmt.Errorf("%w: tables is not an array", web.ErrDataSource)
	}

	data := tables.Array()[0].Get("data")
	return label, parseRows(data), nil
}

// parseRows converts the positional, untyped report rows into FlowRows.
// Out-of-range or wrong-type columns default rather than fault; rows
// without both a code and a name are header/footer artifacts and are
// dropped.
func parseRows(data gjson.Result) []model.FlowRow {
	var rows []model.FlowRow
	for _, raw := range data.Array() {
		cols := raw.Array()
		code := cleanCode(col(cols, 1).String())
		name := col(cols, 2).String()
		if code == "" || name == "" {
			continue
		}
		buy := int64(toNum(col(cols, 3)))
		sell := int64(toNum(col(cols, 4)))
		net := buy - sell
		if net5 := col(cols, 5); net5.Exists() {
			net = int64(toNum(net5))
		}
		rows = append(rows, model.FlowRow{Code: code, Name: name, Buy: buy, Sell: sell, Net: net})
	}
	return rows
}

func col(cols []gjson.Result, i int) gjson.Result {
	if i >= len(cols) {
		return gjson.Result{}
	}
	return cols[i]
}

var nonDigits = regexp.MustCompile(`\D`)

// cleanCode strips everything but digits from an instrument code.
func cleanCode(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

var numCleaner = strings.NewReplacer(",", "", " ", "")

// toNum coerces a report cell to a number: thousands separators and
// spaces are stripped, integer parse is tried before float, and
// non-numeric input yields 0. It never fails.
func toNum(v gjson.Result) float64 {
	if !v.Exists() || v.Type == gjson.Null {
		return 0
	}
	if v.Type == gjson.Number {
		return v.Float()
	}
	s := numCleaner.Replace(v.String())
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}

// SortRows orders rows most-extreme-first for the requested side: net
// descending for buy, ascending for sell.
func SortRows(rows []model.FlowRow, side Side) {
	if side == SideSell {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Net < rows[j].Net })
		return
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Net > rows[j].Net })
}

// TopN returns the first n rows as watchlist items, trusting the
// endpoint's own ranking.
func TopN(rows []model.FlowRow, n int) []model.WatchItem {
	if n > len(rows) {
		n = len(rows)
	}
	items := make([]model.WatchItem, 0, n)
	for _, r := range rows[:n] {
		items = append(items, model.WatchItem{Code: r.Code, Name: r.Name})
	}
	return items
}
