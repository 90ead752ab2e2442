package tpex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TpexRadar/internal/model"
	"TpexRadar/internal/web"

	"github.com/tidwall/gjson"
)

func TestToNum(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`"1,234"`, 1234},
		{`" 56 "`, 56},
		{`"abc"`, 0},
		{`"12.5"`, 12.5},
		{`"-3,000"`, -3000},
		{`42`, 42},
		{`3.14`, 3.14},
		{`null`, 0},
		{`""`, 0},
	}
	for _, c := range cases {
		got := toNum(gjson.Parse(c.in))
		if got != c.want {
			t.Errorf("toNum(%s) = %v, want %v", c.in, got, c.want)
		}
	}
	if got := toNum(gjson.Result{}); got != 0 {
		t.Errorf("toNum(missing) = %v, want 0", got)
	}
}

func TestParseRows(t *testing.T) {
	data := gjson.Parse(`[
		["1", "3081", "聯亞", "1,234", "234", "1,000"],
		["2", "6488(註)", "環球晶", "500", "100"],
		["3", "", "表頭", "0", "0", "0"],
		["4", "8299", "", "0", "0", "0"],
		["合計", "—", "—", "99,999"],
		["5", "4966", "譜瑞-KY", "abc", "10"]
	]`)
	rows := parseRows(data)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(rows), rows)
	}

	if rows[0].Code != "3081" || rows[0].Name != "聯亞" {
		t.Errorf("row 0: unexpected identity %+v", rows[0])
	}
	if rows[0].Buy != 1234 || rows[0].Sell != 234 || rows[0].Net != 1000 {
		t.Errorf("row 0: unexpected volumes %+v", rows[0])
	}

	// Code cleaned to digits, net derived when column 5 is missing.
	if rows[1].Code != "6488" {
		t.Errorf("row 1: code = %q, want 6488", rows[1].Code)
	}
	if rows[1].Net != 400 {
		t.Errorf("row 1: net = %d, want 400 (derived)", rows[1].Net)
	}

	// Non-numeric buy coerces to 0.
	if rows[2].Buy != 0 || rows[2].Net != -10 {
		t.Errorf("row 2: unexpected volumes %+v", rows[2])
	}
}

func TestSortRows(t *testing.T) {
	rows := []model.FlowRow{
		{Code: "1", Name: "a", Net: 10},
		{Code: "2", Name: "b", Net: -30},
		{Code: "3", Name: "c", Net: 20},
	}
	SortRows(rows, SideBuy)
	if rows[0].Code != "3" || rows[2].Code != "2" {
		t.Errorf("buy sort: got %v %v %v", rows[0].Code, rows[1].Code, rows[2].Code)
	}
	SortRows(rows, SideSell)
	if rows[0].Code != "2" || rows[2].Code != "3" {
		t.Errorf("sell sort: got %v %v %v", rows[0].Code, rows[1].Code, rows[2].Code)
	}
}

func TestTopN(t *testing.T) {
	rows := []model.FlowRow{
		{Code: "1", Name: "a"}, {Code: "2", Name: "b"}, {Code: "3", Name: "c"},
	}
	items := TopN(rows, 5)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	items = TopN(rows, 2)
	if len(items) != 2 || items[0].Code != "1" || items[1].Code != "2" {
		t.Fatalf("top 2 should keep source order, got %+v", items)
	}
}

func newTestClient(baseURL string) *Client {
	httpClient := web.NewClient(web.Options{
		MaxAttempts: 2,
		BackoffBase: time.Millisecond,
		Headers:     DefaultHeaders(""),
	})
	return NewClient(httpClient, baseURL)
}

func TestFetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") != "Daily" || q.Get("response") != "json" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("searchType") != "buy" {
			t.Errorf("searchType = %q, want buy", q.Get("searchType"))
		}
		if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
			t.Errorf("X-Requested-With = %q", got)
		}
		w.Write([]byte(`{"tables":[{"data":[["1","3081","聯亞","100","40","60"]]}]}`))
	}))
	defer srv.Close()

	label, rows, err := newTestClient(srv.URL).FetchDaily(context.Background(), SideBuy, "114/09/01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "2025/09/01" {
		t.Errorf("label = %q, want 2025/09/01", label)
	}
	if len(rows) != 1 || rows[0].Code != "3081" || rows[0].Net != 60 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestFetchDaily_NoTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tables":[]}`))
	}))
	defer srv.Close()

	label, rows, err := newTestClient(srv.URL).FetchDaily(context.Background(), SideBuy, "")
	if err != nil {
		t.Fatalf("no tables must not be an error, got %v", err)
	}
	if label != LabelLatestTradingDay {
		t.Errorf("label = %q, want %q", label, LabelLatestTradingDay)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %+v", rows)
	}
}

func TestFetchDaily_TablesNotArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tables":"oops"}`))
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).FetchDaily(context.Background(), SideBuy, "")
	if !errors.Is(err, web.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
}

func TestFetchDaily_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).FetchDaily(context.Background(), SideBuy, "")
	if !errors.Is(err, web.ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
}

func TestFetchDaily_BadDate(t *testing.T) {
	_, _, err := newTestClient("http://127.0.0.1:0").FetchDaily(context.Background(), SideBuy, "1x4/09/01")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
