package model

// FlowRow is one instrument's daily institutional net-flow record.
// Rows with an empty Code or Name are never constructed; the fetcher
// drops header/footer artifacts during parsing.
type FlowRow struct {
	Code string
	Name string
	Buy  int64
	Sell int64
	Net  int64
}

// WatchItem identifies one instrument on the watchlist.
type WatchItem struct {
	Code string
	Name string
}
