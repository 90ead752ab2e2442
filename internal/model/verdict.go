package model

// Direction is the classified price trend of an instrument.
type Direction string

const (
	DirectionUp           Direction = "UP"
	DirectionDown         Direction = "DOWN"
	DirectionFlat         Direction = "FLAT"
	DirectionNotAvailable Direction = "N/A"
)

// VerdictStatus describes how much data backed a verdict.
type VerdictStatus string

const (
	StatusOK           VerdictStatus = "ok"
	StatusInsufficient VerdictStatus = "insufficient"
	StatusNoData       VerdictStatus = "no_data"
)

// TrendVerdict is the output of the trend classifier. Pointer fields are
// nil when the underlying value could not be computed:
//   - StatusNoData: all pointers nil, BarsUsed 0
//   - StatusInsufficient: Last/Mean set, Strength/RSquared nil
type TrendVerdict struct {
	Direction Direction
	Status    VerdictStatus
	Last      *float64
	Mean      *float64
	BarsUsed  int
	Strength  *float64
	RSquared  *float64
}

// InstrumentResult pairs a watchlist entry with its trend verdict.
type InstrumentResult struct {
	Code    string
	Name    string
	Verdict TrendVerdict
}
