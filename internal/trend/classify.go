// Package trend fits an ordinary least-squares line over the most recent
// bars of a series and classifies the price trend.
package trend

import (
	"math"

	"TpexRadar/internal/model"
)

// Params holds the classifier thresholds.
type Params struct {
	// Window is the number of most recent bars used for fitting.
	Window int
	// Strength is the absolute threshold on the model-implied fractional
	// price change over a full window.
	Strength float64
	// RSquared is the minimum coefficient of determination for a trend
	// call; noisier fits are classified FLAT.
	RSquared float64
}

// DefaultParams mirrors the production radar configuration: 300 bars of
// 5-minute data, 1% strength, r² of 0.10.
func DefaultParams() Params {
	return Params{Window: 300, Strength: 0.01, RSquared: 0.10}
}

// minBarsFloor is the hard lower bound on usable bars. It prevents
// spurious trend calls on thinly-traded or newly-listed instruments.
const minBarsFloor = 60

// Classify computes a directional verdict for the series. It is a pure
// function: the same series and params always yield the same verdict.
// Classification decisions use full precision; the reported fields are
// rounded for display (2 decimals for prices, 4 for strength and r²).
func Classify(bars []model.OHLCV, p Params) model.TrendVerdict {
	if len(bars) == 0 {
		return model.TrendVerdict{Direction: model.DirectionFlat, Status: model.StatusNoData}
	}

	start := len(bars) - p.Window
	if start < 0 {
		start = 0
	}
	closes := make([]float64, 0, len(bars)-start)
	for _, b := range bars[start:] {
		if math.IsNaN(b.Close) || b.Close == 0 {
			continue
		}
		closes = append(closes, b.Close)
	}

	n := len(closes)
	verdict := model.TrendVerdict{Direction: model.DirectionFlat, BarsUsed: n}

	var last, mean float64
	if n > 0 {
		last = closes[n-1]
		sum := 0.0
		for _, c := range closes {
			sum += c
		}
		mean = sum / float64(n)
		verdict.Last = ptr(round2(last))
		verdict.Mean = ptr(round2(mean))
	}

	floor := minBarsFloor
	if f := int(math.Round(0.6 * float64(p.Window))); f > floor {
		floor = f
	}
	if n < floor {
		verdict.Status = model.StatusInsufficient
		return verdict
	}

	slope, intercept := fitLine(closes)

	var ssRes, ssTot float64
	for i, y := range closes {
		yhat := slope*float64(i) + intercept
		ssRes += (y - yhat) * (y - yhat)
		ssTot += (y - mean) * (y - mean)
	}
	r2 := 0.0
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}

	strength := slope * float64(p.Window) / mean

	// The last-vs-mean check guards against a single-bar spike dominating
	// a weak trend; the r² gate rejects noisy series.
	switch {
	case strength >= p.Strength && last > mean && r2 >= p.RSquared:
		verdict.Direction = model.DirectionUp
	case strength <= -p.Strength && last < mean && r2 >= p.RSquared:
		verdict.Direction = model.DirectionDown
	}

	verdict.Status = model.StatusOK
	verdict.Strength = ptr(round4(strength))
	verdict.RSquared = ptr(round4(r2))
	return verdict
}

// fitLine computes the least-squares slope and intercept of closes over
// index 0..n-1 in chronological order.
func fitLine(closes []float64) (slope, intercept float64) {
	n := float64(len(closes))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / den
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func ptr(v float64) *float64 { return &v }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
