// Package analysis derives reporting views from a finished election: the
// per-voter agreement distribution for a candidate and the synthetic
// majority candidate.
package analysis

import (
	"encoding/json"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of a sample. Statistics that are
// undefined for the sample size are NaN: everything but Count for an empty
// sample, and Std for fewer than two values.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Describe computes a Summary of values. Std is the sample standard
// deviation and quartiles interpolate linearly between order statistics.
// values is not modified.
func Describe(values []float64) Summary {
	n := len(values)
	if n == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	std := math.NaN()
	if n > 1 {
		std = stat.StdDev(sorted, nil)
	}

	return Summary{
		Count:  n,
		Mean:   stat.Mean(sorted, nil),
		Std:    std,
		Min:    sorted[0],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    sorted[n-1],
	}
}

// quantile returns the p-quantile of sorted using the (n-1)p position with
// linear interpolation between neighbours.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

type summaryJSON struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"q25"`
	Median *float64 `json:"median"`
	Q75    *float64 `json:"q75"`
	Max    *float64 `json:"max"`
}

// MarshalJSON encodes undefined statistics as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		Count:  s.Count,
		Mean:   finite(s.Mean),
		Std:    finite(s.Std),
		Min:    finite(s.Min),
		Q25:    finite(s.Q25),
		Median: finite(s.Median),
		Q75:    finite(s.Q75),
		Max:    finite(s.Max),
	})
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
