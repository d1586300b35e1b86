// Package taste computes pairwise taste alignment between users from their
// rating histories. The correlation math in this file is pure and
// store-independent; everything that touches the database lives behind the
// Store interface.
package taste

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ContextKey identifies one dining-context row: ("date_night", "dinner").
type ContextKey struct {
	Occasion string
	MealType string
}

// CuisineCorrelation computes cosine similarity between two sparse cuisine
// preference vectors. Returns 0 if either vector has zero magnitude.
func CuisineCorrelation(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	union := map[string]bool{}
	for k := range a {
		union[k] = true
	}
	for k := range b {
		union[k] = true
	}
	keys := make([]string, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	// Deterministic alignment, map iteration order is random.
	sort.Strings(keys)

	av := make([]float64, len(keys))
	bv := make([]float64, len(keys))
	for i, k := range keys {
		av[i] = a[k]
		bv[i] = b[k]
	}

	magA := math.Sqrt(floats.Dot(av, av))
	magB := math.Sqrt(floats.Dot(bv, bv))
	if magA == 0 || magB == 0 {
		return 0
	}
	return clampCorrelation(floats.Dot(av, bv) / (magA * magB))
}

// RatingCorrelation computes the Pearson correlation coefficient over two
// users' ratings of the same restaurants. xs[i] and ys[i] must rate the same
// restaurant. Returns 0 when there are no paired samples or either side has
// zero variance.
func RatingCorrelation(xs, ys []float64) float64 {
	if len(xs) == 0 || len(xs) != len(ys) {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	// Zero variance on either side yields NaN.
	if math.IsNaN(r) {
		return 0
	}
	return clampCorrelation(r)
}

// ContextCorrelation computes the fraction of dining-context rows present in
// both frequency tables, over all rows present in either. This is an overlap
// ratio, not a statistical correlation; it is kept as a cheap proxy because
// the combination weights were tuned against exactly this behavior.
func ContextCorrelation(a, b map[ContextKey]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	both := 0
	union := len(a)
	for k := range b {
		if _, ok := a[k]; ok {
			both++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return clampCorrelation(float64(both) / float64(union))
}

func clampCorrelation(x float64) float64 {
	// Extreme inputs can overflow intermediate sums to Inf, making the ratio
	// NaN or Inf. Treat those as degenerate input.
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, x))
}
