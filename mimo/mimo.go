// Package mimo selects a transmit beamforming weight vector (MIMO modes 3
// and 7, a single spatial stream) from a fixed phase-only codebook, given
// per-subcarrier DRS channel estimates, and derives the reciprocal
// recommendation for the other link direction.
//
// Grounded on
// lib/include/dectnrp/phy/rx/rx_synced/mimo/{estimator_mimo,mimo_csi,mimo_report}.hpp
// and lib/src/phy/rx/rx_synced/mimo/{estimator_mimo,mimo_csi}.cpp.
package mimo

import (
	"errors"
	"math"
	"math/cmplx"
)

// Metric selects how per-RX aggregate magnitudes are combined into a single
// score a candidate weight vector is judged by.
type Metric int

const (
	// MaxMin favors the candidate whose weakest RX-side aggregate is
	// largest.
	MaxMin Metric = iota
	// MaxSum favors the candidate whose RX-side aggregates sum largest.
	MaxSum
	// MinSpread favors the candidate with the smallest gap between its
	// strongest and weakest RX-side aggregate.
	MinSpread
)

// CodebookEntry is one candidate beamforming weight vector.
type CodebookEntry struct {
	Weights       []complex128
	ScalingFactor float64
}

// qpskPhases are the four unit phases a Type-I phase-only codebook entry
// may apply to each transmit antenna.
var qpskPhases = []complex128{1, 1i, -1, -1i}

// Codebook enumerates every phase-only weight vector of length nTS, each
// normalized by 1/sqrt(nTS). For nTS == 1 it returns the trivial single
// entry [1], since a single antenna has nothing to beamform.
func Codebook(nTS int) []CodebookEntry {
	if nTS <= 1 {
		return []CodebookEntry{{Weights: []complex128{1}, ScalingFactor: 1.0}}
	}

	scaling := 1.0 / math.Sqrt(float64(nTS))
	n := 1
	for i := 0; i < nTS; i++ {
		n *= len(qpskPhases)
	}

	entries := make([]CodebookEntry, 0, n)
	weights := make([]complex128, nTS)
	var recurse func(pos int)
	recurse = func(pos int) {
		if pos == nTS {
			w := make([]complex128, nTS)
			copy(w, weights)
			entries = append(entries, CodebookEntry{Weights: w, ScalingFactor: scaling})
			return
		}
		for _, p := range qpskPhases {
			weights[pos] = p
			recurse(pos + 1)
		}
	}
	recurse(0)

	return entries
}

// ErrEmptyChannel is returned when H has no RX rows, no TS columns, or no
// subcarrier cells.
var ErrEmptyChannel = errors.New("mimo: empty channel estimate")

// Select evaluates every candidate in codebook(nTS) against the DRS channel
// estimate H[rx][ts][cell] and returns the index of the winning candidate
// together with the entry itself. For nTS == 1 it always returns index 0
// without evaluating the (trivial) codebook.
func Select(h [][][]complex128, metric Metric) (int, CodebookEntry, error) {
	nRX := len(h)
	if nRX == 0 || len(h[0]) == 0 || len(h[0][0]) == 0 {
		return 0, CodebookEntry{}, ErrEmptyChannel
	}
	nTS := len(h[0])

	if nTS == 1 {
		return 0, CodebookEntry{Weights: []complex128{1}, ScalingFactor: 1.0}, nil
	}

	book := Codebook(nTS)

	bestIdx := -1
	var bestScore float64
	var bestEntry CodebookEntry

	for i, entry := range book {
		sums := make([]float64, nRX)
		for r := 0; r < nRX; r++ {
			var sumR complex128
			for ts := 0; ts < nTS; ts++ {
				var cellSum complex128
				for _, v := range h[r][ts] {
					cellSum += v
				}
				sumR += cellSum * entry.Weights[ts]
			}
			sums[r] = cmplx.Abs(sumR) * entry.ScalingFactor
		}

		score := scoreFor(metric, sums)

		if bestIdx == -1 || better(metric, score, bestScore) {
			bestIdx = i
			bestScore = score
			bestEntry = entry
		}
	}

	return bestIdx, bestEntry, nil
}

func scoreFor(metric Metric, sums []float64) float64 {
	switch metric {
	case MaxMin:
		return minOf(sums)
	case MaxSum:
		var s float64
		for _, v := range sums {
			s += v
		}
		return s
	case MinSpread:
		return maxOf(sums) - minOf(sums)
	default:
		return 0
	}
}

// better reports whether candidate beats current given the metric's
// optimization direction: MaxMin/MaxSum maximize their score, MinSpread
// minimizes it.
func better(metric Metric, candidate, current float64) bool {
	if metric == MinSpread {
		return candidate < current
	}
	return candidate > current
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Reciprocal derives the beamforming recommendation for the OTHER link
// direction by swapping the RX/TS roles of h (transposing its first two
// axes) and re-running Select with the same metric.
func Reciprocal(h [][][]complex128, metric Metric) (int, CodebookEntry, error) {
	if len(h) == 0 || len(h[0]) == 0 {
		return 0, CodebookEntry{}, ErrEmptyChannel
	}
	nRX := len(h)
	nTS := len(h[0])
	nCells := len(h[0][0])

	swapped := make([][][]complex128, nTS)
	for ts := 0; ts < nTS; ts++ {
		swapped[ts] = make([][]complex128, nRX)
		for r := 0; r < nRX; r++ {
			swapped[ts][r] = make([]complex128, nCells)
			copy(swapped[ts][r], h[r][ts])
		}
	}

	return Select(swapped, metric)
}
