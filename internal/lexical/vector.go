package lexical

import (
	"encoding/hex"
	"math"
)

// Fingerprint identifies the vector space of one fitted index: a BLAKE3
// digest over its options, vocabulary and idf weights.
type Fingerprint [32]byte

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// Vector is a sparse term-weight vector, entries sorted by column.
type Vector struct {
	space   Fingerprint
	columns []int
	weights []float64
}

// Space returns the fingerprint of the index that produced the vector.
func (v Vector) Space() Fingerprint { return v.space }

// Len returns the number of non-zero entries.
func (v Vector) Len() int { return len(v.columns) }

// Weight returns the weight stored at column, 0 if absent.
func (v Vector) Weight(column int) float64 {
	lo, hi := 0, len(v.columns)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case v.columns[mid] == column:
			return v.weights[mid]
		case v.columns[mid] < column:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0
}

// Dot returns the raw dot product of v and other. Both must be sorted.
func (v Vector) Dot(other Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.columns) && j < len(other.columns) {
		switch {
		case v.columns[i] == other.columns[j]:
			sum += v.weights[i] * other.weights[j]
			i++
			j++
		case v.columns[i] < other.columns[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the L2 norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v.weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// l2normalize scales weights in place to unit length. Zero vectors stay zero.
func l2normalize(weights []float64) {
	var sum float64
	for _, w := range weights {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range weights {
		weights[i] /= norm
	}
}
