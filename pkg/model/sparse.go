package model

// SparseVector stores the non-zero entries of a probability row as parallel
// index/value slices. The slice length is the row length; there is no
// sentinel value and no trailing undefined region.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Dense expands the row into a dense vector of length n.
func (v SparseVector) Dense(n int) []float64 {
	out := make([]float64, n)
	for k, idx := range v.Indices {
		out[idx] = v.Values[k]
	}
	return out
}

// Dot computes the inner product with a dense vector. Only the non-zero
// entries are visited.
func (v SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for k, idx := range v.Indices {
		sum += v.Values[k] * dense[idx]
	}
	return sum
}

// FromDense builds a sparse row from a dense vector, keeping strictly
// positive entries.
func FromDense(dense []float64) SparseVector {
	var row SparseVector
	for i, p := range dense {
		if p > 0 {
			row.Indices = append(row.Indices, i)
			row.Values = append(row.Values, p)
		}
	}
	return row
}
