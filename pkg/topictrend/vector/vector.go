// Package vector holds the embedding type, cosine similarity and the
// nearest-neighbour index used to match phrases against learned topics.
package vector

import "math"

// Embedding is a fixed-length vector produced by an embedding model.
type Embedding []float32

// IsZero reports whether e is empty or has no non-zero component.
func (e Embedding) IsZero() bool {
	for _, v := range e {
		if v != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy of e.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// Cosine computes the cosine similarity of a and b in float64.
// Similarity against an empty or all-zero vector is 0. Vectors of different
// lengths are compared over the shared prefix; the extra components still
// count toward the norm of the longer vector.
func Cosine(a, b Embedding) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	for _, av := range a[minLen:] {
		normA += float64(av) * float64(av)
	}
	for _, bv := range b[minLen:] {
		normB += float64(bv) * float64(bv)
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
