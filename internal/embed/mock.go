package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Mock is a deterministic, offline embedder: a normalized hashed bag of
// words. Texts sharing vocabulary land near each other, which is enough for
// the local dev pipeline and for tests.
type Mock struct {
	Dim int // defaults to 64
}

var _ Embedder = (*Mock)(nil)

func (m *Mock) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := m.Dim
	if dim <= 0 {
		dim = 64
	}

	vec := make([]float32, dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
