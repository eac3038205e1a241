package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/TwigBush/sift-go/internal/embed"
	"github.com/TwigBush/sift-go/internal/retrieval"
)

// MemoryStore is a brute-force cosine-similarity store. Fine for the resume
// corpus sizes this service handles; swap in QdrantStore beyond that.
type MemoryStore struct {
	embedder embed.Embedder
	k        int

	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	doc retrieval.Document
	vec []float32
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(embedder embed.Embedder, k int) *MemoryStore {
	if k <= 0 {
		k = DefaultK
	}
	return &MemoryStore{embedder: embedder, k: k}
}

func (s *MemoryStore) Add(ctx context.Context, docs ...retrieval.Document) error {
	for _, doc := range docs {
		vec, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		s.mu.Lock()
		s.entries = append(s.entries, memoryEntry{doc: doc, vec: vec})
		s.mu.Unlock()
	}
	return nil
}

// Retrieve returns the k nearest documents by cosine similarity, best first.
// Ties break by insertion order so results stay deterministic.
func (s *MemoryStore) Retrieve(ctx context.Context, query string) ([]retrieval.Document, error) {
	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	scored := make([]struct {
		doc   retrieval.Document
		score float64
	}, len(s.entries))
	for i, e := range s.entries {
		scored[i].doc = e.doc
		scored[i].score = cosine(qvec, e.vec)
	}
	s.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	n := s.k
	if n > len(scored) {
		n = len(scored)
	}
	out := make([]retrieval.Document, 0, n)
	for _, sc := range scored[:n] {
		out = append(out, sc.doc)
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
