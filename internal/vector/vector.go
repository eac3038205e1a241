// Package vector provides the upstream similarity-search retrievers: a
// brute-force in-memory store and a qdrant-backed store with the same
// surface.
package vector

import (
	"context"

	"github.com/TwigBush/sift-go/internal/retrieval"
)

// DefaultK matches the candidate count the pipeline was tuned with.
const DefaultK = 4

// Store is a writable retriever: documents go in once at ingest time and are
// searched per query.
type Store interface {
	retrieval.Retriever
	Add(ctx context.Context, docs ...retrieval.Document) error
}
