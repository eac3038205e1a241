package retrieval

import (
	"context"

	"github.com/TwigBush/sift-go/internal/authz"
)

// Document is one candidate produced by an upstream retriever. ID must be
// unique within a single retrieval's candidate set.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Retriever is the upstream search capability (vector, keyword, hybrid).
// Implementations return candidates in ranked order, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// QueryBuilder maps one candidate to one authorization check for the given
// subject identity. It must be deterministic and side-effect free, and must
// produce a distinct object per distinct candidate.
type QueryBuilder func(subject string, doc Document) authz.Check
