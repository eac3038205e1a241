package answer

import (
	"context"
	"fmt"

	"github.com/TwigBush/sift-go/internal/retrieval"
)

// Mock is an offline Generator for dev and tests: it summarizes what it was
// given instead of calling a model.
type Mock struct{}

var _ Generator = (*Mock)(nil)

func (Mock) Answer(ctx context.Context, question string, docs []retrieval.Document) (string, error) {
	if len(docs) == 0 {
		return "I don't know.", nil
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return fmt.Sprintf("Answer to %q based on %d document(s): %v", question, len(docs), ids), nil
}
