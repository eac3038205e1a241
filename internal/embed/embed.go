// Package embed turns text into vectors via an OpenAI-compatible embeddings
// endpoint, with a deterministic local fallback for dev and tests.
package embed

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
