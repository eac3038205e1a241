// Package di wires concrete collaborators from environment switches, the
// same way for the server and the one-shot CLI.
package di

import (
	"context"
	"os"

	"github.com/TwigBush/sift-go/internal/answer"
	"github.com/TwigBush/sift-go/internal/authz"
	"github.com/TwigBush/sift-go/internal/embed"
	"github.com/TwigBush/sift-go/internal/vector"
)

// Authz is what the pipeline and the upload path need from the policy
// service; OpenFGA and the mock both satisfy it.
type Authz interface {
	authz.BatchChecker
	authz.TupleWriter
}

// ProvideAuthz returns the checker selected by SIFT_AUTHZ: "fga" for a real
// OpenFGA store (configured via the FGA_* variables), anything else an
// allow-all mock for local dev.
func ProvideAuthz() (Authz, error) {
	switch os.Getenv("SIFT_AUTHZ") {
	case "fga":
		return authz.NewOpenFGA(authz.Config{})
	case "mock":
		fallthrough
	default:
		return &authz.Mock{AllowAll: true}, nil
	}
}

// ProvideEmbedder returns the embedder selected by SIFT_EMBEDDER ("openai"
// or the offline mock) together with its vector dimension.
func ProvideEmbedder() (embed.Embedder, int) {
	switch os.Getenv("SIFT_EMBEDDER") {
	case "openai":
		return embed.NewOpenAI(os.Getenv("SIFT_EMBED_MODEL")), 1536
	case "mock":
		fallthrough
	default:
		return &embed.Mock{}, 64
	}
}

// ProvideStore returns the vector store selected by SIFT_STORE: "qdrant" for
// a qdrant collection (QDRANT_HOST/QDRANT_PORT), anything else the in-memory
// store.
func ProvideStore(ctx context.Context, embedder embed.Embedder, dim int) (vector.Store, error) {
	switch os.Getenv("SIFT_STORE") {
	case "qdrant":
		collection := getenv("SIFT_COLLECTION", "resumes")
		return vector.NewQdrantStore(ctx, embedder, collection, dim, vector.DefaultK)
	case "memory":
		fallthrough
	default:
		return vector.NewMemoryStore(embedder, vector.DefaultK), nil
	}
}

// ProvideGenerator returns the answer generator selected by SIFT_ANSWERER
// ("openai" or the offline mock).
func ProvideGenerator() answer.Generator {
	switch os.Getenv("SIFT_ANSWERER") {
	case "openai":
		return answer.NewOpenAI(os.Getenv("SIFT_CHAT_MODEL"))
	case "mock":
		fallthrough
	default:
		return answer.Mock{}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
