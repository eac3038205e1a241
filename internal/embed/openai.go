package embed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/TwigBush/sift-go/internal/restclient"
)

const (
	embeddingsPath = "/v1/embeddings"
	defaultModel   = "text-embedding-ada-002"
	maxRetries     = 3
)

// OpenAI calls an OpenAI-compatible /v1/embeddings endpoint. Transient
// failures are retried with exponential backoff and jitter.
type OpenAI struct {
	client *restclient.Client
	model  string
}

var _ Embedder = (*OpenAI)(nil)

func NewOpenAI(model string) *OpenAI {
	if model == "" {
		model = defaultModel
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	headers := map[string]string{}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		headers["Authorization"] = "Bearer " + key
	}
	return &OpenAI{
		client: restclient.New(baseURL, headers),
		model:  model,
	}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			backoff := time.Duration(100*(1<<uint(attempt))) * time.Millisecond
			backoff += time.Duration(rand.Int63n(int64(100 * time.Millisecond)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, _, err := o.client.PostJSON(ctx, embeddingsPath, embeddingRequest{Model: o.model, Input: text})
		if err != nil {
			lastErr = err
			continue
		}
		var out embeddingResponse
		if err := json.Unmarshal(body, &out); err != nil {
			lastErr = fmt.Errorf("parse embeddings response: %w", err)
			continue
		}
		if len(out.Data) == 0 {
			lastErr = errors.New("no embedding data returned")
			continue
		}
		return out.Data[0].Embedding, nil
	}
	return nil, fmt.Errorf("embeddings request failed after %d attempts: %w", maxRetries, lastErr)
}
