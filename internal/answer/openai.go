package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/TwigBush/sift-go/internal/restclient"
	"github.com/TwigBush/sift-go/internal/retrieval"
)

const (
	chatPath     = "/v1/chat/completions"
	defaultModel = "gpt-4o-mini"
)

// OpenAI generates answers via an OpenAI-compatible chat-completions
// endpoint.
type OpenAI struct {
	client *restclient.Client
	model  string
}

var _ Generator = (*OpenAI)(nil)

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
	return &OpenAI{client: restclient.New(baseURL, headers), model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) Answer(ctx context.Context, question string, docs []retrieval.Document) (string, error) {
	req := chatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: buildPrompt(question, docs)}},
	}
	body, _, err := o.client.PostJSON(ctx, chatPath, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
