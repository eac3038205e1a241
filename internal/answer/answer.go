// Package answer produces the final response text from a question and the
// authorized context documents.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/TwigBush/sift-go/internal/retrieval"
)

type Generator interface {
	Answer(ctx context.Context, question string, docs []retrieval.Document) (string, error)
}

const promptTemplate = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer, just say that you don't know. Use three sentences maximum and keep the answer concise.
Question: %s
Context: %s
Answer:`

func buildPrompt(question string, docs []retrieval.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return fmt.Sprintf(promptTemplate, question, strings.Join(parts, "\n\n"))
}
