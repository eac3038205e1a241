// Package rag wires ingest, vector search, authorization filtering, and
// answer generation into one pipeline.
package rag

import (
	"context"
	"fmt"

	"github.com/TwigBush/sift-go/internal/answer"
	"github.com/TwigBush/sift-go/internal/authz"
	"github.com/TwigBush/sift-go/internal/ingest"
	"github.com/TwigBush/sift-go/internal/retrieval"
	"github.com/TwigBush/sift-go/internal/vector"
)

// DefaultQueryBuilder maps a candidate to the resume model: may user:<subject>
// view resume:<doc id>.
func DefaultQueryBuilder(subject string, doc retrieval.Document) authz.Check {
	return authz.Check{
		Subject:  "user:" + subject,
		Relation: "viewer",
		Object:   "resume:" + doc.ID,
	}
}

// Response is one answered query: the generated text plus the ids of the
// documents the subject was actually allowed to see.
type Response struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type Pipeline struct {
	store    vector.Store
	filtered *retrieval.FGARetriever
	gen      answer.Generator
}

func New(store vector.Store, checker authz.BatchChecker, gen answer.Generator) (*Pipeline, error) {
	filtered, err := retrieval.NewFGARetriever(store, DefaultQueryBuilder, checker)
	if err != nil {
		return nil, err
	}
	return &Pipeline{store: store, filtered: filtered, gen: gen}, nil
}

// Index embeds and stores documents.
func (p *Pipeline) Index(ctx context.Context, docs ...retrieval.Document) error {
	return p.store.Add(ctx, docs...)
}

// IndexDir ingests every supported file under dir and indexes the results.
// Returns the number of documents indexed.
func (p *Pipeline) IndexDir(ctx context.Context, dir string) (int, error) {
	docs, err := ingest.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if err := p.store.Add(ctx, docs...); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Query retrieves candidates for the question, keeps only what subject may
// view, and generates the answer from that filtered context. An authorization
// failure fails the whole query; there is no unfiltered fallback.
func (p *Pipeline) Query(ctx context.Context, subject, question string) (Response, error) {
	docs, err := p.filtered.Retrieve(ctx, subject, question)
	if err != nil {
		return Response{}, fmt.Errorf("retrieve context: %w", err)
	}

	text, err := p.gen.Answer(ctx, question, docs)
	if err != nil {
		return Response{}, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]string, len(docs))
	for i, d := range docs {
		sources[i] = d.ID
	}
	return Response{Answer: text, Sources: sources}, nil
}
