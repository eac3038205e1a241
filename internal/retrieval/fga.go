package retrieval

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/TwigBush/sift-go/internal/authz"
)

var tracer = otel.Tracer("github.com/TwigBush/sift-go/internal/retrieval")

// ErrObjectCollision reports two distinct candidates mapping to the same
// authorization object. A silent overwrite here could let one candidate's
// decision stand in for another's, so the whole call fails instead.
var ErrObjectCollision = errors.New("duplicate authorization object for distinct candidates")

// FGARetriever wraps an upstream Retriever and returns only the candidates
// the subject is authorized to view, in the upstream's ranked order. All
// decisions for one call travel in a single batch check; any failure on the
// authorization path fails the call closed.
//
// The retriever holds no per-call state and is safe for concurrent use.
type FGARetriever struct {
	upstream Retriever
	build    QueryBuilder
	checker  authz.BatchChecker
}

func NewFGARetriever(upstream Retriever, build QueryBuilder, checker authz.BatchChecker) (*FGARetriever, error) {
	if upstream == nil {
		return nil, errors.New("fga_retriever: upstream retriever is nil")
	}
	if build == nil {
		return nil, errors.New("fga_retriever: query builder is nil")
	}
	if checker == nil {
		return nil, errors.New("fga_retriever: batch checker is nil")
	}
	return &FGARetriever{upstream: upstream, build: build, checker: checker}, nil
}

// Retrieve runs the upstream search and filters the candidates down to those
// the subject may view. Blocking form; RetrieveAsync offers the same
// semantics on a channel.
func (r *FGARetriever) Retrieve(ctx context.Context, subject, query string) ([]Document, error) {
	if subject == "" {
		return nil, errors.New("fga_retriever: subject is empty")
	}

	docs, err := r.upstream.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("upstream retrieve: %w", err)
	}
	return r.filter(ctx, subject, docs)
}

// AsyncResult carries the outcome of one RetrieveAsync call.
type AsyncResult struct {
	Documents []Document
	Err       error
}

// RetrieveAsync is the non-blocking form of Retrieve. The returned channel
// receives exactly one result and is then closed. Cancelling ctx fails the
// call closed, same as the blocking form.
func (r *FGARetriever) RetrieveAsync(ctx context.Context, subject, query string) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		defer close(out)
		docs, err := r.Retrieve(ctx, subject, query)
		out <- AsyncResult{Documents: docs, Err: err}
	}()
	return out
}

// filter holds the single copy of the filtering algorithm both execution
// paths delegate to. The batch check is its only I/O.
func (r *FGARetriever) filter(ctx context.Context, subject string, docs []Document) ([]Document, error) {
	if len(docs) == 0 {
		// Nothing to check; never send an empty batch.
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "fga_retriever.filter", trace.WithAttributes(
		attribute.Int("batch_size", len(docs)),
	))
	defer span.End()

	checks, objects, err := buildChecks(subject, docs, r.build)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	results, err := r.checker.BatchCheck(ctx, checks)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("batch check: %w", err)
	}

	allowed := selectAllowed(docs, objects, results)
	span.SetAttributes(attribute.Int("allowed_count", len(allowed)))
	return allowed, nil
}

// buildChecks produces one check per candidate plus the parallel object-key
// slice used for the join. Duplicate objects are an error, not an overwrite.
func buildChecks(subject string, docs []Document, build QueryBuilder) ([]authz.Check, []string, error) {
	checks := make([]authz.Check, len(docs))
	objects := make([]string, len(docs))
	seen := make(map[string]struct{}, len(docs))

	for i, doc := range docs {
		chk := build(subject, doc)
		if _, dup := seen[chk.Object]; dup {
			return nil, nil, fmt.Errorf("%w: %q", ErrObjectCollision, chk.Object)
		}
		seen[chk.Object] = struct{}{}
		checks[i] = chk
		objects[i] = chk.Object
	}
	return checks, objects, nil
}

// selectAllowed keeps the candidates whose object was answered allowed. It
// walks the candidate list in its original ranked order and tests membership
// against the response, so the service's response ordering never leaks into
// the output.
func selectAllowed(docs []Document, objects []string, results []authz.Result) []Document {
	allowed := make(map[string]bool, len(results))
	for _, res := range results {
		if res.Allowed {
			allowed[res.Object] = true
		}
	}

	out := make([]Document, 0, len(docs))
	for i, doc := range docs {
		if allowed[objects[i]] {
			out = append(out, doc)
		}
	}
	return out
}
