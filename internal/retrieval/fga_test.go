package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/TwigBush/sift-go/internal/authz"
)

type fakeUpstream struct {
	docs  []Document
	err   error
	calls int
}

func (f *fakeUpstream) Retrieve(ctx context.Context, query string) ([]Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func resumeQuery(subject string, doc Document) authz.Check {
	return authz.Check{
		Subject:  "user:" + subject,
		Relation: "viewer",
		Object:   "resume:" + doc.ID,
	}
}

func newTestRetriever(t *testing.T, up Retriever, checker authz.BatchChecker) *FGARetriever {
	t.Helper()
	r, err := NewFGARetriever(up, resumeQuery, checker)
	if err != nil {
		t.Fatalf("NewFGARetriever: %v", err)
	}
	return r
}

func TestRetrieve_FiltersDeniedCandidates(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{docs: []Document{
		{ID: "a1", Content: "private resume", Metadata: map[string]string{"access": "private"}},
		{ID: "pub", Content: "public template", Metadata: map[string]string{"access": "public"}},
	}}
	checker := &authz.Mock{Decisions: map[string]bool{
		"resume:a1":  false,
		"resume:pub": true,
	}}

	r := newTestRetriever(t, up, checker)
	got, err := r.Retrieve(context.Background(), "alice", "past experiences")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "pub" {
		t.Fatalf("got %v, want only the public document", got)
	}
}

func TestRetrieve_AllAllowedKeepsRankedOrder(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{docs: []Document{
		{ID: "a1"}, {ID: "pub"},
	}}
	checker := &authz.Mock{AllowAll: true}

	r := newTestRetriever(t, up, checker)
	got, err := r.Retrieve(context.Background(), "owner-of-a1", "q")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "pub" {
		t.Fatalf("got %v, want both candidates in retrieval order", got)
	}
}

// reversingChecker answers every check allowed but returns results in the
// reverse of request order, like a service that offers no ordering guarantee.
type reversingChecker struct{}

func (reversingChecker) BatchCheck(ctx context.Context, checks []authz.Check) ([]authz.Result, error) {
	out := make([]authz.Result, 0, len(checks))
	for i := len(checks) - 1; i >= 0; i-- {
		out = append(out, authz.Result{Object: checks[i].Object, Allowed: true})
	}
	return out, nil
}

func TestRetrieve_ResponseOrderDoesNotLeak(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{docs: []Document{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	r := newTestRetriever(t, up, reversingChecker{})

	got, err := r.Retrieve(context.Background(), "alice", "q")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].ID != want {
			t.Fatalf("position %d = %q, want %q (full: %v)", i, got[i].ID, want, got)
		}
	}
}

func TestRetrieve_OutputIsSubsetWithoutDuplicates(t *testing.T) {
	t.Parallel()

	docs := make([]Document, 10)
	decisions := map[string]bool{}
	for i := range docs {
		docs[i] = Document{ID: fmt.Sprintf("d%d", i)}
		decisions["resume:"+docs[i].ID] = i%3 == 0
	}
	up := &fakeUpstream{docs: docs}
	r := newTestRetriever(t, up, &authz.Mock{Decisions: decisions})

	got, err := r.Retrieve(context.Background(), "alice", "q")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}

	known := map[string]int{}
	for _, d := range docs {
		known[d.ID] = 0
	}
	for _, d := range got {
		if _, ok := known[d.ID]; !ok {
			t.Fatalf("fabricated candidate %q in output", d.ID)
		}
		known[d.ID]++
		if known[d.ID] > 1 {
			t.Fatalf("candidate %q appears more than once", d.ID)
		}
		if !decisions["resume:"+d.ID] {
			t.Fatalf("denied candidate %q in output", d.ID)
		}
	}
	for id, count := range known {
		if decisions["resume:"+id] && count != 1 {
			t.Fatalf("allowed candidate %q appears %d times, want 1", id, count)
		}
	}
}

func TestRetrieve_ExactlyOneBatchOfSizeN(t *testing.T) {
	t.Parallel()

	docs := make([]Document, 7)
	for i := range docs {
		docs[i] = Document{ID: fmt.Sprintf("d%d", i)}
	}
	checker := &authz.Mock{AllowAll: true}
	r := newTestRetriever(t, &fakeUpstream{docs: docs}, checker)

	if _, err := r.Retrieve(context.Background(), "alice", "q"); err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}

	batches := checker.Batches()
	if len(batches) != 1 {
		t.Fatalf("checker called %d times, want exactly 1", len(batches))
	}
	if len(batches[0]) != len(docs) {
		t.Fatalf("batch size = %d, want %d", len(batches[0]), len(docs))
	}
	for _, chk := range batches[0] {
		if chk.Subject != "user:alice" {
			t.Fatalf("check subject = %q, want bound caller identity", chk.Subject)
		}
	}
}

func TestRetrieve_EmptyUpstreamSkipsBatchCall(t *testing.T) {
	t.Parallel()

	checker := &authz.Mock{AllowAll: true}
	r := newTestRetriever(t, &fakeUpstream{}, checker)

	got, err := r.Retrieve(context.Background(), "alice", "q")
	if err != nil {
		t.Fatalf("Retrieve error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty output", got)
	}
	if n := len(checker.Batches()); n != 0 {
		t.Fatalf("checker called %d times for empty candidate set, want 0", n)
	}
}

func TestRetrieve_FailsClosedOnCheckerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("fga unreachable")
	up := &fakeUpstream{docs: []Document{{ID: "a1"}, {ID: "pub"}}}
	r := newTestRetriever(t, up, &authz.Mock{Err: boom})

	got, err := r.Retrieve(context.Background(), "alice", "q")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if got != nil {
		t.Fatalf("got %v on checker failure, want no documents", got)
	}
}

func TestRetrieve_UpstreamErrorSkipsBatchCall(t *testing.T) {
	t.Parallel()

	boom := errors.New("index down")
	checker := &authz.Mock{AllowAll: true}
	r := newTestRetriever(t, &fakeUpstream{err: boom}, checker)

	if _, err := r.Retrieve(context.Background(), "alice", "q"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if n := len(checker.Batches()); n != 0 {
		t.Fatalf("checker called %d times after upstream failure, want 0", n)
	}
}

func TestRetrieve_ObjectCollisionFailsBeforeBatchCall(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{docs: []Document{{ID: "same"}, {ID: "same"}}}
	checker := &authz.Mock{AllowAll: true}
	r := newTestRetriever(t, up, checker)

	_, err := r.Retrieve(context.Background(), "alice", "q")
	if !errors.Is(err, ErrObjectCollision) {
		t.Fatalf("err = %v, want ErrObjectCollision", err)
	}
	if n := len(checker.Batches()); n != 0 {
		t.Fatalf("checker called %d times despite collision, want 0", n)
	}
}

func TestRetrieve_EmptySubjectRejected(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{docs: []Document{{ID: "a1"}}}
	r := newTestRetriever(t, up, &authz.Mock{AllowAll: true})

	if _, err := r.Retrieve(context.Background(), "", "q"); err == nil {
		t.Fatal("expected error for empty subject")
	}
	if up.calls != 0 {
		t.Fatalf("upstream called %d times for empty subject, want 0", up.calls)
	}
}

func TestNewFGARetriever_NilCollaborators(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{}
	checker := &authz.Mock{}

	if _, err := NewFGARetriever(nil, resumeQuery, checker); err == nil {
		t.Fatal("expected error for nil upstream")
	}
	if _, err := NewFGARetriever(up, nil, checker); err == nil {
		t.Fatal("expected error for nil query builder")
	}
	if _, err := NewFGARetriever(up, resumeQuery, nil); err == nil {
		t.Fatal("expected error for nil checker")
	}
}

func TestRetrieveAsync_MatchesBlockingPath(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{docs: []Document{{ID: "a1"}, {ID: "pub"}, {ID: "x"}}}
	checker := &authz.Mock{Decisions: map[string]bool{
		"resume:a1":  true,
		"resume:pub": true,
		"resume:x":   false,
	}}
	r := newTestRetriever(t, up, checker)

	sync, err := r.Retrieve(context.Background(), "alice", "q")
	if err != nil {
		t.Fatalf("blocking Retrieve error: %v", err)
	}

	res := <-r.RetrieveAsync(context.Background(), "alice", "q")
	if res.Err != nil {
		t.Fatalf("RetrieveAsync error: %v", res.Err)
	}

	if len(sync) != len(res.Documents) {
		t.Fatalf("blocking returned %d docs, async %d", len(sync), len(res.Documents))
	}
	for i := range sync {
		if sync[i].ID != res.Documents[i].ID {
			t.Fatalf("position %d: blocking %q vs async %q", i, sync[i].ID, res.Documents[i].ID)
		}
	}
}

func TestRetrieveAsync_FailsClosedOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("fga unreachable")
	up := &fakeUpstream{docs: []Document{{ID: "a1"}}}
	r := newTestRetriever(t, up, &authz.Mock{Err: boom})

	res := <-r.RetrieveAsync(context.Background(), "alice", "q")
	if !errors.Is(res.Err, boom) {
		t.Fatalf("err = %v, want wrapped %v", res.Err, boom)
	}
	if res.Documents != nil {
		t.Fatalf("got %v on failure, want no documents", res.Documents)
	}
}
