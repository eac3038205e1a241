package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TwigBush/sift-go/internal/answer"
	"github.com/TwigBush/sift-go/internal/authz"
	"github.com/TwigBush/sift-go/internal/embed"
	"github.com/TwigBush/sift-go/internal/retrieval"
	"github.com/TwigBush/sift-go/internal/vector"
)

func newPipeline(t *testing.T, checker authz.BatchChecker) *Pipeline {
	t.Helper()
	store := vector.NewMemoryStore(&embed.Mock{}, vector.DefaultK)
	p, err := New(store, checker, answer.Mock{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func seed(t *testing.T, p *Pipeline) {
	t.Helper()
	err := p.Index(context.Background(),
		retrieval.Document{ID: "xiao-resume", Content: "Xiao spent ten years building databases", Metadata: map[string]string{"access": "private"}},
		retrieval.Document{ID: "public-template", Content: "a resume template anyone can read", Metadata: map[string]string{"access": "public"}},
	)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
}

func TestQuery_OwnerSeesOwnResume(t *testing.T) {
	t.Parallel()

	checker := &authz.Mock{Decisions: map[string]bool{
		"resume:xiao-resume":     true,
		"resume:public-template": true,
	}}
	p := newPipeline(t, checker)
	seed(t, p)

	resp, err := p.Query(context.Background(), "Xiao", "What are Xiao's past experiences?")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	joined := strings.Join(resp.Sources, ",")
	if !strings.Contains(joined, "xiao-resume") || !strings.Contains(joined, "public-template") {
		t.Fatalf("sources = %v, want both documents", resp.Sources)
	}
}

func TestQuery_StrangerOnlySeesPublic(t *testing.T) {
	t.Parallel()

	checker := &authz.Mock{Decisions: map[string]bool{
		"resume:xiao-resume":     false,
		"resume:public-template": true,
	}}
	p := newPipeline(t, checker)
	seed(t, p)

	resp, err := p.Query(context.Background(), "Emily", "What are Xiao's past experiences?")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "public-template" {
		t.Fatalf("sources = %v, want only the public template", resp.Sources)
	}
}

func TestQuery_FailsClosedWhenCheckerDown(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, &authz.Mock{Err: errors.New("fga down")})
	seed(t, p)

	if _, err := p.Query(context.Background(), "Xiao", "anything"); err == nil {
		t.Fatal("expected query to fail when the checker is unavailable")
	}
}

func TestIndexDir_EmptyDirIndexesNothing(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, &authz.Mock{AllowAll: true})
	n, err := p.IndexDir(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("IndexDir error: %v", err)
	}
	if n != 0 {
		t.Fatalf("indexed %d, want 0", n)
	}
}

func TestDefaultQueryBuilder(t *testing.T) {
	t.Parallel()

	chk := DefaultQueryBuilder("alice", retrieval.Document{ID: "a1"})
	want := authz.Check{Subject: "user:alice", Relation: "viewer", Object: "resume:a1"}
	if chk != want {
		t.Fatalf("check = %+v, want %+v", chk, want)
	}
}
