package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TwigBush/sift-go/internal/answer"
	"github.com/TwigBush/sift-go/internal/authz"
	"github.com/TwigBush/sift-go/internal/embed"
	"github.com/TwigBush/sift-go/internal/rag"
	"github.com/TwigBush/sift-go/internal/trace"
	"github.com/TwigBush/sift-go/internal/vector"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	az := &authz.Mock{AllowAll: true}
	store := vector.NewMemoryStore(&embed.Mock{}, vector.DefaultK)
	pipeline, err := rag.New(store, az, answer.Mock{})
	if err != nil {
		t.Fatalf("rag.New: %v", err)
	}
	return BuildRouter(Deps{
		Pipeline:   pipeline,
		Tuples:     az,
		Store:      store,
		UploadsDir: t.TempDir(),
	}, Options{})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestQueryRouteEchoesTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"subject":"a","question":"q"}`))
	req.Header.Set(trace.Header, "abc123")
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get(trace.Header); got != "abc123" {
		t.Fatalf("trace header = %q, want echoed id", got)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
