package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/TwigBush/sift-go/internal/authz"
	"github.com/TwigBush/sift-go/internal/handlers"
	"github.com/TwigBush/sift-go/internal/httpx"
	"github.com/TwigBush/sift-go/internal/mw"
	"github.com/TwigBush/sift-go/internal/rag"
	"github.com/TwigBush/sift-go/internal/vector"
	"github.com/TwigBush/sift-go/internal/version"
)

type Options struct {
	EnableCORS bool
}

type Deps struct {
	Pipeline   *rag.Pipeline
	Tuples     authz.TupleWriter
	Store      vector.Store
	UploadsDir string
}

func BuildRouter(d Deps, opts Options) http.Handler {
	r := chi.NewRouter()

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// tracing + logger
	r.Use(mw.Trace())
	r.Use(mw.Logger(mw.LogOpts{
		SkipPaths: []string{"/healthz", "/version"},
	}))

	upload := handlers.NewUploadHandler(d.UploadsDir, d.Tuples, d.Store)
	query := handlers.NewQueryHandler(d.Pipeline)

	r.Get("/healthz", healthCheckHandler)
	r.Get("/version", handlers.VersionHandler)

	r.Post("/resumes/{userID}", upload.ServeHTTP)
	r.Post("/query", query.ServeHTTP)

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}
