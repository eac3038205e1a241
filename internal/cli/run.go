package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TwigBush/sift-go/internal/di"
	"github.com/TwigBush/sift-go/internal/rag"
	"github.com/TwigBush/sift-go/internal/server"
)

func cmdRun() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Index the uploads directory and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func buildPipeline(ctx context.Context) (*rag.Pipeline, *server.Deps, error) {
	az, err := di.ProvideAuthz()
	if err != nil {
		return nil, nil, err
	}
	embedder, dim := di.ProvideEmbedder()
	store, err := di.ProvideStore(ctx, embedder, dim)
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := rag.New(store, az, di.ProvideGenerator())
	if err != nil {
		return nil, nil, err
	}

	deps := &server.Deps{
		Pipeline:   pipeline,
		Tuples:     az,
		Store:      store,
		UploadsDir: uploadsDir,
	}
	return pipeline, deps, nil
}

func runServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, deps, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	if _, err := os.Stat(uploadsDir); err == nil {
		n, err := pipeline.IndexDir(ctx, uploadsDir)
		if err != nil {
			return err
		}
		slog.Info("indexed uploads", "dir", uploadsDir, "count", n)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: server.BuildRouter(*deps, server.Options{EnableCORS: true}),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
