package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/malhajar17/jim-and-dwight/internal/dedupe"
	"github.com/malhajar17/jim-and-dwight/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the batch lead endpoints over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

// newRouter wires the batch-transform endpoints. Each takes a JSON
// array of leads, runs one orchestrator, persists the result, and
// returns the mutated array.
func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/leads/validate", leadBatchHandler(env, func(ctx context.Context, leads []model.Lead) []model.Lead {
		return env.Validator.Validate(ctx, dedupe.Leads(leads))
	}))
	r.Post("/leads/enrich", leadBatchHandler(env, func(ctx context.Context, leads []model.Lead) []model.Lead {
		return env.Enricher.Enrich(ctx, leads)
	}))
	r.Post("/leads/upgrade", leadBatchHandler(env, func(ctx context.Context, leads []model.Lead) []model.Lead {
		return env.Upgrader.Upgrade(ctx, leads)
	}))

	return r
}

func leadBatchHandler(env *pipelineEnv, transform func(context.Context, []model.Lead) []model.Lead) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var leads []model.Lead
		if err := json.NewDecoder(req.Body).Decode(&leads); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(leads) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty lead batch"})
			return
		}

		out := transform(req.Context(), leads)
		if err := env.Store.SaveLeads(req.Context(), out); err != nil {
			zap.L().Error("persist batch failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "persist failed"})
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
