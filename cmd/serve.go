package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fluent-ops/flu3nt/internal/classify"
	"github.com/fluent-ops/flu3nt/internal/knowledge"
	"github.com/fluent-ops/flu3nt/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the mapping dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st, newDetector(st), cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API surface consumed by the dashboard UI.
func newRouter(st *knowledge.Store, detector *classify.Detector, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/detect", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Columns []model.Column `json:"columns"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"suggestions": detector.DetectAll(body.Columns),
			"npiRanking":  detector.DetectNPIRanked(body.Columns),
		})
	})

	r.Get("/api/mappings", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, st.GetMappings(req.Context()))
	})

	r.Post("/api/mappings", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ColumnName string          `json:"columnName"`
			FieldType  model.FieldType `json:"fieldType"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.ColumnName == "" || !body.FieldType.Valid() {
			writeError(w, http.StatusBadRequest, "columnName and a valid fieldType are required")
			return
		}
		res := st.SaveMapping(req.Context(), body.ColumnName, body.FieldType)
		status := http.StatusOK
		if !res.Saved {
			status = http.StatusConflict
		}
		writeJSON(w, status, res)
	})

	r.Delete("/api/mappings/{column}", func(w http.ResponseWriter, req *http.Request) {
		column := chi.URLParam(req, "column")
		if !st.RemoveMapping(req.Context(), column) {
			writeError(w, http.StatusNotFound, "no mapping for column")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
	})

	r.Get("/api/mappings/payload", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, buildPayload(st.GetMappings(req.Context())))
	})

	r.Get("/api/knowledge", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, st.AllColumns(req.Context()))
	})

	r.Get("/api/knowledge/stats", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, st.GetStats(req.Context()))
	})

	r.Post("/api/knowledge/save", func(w http.ResponseWriter, req *http.Request) {
		saved := st.SaveMappingsToKnowledge(req.Context())
		writeJSON(w, http.StatusOK, map[string]int{"saved": saved})
	})

	r.Delete("/api/knowledge", func(w http.ResponseWriter, req *http.Request) {
		// The dashboard confirms with the user before calling this.
		if err := st.Clear(req.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "clear failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
	})

	r.Get("/api/knowledge/export", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := st.Export(req.Context(), w, "json"); err != nil {
			zap.L().Error("knowledge export failed", zap.Error(err))
		}
	})

	r.Post("/api/knowledge/import", func(w http.ResponseWriter, req *http.Request) {
		if err := st.Import(req.Context(), req.Body, "json"); err != nil {
			writeError(w, http.StatusBadRequest, "malformed knowledge document")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"imported": true})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
