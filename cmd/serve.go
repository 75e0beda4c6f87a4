package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/extract"
	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the document-processing HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}))

		r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/api/process-document", handleProcessDocument(env))
		r.Get("/api/analyses", handleListAnalyses(env))
		r.Get("/api/analyses/{id}", handleGetAnalysis(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("http server listening", zap.Int("port", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured listen port")
	rootCmd.AddCommand(serveCmd)
}

func handleProcessDocument(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, text, status, err := readDocument(env, r)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}

		result, err := env.Pipeline.Run(r.Context(), source, text)
		if err != nil {
			writeError(w, statusForRunError(err), err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"id":             result.ID,
			"financial_data": result.Record,
			"file_path":      filepath.Base(result.RecordPath),
		})
	}
}

// readDocument pulls the document text out of the request: either a
// JSON body with a "text" field or a multipart upload under "document".
func readDocument(env *appEnv, r *http.Request) (source, text string, status int, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Text     string `json:"text"`
			Filename string `json:"filename"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", http.StatusBadRequest, errors.New("invalid request body")
		}
		if req.Text == "" {
			return "", "", http.StatusBadRequest, errors.New("no document text provided")
		}
		source = req.Filename
		if source == "" {
			source = "document.txt"
		}
		return source, req.Text, 0, nil
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		return "", "", http.StatusBadRequest, errors.New("no document file provided")
	}
	defer file.Close()

	if header.Filename == "" {
		return "", "", http.StatusBadRequest, errors.New("empty file name")
	}

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", "", http.StatusInternalServerError, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return "", "", http.StatusInternalServerError, err
	}
	tmp.Close()

	text, err = env.Reader.ExtractText(r.Context(), tmp.Name())
	if err != nil {
		return "", "", http.StatusUnprocessableEntity, err
	}
	return filepath.Base(header.Filename), text, 0, nil
}

func statusForRunError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrServerUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, extract.ErrNoParsableStructure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func handleListAnalyses(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analyses, err := env.Store.ListAnalyses(r.Context(), 50)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "analyses": analyses})
	}
}

func handleGetAnalysis(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := env.Store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "analysis": a})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
