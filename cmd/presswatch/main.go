// CLAUDE:SUMMARY Entry point for the presswatch service: chi HTTP API, optional MCP stdio transport, interval scheduler.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	presswatch "github.com/hazyhaar/presswatch"
)

func main() {
	port := env("PORT", "8086")
	configPath := env("CONFIG", "presswatch.yaml")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")
	schedule := env("SCHEDULE", "") != ""

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := presswatch.LoadConfig(configPath)
	if err != nil {
		slog.Error("config", "path", configPath, "error", err)
		os.Exit(1)
	}

	svc, err := presswatch.New(ctx, cfg, logger)
	if err != nil {
		slog.Error("presswatch service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// MCP over stdio replaces the HTTP surface entirely.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "presswatch",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	if schedule {
		go svc.Start(ctx)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Post("/api/run", func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.Run(r.Context())
		if err != nil {
			code := 500
			if errors.Is(err, presswatch.ErrEmptyWatchlist) {
				code = 400
			}
			writeError(w, code, err)
			return
		}
		writeJSON(w, 200, rep)
	})

	r.Get("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 50)
		metas, err := svc.ListReports(r.Context(), limit)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, metas)
	})

	r.Get("/api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.GetReport(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, presswatch.ErrReportNotFound) {
			writeError(w, 404, err)
			return
		}
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, rep)
	})

	r.Get("/api/reports/{id}/markdown", func(w http.ResponseWriter, r *http.Request) {
		md, err := svc.GetReportMarkdown(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, presswatch.ErrReportNotFound) {
			writeError(w, 404, err)
			return
		}
		if err != nil {
			writeError(w, 500, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(200)
		w.Write([]byte(md))
	})

	r.Get("/api/watchlist", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, svc.Watchlist())
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Minute, // a full pipeline run happens inside POST /api/run
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port, "scheduler", schedule)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// --- Helpers ---

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
