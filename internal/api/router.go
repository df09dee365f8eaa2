// Package api provides HTTP router setup.
package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/config"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/database"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/pipeline"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/theme"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg *config.Config, controller *pipeline.Controller, store database.Store, themeManager *theme.Manager, staticFS embed.FS) http.Handler {
	r := chi.NewRouter()

	handler := NewHandler(controller, store, themeManager)

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (also used by the deploy probe)
		r.Get("/health", handler.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))

			// Submission endpoints, one per channel
			r.Post("/analyze/comment", handler.AnalyzeComment)
			r.Post("/analyze/csv", handler.AnalyzeCSV)
			r.Post("/analyze/playstore", handler.AnalyzePlayStore)

			// Channel states and artifacts
			r.Get("/channels", handler.Channels)
			r.Get("/channels/{channel}", handler.ChannelState)
			r.Get("/channels/{channel}/artifact", handler.DownloadArtifact)

			// Demo substitution
			r.Post("/demo/{channel}", handler.ActivateDemo)

			// Reference data and history
			r.Get("/subcharacteristics", handler.Subcharacteristics)
			r.Get("/results", handler.ListResults)
			r.Get("/results/{id}", handler.GetResult)

			// Display preference
			r.Get("/preferences/theme", handler.GetTheme)
			r.Post("/preferences/theme/toggle", handler.ToggleTheme)
		})
	})

	// Serve static frontend if enabled
	if cfg.Server.EnableUI {
		staticContent, err := fs.Sub(staticFS, "static")
		if err == nil {
			fileServer := http.FileServer(http.FS(staticContent))
			r.Handle("/*", fileServer)
		} else {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>ExtractReq</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #1a237e; }
        code { background: #f1f5f9; padding: 2px 6px; border-radius: 4px; }
        .endpoint { margin: 10px 0; }
    </style>
</head>
<body>
    <h1>ExtractReq API</h1>
    <p>Security requirement extraction is running. Use the API endpoints below:</p>

    <h2>Endpoints</h2>
    <div class="endpoint"><code>GET /api/v1/health</code> - Health check</div>
    <div class="endpoint"><code>POST /api/v1/analyze/comment</code> - Classify a single comment</div>
    <div class="endpoint"><code>POST /api/v1/analyze/csv</code> - Classify a CSV batch</div>
    <div class="endpoint"><code>POST /api/v1/analyze/playstore</code> - Classify Play Store reviews</div>
    <div class="endpoint"><code>GET /api/v1/channels</code> - Current channel states</div>
    <div class="endpoint"><code>GET /api/v1/results</code> - Analysis history</div>
</body>
</html>`))
			})
		}
	}

	return r
}
