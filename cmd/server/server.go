// cmd/server/server.go
package main

import (
	"net/http"
	"time"

	"github.com/tentlabs/tentshop/internal/api"
	"github.com/tentlabs/tentshop/internal/api/admin"
	"github.com/tentlabs/tentshop/internal/api/themes"
)

func newServer(config *Config) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	// Register routes
	registerRoutes(router)

	return &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Theme catalog routes. The literal segments (custom, active, mode,
	// settings, cleanup) take precedence over the {id} wildcard.
	mux.HandleFunc("GET /api/v1/themes", themes.HandleThemesList)
	mux.HandleFunc("GET /api/v1/themes/categories", themes.HandleCategoriesList)
	mux.HandleFunc("GET /api/v1/themes/custom", themes.HandleCustomThemesList)
	mux.HandleFunc("POST /api/v1/themes/custom", themes.HandleCustomThemeCreate)
	mux.HandleFunc("GET /api/v1/themes/active", themes.HandleActiveThemeGet)
	mux.HandleFunc("PUT /api/v1/themes/active", themes.HandleActiveThemePut)
	mux.HandleFunc("GET /api/v1/themes/mode", themes.HandleModeGet)
	mux.HandleFunc("PUT /api/v1/themes/mode", themes.HandleModePut)
	mux.HandleFunc("GET /api/v1/themes/settings", themes.HandleSettingsGet)
	mux.HandleFunc("PUT /api/v1/themes/settings", themes.HandleSettingsPut)
	mux.HandleFunc("POST /api/v1/themes/cleanup", themes.HandleCleanup)
	mux.HandleFunc("GET /api/v1/themes/{id}", themes.HandleThemeDetail)
	mux.HandleFunc("PUT /api/v1/themes/{id}", themes.HandleThemeUpdate)
	mux.HandleFunc("DELETE /api/v1/themes/{id}", themes.HandleThemeDelete)

	// Admin routes
	mux.HandleFunc("POST /api/v1/admin/seed", admin.HandleSeed)
	mux.HandleFunc("GET /api/v1/admin/status", admin.HandleStatus)
}
