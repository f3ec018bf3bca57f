// internal/api/admin/handlers.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tentlabs/tentshop/internal/api/apiutil"
	"github.com/tentlabs/tentshop/internal/db"
	"github.com/tentlabs/tentshop/internal/models"
	"github.com/tentlabs/tentshop/internal/seed"
)

const adminQueryTimeout = 10 * time.Second

var (
	database     *db.DB
	databaseOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d *db.DB) {
	if d == nil {
		return
	}
	databaseOnce.Do(func() {
		database = d
	})
}

// POST /api/v1/admin/seed
func HandleSeed(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	result, err := seed.Run(ctx, database.Queries)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to seed database")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to seed database")
		return
	}

	logger.Info().
		Int("inserted", result.InsertedThemes).
		Int("total", result.TotalPredefinedThemes).
		Msg("Database seeded")

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":               "Database seeded successfully",
		"insertedThemes":        result.InsertedThemes,
		"totalPredefinedThemes": result.TotalPredefinedThemes,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}

// GET /api/v1/admin/status
func HandleStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		writeStatusError(w, r, errors.New("database not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	var (
		total, custom, predefined int64
		selection                 models.ActiveSelection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = database.Queries.CountThemes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		custom, err = database.Queries.CountCustomThemes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		predefined, err = database.Queries.CountPredefinedThemes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		selection, err = database.Queries.GetActiveSelection(gctx)
		if errors.Is(err, db.ErrNotFound) {
			selection = models.ActiveSelection{
				ThemeID: models.DefaultThemeID,
				Mode:    models.ModeLight,
			}
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Failed to collect status")
		writeStatusError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"database": map[string]any{
			"connected": true,
			"status":    "ok",
		},
		"themes": map[string]any{
			"total":      total,
			"predefined": predefined,
			"custom":     custom,
		},
		"activeTheme": selection.ThemeID,
		"settings": map[string]any{
			"themeId":   selection.ThemeID,
			"mode":      selection.Mode,
			"updatedAt": selection.UpdatedAt,
		},
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}

func writeStatusError(w http.ResponseWriter, r *http.Request, cause error) {
	if err := apiutil.WriteJSON(w, http.StatusInternalServerError, map[string]any{
		"database": map[string]any{
			"connected": false,
			"status":    "error",
			"error":     cause.Error(),
		},
	}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
