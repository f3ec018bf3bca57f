// internal/api/themes/handlers.go
package themes

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tentlabs/tentshop/internal/api/apiutil"
	"github.com/tentlabs/tentshop/internal/catalog"
	"github.com/tentlabs/tentshop/internal/db"
	"github.com/tentlabs/tentshop/internal/models"
	"github.com/tentlabs/tentshop/internal/seed"
)

const (
	themeQueryTimeout = 5 * time.Second
	// Cleanup walks every theme document and may commit several
	// transactions, so it gets a wider bound than a single query.
	cleanupTimeout = 30 * time.Second
	themeIDParam   = "id"
)

var (
	database     *db.DB
	databaseOnce sync.Once
)

type activeThemeRequest struct {
	ThemeID string `json:"themeId"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type settingsRequest struct {
	ThemeID string `json:"themeId"`
	Mode    string `json:"mode"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d *db.DB) {
	if d == nil {
		return
	}
	databaseOnce.Do(func() {
		database = d
	})
}

func loadDB() *db.DB {
	return database
}

// GET /api/v1/themes
func HandleThemesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	stored, err := d.Queries.ListThemes(ctx)
	if err != nil {
		// Degrade to the built-in catalog rather than failing the page.
		logger.Error().Err(err).Msg("Failed to list themes, falling back to catalog")
		writeCatalogFallback(w, r)
		return
	}
	if len(stored) == 0 {
		writeCatalogFallback(w, r)
		return
	}

	predefined := make([]models.Theme, 0, len(stored))
	custom := make([]models.Theme, 0)
	for _, theme := range stored {
		if theme.IsCustom {
			custom = append(custom, theme)
		} else {
			predefined = append(predefined, theme)
		}
	}

	// If seeding has not run yet the catalog substitutes for the missing
	// predefined records; custom records are always appended.
	predefinedCount := len(predefined)
	if predefinedCount == 0 {
		builtin, err := catalog.Predefined()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load predefined catalog")
			apiutil.WriteError(w, http.StatusInternalServerError, "Failed to fetch themes")
			return
		}
		predefined = builtin
		predefinedCount = len(builtin)
	}

	all := append(predefined, custom...)
	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"themes":          all,
		"count":           len(all),
		"predefinedCount": predefinedCount,
		"customCount":     len(custom),
	})
}

// GET /api/v1/themes/categories
func HandleCategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := catalog.Categories()
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to load theme categories")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"categories": categories,
		"count":      len(categories),
	})
}

// GET /api/v1/themes/{id}
func HandleThemeDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	themeID := strings.TrimSpace(r.PathValue(themeIDParam))
	if themeID == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Theme ID is required")
		return
	}

	// Predefined themes resolve from the catalog first.
	if theme, ok := catalog.FindPredefined(themeID); ok {
		writeJSONOrLog(w, r, http.StatusOK, map[string]any{"theme": theme})
		return
	}

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	theme, err := d.Queries.GetTheme(ctx, themeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "Theme not found")
			return
		}
		logger.Error().Err(err).Str("theme_id", themeID).Msg("Failed to fetch theme")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to fetch theme")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{"theme": theme})
}

// PUT /api/v1/themes/{id}
func HandleThemeUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	themeID := strings.TrimSpace(r.PathValue(themeIDParam))
	if themeID == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Theme ID is required")
		return
	}

	var payload models.Theme
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	// The mutation filters on is_custom, so a predefined target reads as not
	// found. The path id always wins over any id in the payload.
	updated, err := d.Queries.UpdateCustomTheme(ctx, themeID, payload)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "Custom theme not found or cannot update predefined theme")
			return
		}
		logger.Error().Err(err).Str("theme_id", themeID).Msg("Failed to update theme")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update theme")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"theme":   updated,
		"message": "Theme updated successfully",
	})
}

// DELETE /api/v1/themes/{id}
func HandleThemeDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	themeID := strings.TrimSpace(r.PathValue(themeIDParam))
	if themeID == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Theme ID is required")
		return
	}

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	deleted, err := d.Queries.DeleteCustomTheme(ctx, themeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "Custom theme not found or cannot delete predefined theme")
			return
		}
		logger.Error().Err(err).Str("theme_id", themeID).Msg("Failed to delete theme")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to delete theme")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"message": "Theme deleted successfully",
		"deletedTheme": map[string]string{
			"id":   deleted.ID,
			"name": deleted.Name,
		},
	})
}

// GET /api/v1/themes/custom
func HandleCustomThemesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	custom, err := d.Queries.ListCustomThemes(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list custom themes")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to fetch custom themes")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"themes": custom,
		"count":  len(custom),
	})
}

// POST /api/v1/themes/custom
func HandleCustomThemeCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var payload models.Theme
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := payload.CheckRequiredShape(); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid theme structure")
		return
	}

	// isCustom is forced; clients cannot create predefined records.
	payload.IsCustom = true
	payload.ApplyTokenDefaults()
	if err := payload.Validate(); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Predefined ids are reserved even before seeding has run.
	if _, reserved := catalog.FindPredefined(payload.ID); reserved {
		apiutil.WriteError(w, http.StatusConflict, "Theme with this ID already exists")
		return
	}

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	created, err := d.Queries.InsertTheme(ctx, payload)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			apiutil.WriteError(w, http.StatusConflict, "Theme with this ID already exists")
			return
		}
		logger.Error().Err(err).Str("theme_id", payload.ID).Msg("Failed to create custom theme")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to create custom theme")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"theme":   created,
		"message": "Custom theme created successfully",
	})
}

// GET /api/v1/themes/active
func HandleActiveThemeGet(w http.ResponseWriter, r *http.Request) {
	sel, ok := fetchOrCreateSelection(w, r, "Failed to fetch active theme")
	if !ok {
		return
	}
	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"themeId":   sel.ThemeID,
		"updatedAt": sel.UpdatedAt,
	})
}

// PUT /api/v1/themes/active
func HandleActiveThemePut(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req activeThemeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.ThemeID) == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid theme ID")
		return
	}

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	sel, err := d.Queries.UpsertActiveThemeID(ctx, req.ThemeID)
	if err != nil {
		logger.Error().Err(err).Str("theme_id", req.ThemeID).Msg("Failed to set active theme")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update active theme")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"themeId":   sel.ThemeID,
		"updatedAt": sel.UpdatedAt,
		"message":   "Theme updated successfully",
	})
}

// GET /api/v1/themes/mode
func HandleModeGet(w http.ResponseWriter, r *http.Request) {
	sel, ok := fetchOrCreateSelection(w, r, "Failed to fetch theme mode")
	if !ok {
		return
	}
	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"mode":      sel.Mode,
		"updatedAt": sel.UpdatedAt,
	})
}

// PUT /api/v1/themes/mode
func HandleModePut(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req modeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil || !models.IsValidMode(req.Mode) {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid theme mode")
		return
	}

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	sel, err := d.Queries.UpsertMode(ctx, req.Mode)
	if err != nil {
		logger.Error().Err(err).Str("mode", req.Mode).Msg("Failed to set theme mode")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update theme mode")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"mode":      sel.Mode,
		"updatedAt": sel.UpdatedAt,
		"message":   "Theme mode updated successfully",
	})
}

// GET /api/v1/themes/settings
func HandleSettingsGet(w http.ResponseWriter, r *http.Request) {
	sel, ok := fetchOrCreateSelection(w, r, "Failed to fetch theme settings")
	if !ok {
		return
	}
	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"themeId":   sel.ThemeID,
		"mode":      sel.Mode,
		"updatedAt": sel.UpdatedAt,
	})
}

// PUT /api/v1/themes/settings
func HandleSettingsPut(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req settingsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil ||
		strings.TrimSpace(req.ThemeID) == "" || !models.IsValidMode(req.Mode) {
		apiutil.WriteError(w, http.StatusBadRequest, "Invalid theme settings")
		return
	}

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	sel, err := d.Queries.UpsertActiveSelection(ctx, req.ThemeID, req.Mode)
	if err != nil {
		logger.Error().Err(err).Str("theme_id", req.ThemeID).Msg("Failed to save theme settings")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update theme settings")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"themeId":   sel.ThemeID,
		"mode":      sel.Mode,
		"updatedAt": sel.UpdatedAt,
		"message":   "Theme settings updated successfully",
	})
}

// POST /api/v1/themes/cleanup
func HandleCleanup(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cleanupTimeout)
	defer cancel()

	report, err := seed.Cleanup(ctx, d)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to cleanup themes")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to cleanup themes")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"message":                "Theme cleanup completed",
		"totalDuplicatesRemoved": report.TotalDuplicatesRemoved,
		"processedThemes":        report.ProcessedThemes,
		"details":                report.Details,
	})
}

// fetchOrCreateSelection reads the selection singleton, creating the default
// {minimal-white, light} row when none exists yet.
func fetchOrCreateSelection(w http.ResponseWriter, r *http.Request, failMessage string) (models.ActiveSelection, bool) {
	logger := log.Ctx(r.Context())

	d := loadDB()
	if d == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return models.ActiveSelection{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	sel, err := d.Queries.GetActiveSelection(ctx)
	if errors.Is(err, db.ErrNotFound) {
		sel, err = d.Queries.EnsureActiveSelection(ctx, models.DefaultThemeID, models.ModeLight)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load active selection")
		apiutil.WriteError(w, http.StatusInternalServerError, failMessage)
		return models.ActiveSelection{}, false
	}
	return sel, true
}

func writeCatalogFallback(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	builtin, err := catalog.Predefined()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load predefined catalog")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to fetch themes")
		return
	}

	writeJSONOrLog(w, r, http.StatusOK, map[string]any{
		"themes":          builtin,
		"count":           len(builtin),
		"predefinedCount": len(builtin),
		"customCount":     0,
	})
}

func writeJSONOrLog(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Failed to write response")
	}
}
