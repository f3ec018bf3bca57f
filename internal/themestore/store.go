// Package themestore keeps client-side theme selection state in sync with the
// theme service. Reads are served from memory; mutations apply optimistically
// and persist in the background.
package themestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tentlabs/tentshop/internal/catalog"
	"github.com/tentlabs/tentshop/internal/models"
)

// ThemeAPI is the slice of the theme service the store depends on.
type ThemeAPI interface {
	FetchThemes(ctx context.Context) ([]models.Theme, error)
	FetchSettings(ctx context.Context) (models.ActiveSelection, error)
	SaveActiveTheme(ctx context.Context, themeID string) error
	SaveMode(ctx context.Context, mode string) error
	CreateCustomTheme(ctx context.Context, theme models.Theme) (models.Theme, error)
	UpdateCustomTheme(ctx context.Context, id string, theme models.Theme) (models.Theme, error)
	DeleteCustomTheme(ctx context.Context, id string) error
}

// Store is safe for concurrent use.
type Store struct {
	api ThemeAPI

	mu            sync.Mutex
	activeThemeID string
	mode          string
	previewTheme  *models.Theme
	themes        []models.Theme
	isLoading     bool
	errMsg        string

	// themeSeq and modeSeq order background persists per field; a completion
	// whose sequence no longer matches is stale and its outcome is discarded.
	themeSeq uint64
	modeSeq  uint64
	pending  sync.WaitGroup
}

func New(api ThemeAPI) *Store {
	return &Store{
		api:           api,
		activeThemeID: models.DefaultThemeID,
		mode:          models.ModeLight,
	}
}

// Wait blocks until all background persists have completed.
func (s *Store) Wait() {
	s.pending.Wait()
}

// LoadThemeSettings fetches the theme list and the persisted selection. On
// failure the built-in catalog and the default selection keep the store
// usable offline.
func (s *Store) LoadThemeSettings(ctx context.Context) error {
	s.mu.Lock()
	s.isLoading = true
	s.errMsg = ""
	s.mu.Unlock()

	themes, themesErr := s.api.FetchThemes(ctx)
	settings, settingsErr := s.api.FetchSettings(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false

	if themesErr != nil {
		log.Warn().Err(themesErr).Msg("Falling back to built-in themes")
		themes = catalog.MustPredefined()
	}
	s.themes = themes

	if settingsErr != nil {
		settings = models.ActiveSelection{
			ThemeID: models.DefaultThemeID,
			Mode:    models.ModeLight,
		}
	}
	s.activeThemeID = settings.ThemeID
	s.mode = settings.Mode

	if themesErr != nil {
		s.errMsg = themesErr.Error()
		return themesErr
	}
	if settingsErr != nil {
		s.errMsg = settingsErr.Error()
		return settingsErr
	}
	return nil
}

// SetActiveTheme switches the active theme immediately, drops any preview,
// and persists the choice in the background.
func (s *Store) SetActiveTheme(themeID string) {
	s.mu.Lock()
	s.activeThemeID = themeID
	s.previewTheme = nil
	s.errMsg = ""
	s.themeSeq++
	seq := s.themeSeq
	s.mu.Unlock()

	s.persist(seq, &s.themeSeq, func(ctx context.Context) error {
		return s.api.SaveActiveTheme(ctx, themeID)
	})
}

// SetMode switches between light and dark immediately and persists in the
// background. Unknown modes are ignored.
func (s *Store) SetMode(mode string) {
	if !models.IsValidMode(mode) {
		return
	}

	s.mu.Lock()
	s.mode = mode
	s.errMsg = ""
	s.modeSeq++
	seq := s.modeSeq
	s.mu.Unlock()

	s.persist(seq, &s.modeSeq, func(ctx context.Context) error {
		return s.api.SaveMode(ctx, mode)
	})
}

func (s *Store) ToggleMode() {
	s.mu.Lock()
	next := models.ModeDark
	if s.mode == models.ModeDark {
		next = models.ModeLight
	}
	s.mu.Unlock()

	s.SetMode(next)
}

// SetPreviewTheme shows a theme without activating or persisting it.
func (s *Store) SetPreviewTheme(theme models.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := theme
	s.previewTheme = &copied
}

func (s *Store) ClearPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewTheme = nil
}

// SaveCustomTheme validates and persists a new custom theme, then adds it to
// the local list.
func (s *Store) SaveCustomTheme(ctx context.Context, theme models.Theme) (models.Theme, error) {
	if err := theme.CheckRequiredShape(); err != nil {
		return models.Theme{}, err
	}

	s.mu.Lock()
	for _, existing := range s.themes {
		if existing.ID == theme.ID {
			s.mu.Unlock()
			return models.Theme{}, fmt.Errorf("theme %q already exists", theme.ID)
		}
	}
	s.mu.Unlock()

	theme.IsCustom = true
	created, err := s.api.CreateCustomTheme(ctx, theme)
	if err != nil {
		s.setError(err)
		return models.Theme{}, err
	}

	s.mu.Lock()
	s.themes = append(s.themes, created)
	s.errMsg = ""
	s.mu.Unlock()
	return created, nil
}

// UpdateCustomTheme persists changes to an existing custom theme. The id is
// immutable; predefined themes cannot be updated.
func (s *Store) UpdateCustomTheme(ctx context.Context, id string, theme models.Theme) (models.Theme, error) {
	s.mu.Lock()
	existing, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return models.Theme{}, fmt.Errorf("theme %q not found", id)
	}
	if !existing.IsCustom {
		s.mu.Unlock()
		return models.Theme{}, fmt.Errorf("theme %q is predefined and cannot be modified", id)
	}
	s.mu.Unlock()

	theme.ID = id
	theme.IsCustom = true
	updated, err := s.api.UpdateCustomTheme(ctx, id, theme)
	if err != nil {
		s.setError(err)
		return models.Theme{}, err
	}

	s.mu.Lock()
	// Re-find by id: the list may have shifted while the lock was released.
	for i := range s.themes {
		if s.themes[i].ID == id {
			s.themes[i] = updated
			break
		}
	}
	s.errMsg = ""
	s.mu.Unlock()
	return updated, nil
}

// DeleteCustomTheme removes a custom theme. Deleting the active theme falls
// back to the default.
func (s *Store) DeleteCustomTheme(ctx context.Context, id string) error {
	s.mu.Lock()
	existing, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("theme %q not found", id)
	}
	if !existing.IsCustom {
		s.mu.Unlock()
		return fmt.Errorf("theme %q is predefined and cannot be deleted", id)
	}
	s.mu.Unlock()

	if err := s.api.DeleteCustomTheme(ctx, id); err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	// Re-find by id: the list may have shifted while the lock was released.
	for i := range s.themes {
		if s.themes[i].ID == id {
			s.themes = append(s.themes[:i:i], s.themes[i+1:]...)
			break
		}
	}
	wasActive := s.activeThemeID == id
	s.errMsg = ""
	s.mu.Unlock()

	if wasActive {
		s.SetActiveTheme(models.DefaultThemeID)
	}
	return nil
}

// CurrentTheme resolves the theme to render: preview wins over the active
// selection, and the first known theme stands in when the active id is gone.
func (s *Store) CurrentTheme() (models.Theme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.previewTheme != nil {
		return *s.previewTheme, true
	}
	for _, theme := range s.themes {
		if theme.ID == s.activeThemeID {
			return theme, true
		}
	}
	if len(s.themes) > 0 {
		return s.themes[0], true
	}
	return models.Theme{}, false
}

// CurrentThemeMode returns the palette variant for the current theme and mode.
func (s *Store) CurrentThemeMode() (models.ThemeMode, bool) {
	theme, ok := s.CurrentTheme()
	if !ok {
		return models.ThemeMode{}, false
	}
	return theme.ModeVariant(s.Mode()), true
}

func (s *Store) ThemeByID(id string) (models.Theme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// findLocked looks up a theme by id. Callers must hold s.mu.
func (s *Store) findLocked(id string) (models.Theme, bool) {
	for _, theme := range s.themes {
		if theme.ID == id {
			return theme, true
		}
	}
	return models.Theme{}, false
}

func (s *Store) ActiveThemeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeThemeID
}

func (s *Store) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Store) Themes() []models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Theme, len(s.themes))
	copy(out, s.themes)
	return out
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Store) persist(seq uint64, latest *uint64, fn func(context.Context) error) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		err := fn(context.Background())

		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != *latest {
			// A newer write of the same field superseded this one.
			return
		}
		if err != nil {
			log.Warn().Err(err).Msg("Failed to persist theme selection")
			s.errMsg = err.Error()
		}
	}()
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = err.Error()
}
