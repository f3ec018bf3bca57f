// internal/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tentlabs/tentshop/assets"
	"github.com/tentlabs/tentshop/internal/models"
)

// Category is one entry of the storefront's theme filter, including the "all"
// pseudo-category whose count is the catalog total.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var categoryNames = []struct{ id, name string }{
	{"outdoor", "Outdoor"},
	{"modern", "Modern"},
	{"classic", "Classic"},
	{"vibrant", "Vibrant"},
	{"nature", "Nature"},
	{"minimal", "Minimal"},
}

var (
	parseOnce sync.Once
	parsed    []models.Theme
	parseErr  error
)

// Predefined returns the canonical ordered list of predefined themes from the
// embedded catalog file. The order is stable across calls. Entries carry the
// stock token groups; IsCustom is always false.
func Predefined() ([]models.Theme, error) {
	parseOnce.Do(func() {
		parsed, parseErr = parseThemesFile()
	})
	if parseErr != nil {
		return nil, parseErr
	}
	out := make([]models.Theme, len(parsed))
	copy(out, parsed)
	return out, nil
}

// MustPredefined is Predefined for callers that treat a broken embedded
// catalog as a programming error.
func MustPredefined() []models.Theme {
	themes, err := Predefined()
	if err != nil {
		panic(err)
	}
	return themes
}

// FindPredefined looks up a catalog entry by id.
func FindPredefined(id string) (models.Theme, bool) {
	themes, err := Predefined()
	if err != nil {
		return models.Theme{}, false
	}
	for _, theme := range themes {
		if theme.ID == id {
			return theme, true
		}
	}
	return models.Theme{}, false
}

// Categories groups Predefined by category and prepends the "all"
// pseudo-category counting the whole catalog.
func Categories() ([]Category, error) {
	themes, err := Predefined()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(categoryNames))
	for _, theme := range themes {
		counts[theme.Category]++
	}

	categories := make([]Category, 0, len(categoryNames)+1)
	categories = append(categories, Category{ID: "all", Name: "All Themes", Count: len(themes)})
	for _, c := range categoryNames {
		categories = append(categories, Category{ID: c.id, Name: c.name, Count: counts[c.id]})
	}
	return categories, nil
}

// parseThemesFile reads the embedded catalog, applies the stock token groups
// to every entry and validates the full schema of each.
func parseThemesFile() ([]models.Theme, error) {
	data, err := assets.ThemesFS.ReadFile(assets.ThemesPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded themes file: %w", err)
	}

	var themes []models.Theme
	if err := json.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("parse themes file: %w", err)
	}
	if len(themes) == 0 {
		return nil, fmt.Errorf("themes file contains no themes")
	}

	seen := make(map[string]struct{}, len(themes))
	for i := range themes {
		themes[i].IsCustom = false
		themes[i].ApplyTokenDefaults()

		if _, dup := seen[themes[i].ID]; dup {
			return nil, fmt.Errorf("duplicate predefined theme id %q", themes[i].ID)
		}
		seen[themes[i].ID] = struct{}{}

		if err := themes[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid predefined theme %q: %w", themes[i].ID, err)
		}
	}
	return themes, nil
}
