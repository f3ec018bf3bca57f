// internal/seed/seed.go
package seed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tentlabs/tentshop/internal/catalog"
	"github.com/tentlabs/tentshop/internal/db"
	"github.com/tentlabs/tentshop/internal/models"
)

// Result reports the outcome of seeding the predefined catalog.
type Result struct {
	InsertedThemes        int `json:"insertedThemes"`
	TotalPredefinedThemes int `json:"totalPredefinedThemes"`
}

// Run writes the predefined catalog into the store without touching custom
// themes. Existing predefined records are cleared first so a prior catalog
// version cannot leave stale entries behind. Inserts skip ids that already
// exist instead of aborting, so re-running is safe; the reported count is the
// number of predefined records actually present afterwards. Run also
// guarantees the active-selection singleton exists.
func Run(ctx context.Context, queries *db.Queries) (Result, error) {
	themes, err := catalog.Predefined()
	if err != nil {
		return Result{}, fmt.Errorf("load predefined catalog: %w", err)
	}

	cleared, err := queries.DeletePredefinedThemes(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("clear predefined themes: %w", err)
	}
	if cleared > 0 {
		log.Ctx(ctx).Debug().Int64("cleared", cleared).Msg("Removed stale predefined themes")
	}

	inserted := 0
	skipped := 0
	for _, theme := range themes {
		theme.IsCustom = false
		ok, err := queries.InsertThemeIfAbsent(ctx, theme)
		if err != nil {
			return Result{}, fmt.Errorf("seed theme %q: %w", theme.ID, err)
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}
	if skipped > 0 {
		// A custom theme squatting on a predefined id, or a concurrent seed.
		// Report the true count of predefined records present.
		log.Ctx(ctx).Warn().Int("skipped", skipped).Msg("Some themes already exist, skipping duplicates")
		present, err := queries.CountPredefinedThemes(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("count predefined themes: %w", err)
		}
		inserted = int(present)
	}

	if _, err := queries.EnsureActiveSelection(ctx, models.DefaultThemeID, models.ModeLight); err != nil {
		return Result{}, fmt.Errorf("ensure active selection: %w", err)
	}

	return Result{
		InsertedThemes:        inserted,
		TotalPredefinedThemes: len(themes),
	}, nil
}

// KeptTheme identifies the surviving record of a duplicate group.
type KeptTheme struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsCustom  bool      `json:"isCustom"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupResult is the per-id entry of a cleanup report.
type GroupResult struct {
	ThemeID           string    `json:"themeId"`
	DuplicatesFound   int       `json:"duplicatesFound"`
	DuplicatesRemoved int       `json:"duplicatesRemoved"`
	KeptTheme         KeptTheme `json:"keptTheme"`
}

// Report summarizes one cleanup pass.
type Report struct {
	TotalDuplicatesRemoved int           `json:"totalDuplicatesRemoved"`
	ProcessedThemes        int           `json:"processedThemes"`
	Details                []GroupResult `json:"details"`
}

// Cleanup scans all theme records, groups them by theme id and deletes every
// record of a duplicate group except a deterministic survivor: the
// most-recently-updated custom record when any custom copy exists, otherwise
// the earliest-created predefined record. Each group is resolved in its own
// transaction, so a failed pass leaves prior groups repaired and is safe to
// re-run.
func Cleanup(ctx context.Context, database *db.DB) (Report, error) {
	records, err := database.Queries.ListThemeRecords(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list theme records: %w", err)
	}

	groups := make(map[string][]db.ThemeRecord)
	order := make([]string, 0)
	for _, rec := range records {
		if _, seen := groups[rec.ThemeID]; !seen {
			order = append(order, rec.ThemeID)
		}
		groups[rec.ThemeID] = append(groups[rec.ThemeID], rec)
	}

	report := Report{Details: []GroupResult{}}
	for _, themeID := range order {
		group := groups[themeID]
		if len(group) < 2 {
			continue
		}

		survivor, doomed := electSurvivor(group)

		err := database.RunInTx(ctx, func(tx *db.DB) error {
			for _, rec := range doomed {
				if err := tx.Queries.DeleteThemeRecord(ctx, rec.DocID); err != nil {
					return fmt.Errorf("delete duplicate record %d: %w", rec.DocID, err)
				}
			}
			return nil
		})
		if err != nil {
			// Prior groups are already repaired; the caller may re-run.
			return report, fmt.Errorf("cleanup theme %q: %w", themeID, err)
		}

		report.TotalDuplicatesRemoved += len(doomed)
		report.ProcessedThemes++
		report.Details = append(report.Details, GroupResult{
			ThemeID:           themeID,
			DuplicatesFound:   len(group),
			DuplicatesRemoved: len(doomed),
			KeptTheme: KeptTheme{
				ID:        survivor.ThemeID,
				Name:      survivor.Theme.Name,
				IsCustom:  survivor.IsCustom,
				CreatedAt: survivor.CreatedAt,
			},
		})

		log.Ctx(ctx).Info().
			Str("theme_id", themeID).
			Int("duplicates_removed", len(doomed)).
			Int64("kept_doc_id", survivor.DocID).
			Msg("Resolved duplicate theme records")
	}

	return report, nil
}

// electSurvivor picks the record to keep from a duplicate group. With custom
// copies present the most recently updated custom record wins (doc_id breaks
// exact updated_at ties); otherwise the earliest-created predefined record
// wins (doc_id breaks equal created_at). The choice does not depend on the
// incoming scan order.
func electSurvivor(group []db.ThemeRecord) (survivor db.ThemeRecord, doomed []db.ThemeRecord) {
	custom := make([]db.ThemeRecord, 0, len(group))
	predefined := make([]db.ThemeRecord, 0, len(group))
	for _, rec := range group {
		if rec.IsCustom {
			custom = append(custom, rec)
		} else {
			predefined = append(predefined, rec)
		}
	}

	if len(custom) > 0 {
		sort.SliceStable(custom, func(i, j int) bool {
			if !custom[i].UpdatedAt.Equal(custom[j].UpdatedAt) {
				return custom[i].UpdatedAt.After(custom[j].UpdatedAt)
			}
			return custom[i].DocID > custom[j].DocID
		})
		survivor = custom[0]
		doomed = append(doomed, custom[1:]...)
		doomed = append(doomed, predefined...)
		return survivor, doomed
	}

	sort.SliceStable(predefined, func(i, j int) bool {
		if !predefined[i].CreatedAt.Equal(predefined[j].CreatedAt) {
			return predefined[i].CreatedAt.Before(predefined[j].CreatedAt)
		}
		return predefined[i].DocID < predefined[j].DocID
	})
	survivor = predefined[0]
	doomed = predefined[1:]
	return survivor, doomed
}
