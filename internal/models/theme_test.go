package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func testPalette(primary string) Palette {
	return Palette{
		Primary:    primary,
		Secondary:  "#64748b",
		Background: "#ffffff",
		Card:       "#f8fafc",
		Border:     "#e2e8f0",
		Text:       "#0f172a",
		Muted:      "#94a3b8",
		Accent:     "#3b82f6",
		Success:    "#22c55e",
		Warning:    "#f59e0b",
		Error:      "#ef4444",
	}
}

func testTheme(id string) Theme {
	theme := Theme{
		ID:          id,
		Name:        "Test Theme",
		Description: "A theme used in tests",
		Category:    "minimal",
		LightMode: ThemeMode{
			ID:      ModeLight,
			Name:    "Light",
			Palette: testPalette("#1e293b"),
		},
		DarkMode: ThemeMode{
			ID:      ModeDark,
			Name:    "Dark",
			Palette: testPalette("#f1f5f9"),
		},
	}
	theme.ApplyTokenDefaults()
	return theme
}

func TestThemeValidate(t *testing.T) {
	if err := testTheme("test-theme").Validate(); err != nil {
		t.Fatalf("expected valid theme, got %v", err)
	}
}

func TestThemeValidateRejectsMissingIdentity(t *testing.T) {
	theme := testTheme("test-theme")
	theme.Name = ""
	err := theme.Validate()
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !strings.Contains(err.Error(), "Name") {
		t.Errorf("error should name the failing field, got %q", err)
	}
}

func TestThemeValidateRejectsBadCategory(t *testing.T) {
	theme := testTheme("test-theme")
	theme.Category = "futuristic"
	if err := theme.Validate(); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestThemeValidateRejectsBadModeID(t *testing.T) {
	theme := testTheme("test-theme")
	theme.LightMode.ID = "dim"
	if err := theme.Validate(); err == nil {
		t.Fatal("expected error for unknown mode id")
	}
}

func TestThemeValidateRejectsPartialPalette(t *testing.T) {
	theme := testTheme("test-theme")
	theme.DarkMode.Palette.Warning = ""
	if err := theme.Validate(); err == nil {
		t.Fatal("expected error for partial palette")
	}
}

func TestThemeValidateRejectsBadTokenKeyword(t *testing.T) {
	theme := testTheme("test-theme")
	theme.Radius.Button = "huge"
	if err := theme.Validate(); err == nil {
		t.Fatal("expected error for unknown radius keyword")
	}
}

func TestCheckRequiredShape(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Theme)
		wantErr bool
	}{
		{"complete", func(th *Theme) {}, false},
		{"missing id", func(th *Theme) { th.ID = "" }, true},
		{"blank name", func(th *Theme) { th.Name = "   " }, true},
		{"empty light palette", func(th *Theme) { th.LightMode.Palette = Palette{} }, true},
		{"empty dark palette", func(th *Theme) { th.DarkMode.Palette = Palette{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := testTheme("shape-check")
			tt.mutate(&theme)
			err := theme.CheckRequiredShape()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplyTokenDefaults(t *testing.T) {
	theme := Theme{
		ID:        "bare",
		Name:      "Bare",
		LightMode: ThemeMode{Palette: testPalette("#111111")},
		DarkMode:  ThemeMode{Palette: testPalette("#eeeeee")},
	}
	theme.ApplyTokenDefaults()

	if theme.Category != "minimal" {
		t.Errorf("category = %q, want minimal", theme.Category)
	}
	if theme.LightMode.ID != ModeLight || theme.DarkMode.ID != ModeDark {
		t.Errorf("mode ids = %q/%q", theme.LightMode.ID, theme.DarkMode.ID)
	}
	if theme.Radius != DefaultRadius() {
		t.Errorf("radius not defaulted: %+v", theme.Radius)
	}
	if theme.Typography != DefaultTypography() {
		t.Error("typography not defaulted")
	}
	if theme.Shadows != DefaultShadows() {
		t.Error("shadows not defaulted")
	}
	if err := theme.Validate(); err != nil {
		t.Fatalf("defaulted theme should validate: %v", err)
	}
}

func TestApplyTokenDefaultsKeepsExplicitValues(t *testing.T) {
	theme := testTheme("explicit")
	theme.Category = "outdoor"
	theme.Radius = Radius{Button: "none", Card: "none", Input: "none", Image: "none", Badge: "none"}
	theme.ApplyTokenDefaults()

	if theme.Category != "outdoor" {
		t.Errorf("category overwritten: %q", theme.Category)
	}
	if theme.Radius.Button != "none" {
		t.Errorf("radius overwritten: %+v", theme.Radius)
	}
}

func TestThemeJSONRoundTrip(t *testing.T) {
	original := testTheme("round-trip")

	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Token groups use the documented wire keys.
	for _, key := range []string{`"lightMode"`, `"darkMode"`, `"fontSize"`, `"2xl"`, `"letterSpacing"`, `"buttonStyle"`} {
		if !strings.Contains(string(encoded), key) {
			t.Errorf("encoded theme missing key %s", key)
		}
	}
	// Zero timestamps and a false isCustom stay off the wire.
	for _, key := range []string{`"createdAt"`, `"updatedAt"`, `"isCustom"`} {
		if strings.Contains(string(encoded), key) {
			t.Errorf("encoded theme should omit %s", key)
		}
	}

	var decoded Theme
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestModeVariant(t *testing.T) {
	theme := testTheme("variant")

	if got := theme.ModeVariant(ModeDark); got.ID != ModeDark {
		t.Errorf("ModeVariant(dark) = %q", got.ID)
	}
	if got := theme.ModeVariant(ModeLight); got.ID != ModeLight {
		t.Errorf("ModeVariant(light) = %q", got.ID)
	}
	// Unknown modes fall back to light.
	if got := theme.ModeVariant("sepia"); got.ID != ModeLight {
		t.Errorf("ModeVariant(sepia) = %q", got.ID)
	}
}

func TestIsValidMode(t *testing.T) {
	if !IsValidMode(ModeLight) || !IsValidMode(ModeDark) {
		t.Error("light and dark must be valid")
	}
	for _, mode := range []string{"", "LIGHT", "auto", "sepia"} {
		if IsValidMode(mode) {
			t.Errorf("IsValidMode(%q) = true", mode)
		}
	}
}
