// internal/models/theme.go
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ModeLight = "light"
	ModeDark  = "dark"
)

// DefaultThemeID is the predefined theme every selection falls back to.
const DefaultThemeID = "minimal-white"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Palette is the fixed 11-color mapping defining a theme's visual identity
// for one mode. All keys must be present; partial palettes are invalid.
type Palette struct {
	Primary    string `json:"primary" validate:"required"`
	Secondary  string `json:"secondary" validate:"required"`
	Background string `json:"background" validate:"required"`
	Card       string `json:"card" validate:"required"`
	Border     string `json:"border" validate:"required"`
	Text       string `json:"text" validate:"required"`
	Muted      string `json:"muted" validate:"required"`
	Accent     string `json:"accent" validate:"required"`
	Success    string `json:"success" validate:"required"`
	Warning    string `json:"warning" validate:"required"`
	Error      string `json:"error" validate:"required"`
}

// ThemeMode is one color variant (light or dark) belonging to a Theme.
type ThemeMode struct {
	ID          string  `json:"id" validate:"required,oneof=light dark"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Palette     Palette `json:"palette" validate:"required"`
}

type Radius struct {
	Button string `json:"button" validate:"omitempty,oneof=none sm md lg xl full"`
	Card   string `json:"card" validate:"omitempty,oneof=none sm md lg xl full"`
	Input  string `json:"input" validate:"omitempty,oneof=none sm md lg xl full"`
	Image  string `json:"image" validate:"omitempty,oneof=none sm md lg xl full"`
	Badge  string `json:"badge" validate:"omitempty,oneof=none sm md lg xl full"`
}

type Spacing struct {
	Scale   string `json:"scale" validate:"omitempty,oneof=compact normal relaxed"`
	Padding string `json:"padding" validate:"omitempty,oneof=xs sm md lg xl"`
	Margin  string `json:"margin" validate:"omitempty,oneof=xs sm md lg xl"`
	Gap     string `json:"gap" validate:"omitempty,oneof=xs sm md lg xl"`
}

type FontFamily struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Mono      string `json:"mono"`
}

type FontSize struct {
	XS    string `json:"xs"`
	SM    string `json:"sm"`
	Base  string `json:"base"`
	LG    string `json:"lg"`
	XL    string `json:"xl"`
	XL2   string `json:"2xl"`
	XL3   string `json:"3xl"`
	XL4   string `json:"4xl"`
	XL5   string `json:"5xl"`
	XL6   string `json:"6xl"`
}

type FontWeight struct {
	Light     string `json:"light"`
	Normal    string `json:"normal"`
	Medium    string `json:"medium"`
	Semibold  string `json:"semibold"`
	Bold      string `json:"bold"`
	Extrabold string `json:"extrabold"`
}

type LineHeight struct {
	Tight   string `json:"tight"`
	Snug    string `json:"snug"`
	Normal  string `json:"normal"`
	Relaxed string `json:"relaxed"`
	Loose   string `json:"loose"`
}

type LetterSpacing struct {
	Tighter string `json:"tighter"`
	Tight   string `json:"tight"`
	Normal  string `json:"normal"`
	Wide    string `json:"wide"`
	Wider   string `json:"wider"`
	Widest  string `json:"widest"`
}

type Typography struct {
	FontFamily    FontFamily    `json:"fontFamily"`
	FontSize      FontSize      `json:"fontSize"`
	FontWeight    FontWeight    `json:"fontWeight"`
	LineHeight    LineHeight    `json:"lineHeight"`
	LetterSpacing LetterSpacing `json:"letterSpacing"`
}

type ButtonStyle struct {
	Size    string `json:"size" validate:"omitempty,oneof=xs sm md lg xl"`
	Variant string `json:"variant" validate:"omitempty,oneof=solid outline ghost link"`
}

type CardStyle struct {
	Padding string `json:"padding" validate:"omitempty,oneof=xs sm md lg xl"`
	Shadow  string `json:"shadow" validate:"omitempty,oneof=none sm md lg xl"`
}

type InputStyle struct {
	Size    string `json:"size" validate:"omitempty,oneof=xs sm md lg xl"`
	Variant string `json:"variant" validate:"omitempty,oneof=outline filled underline"`
}

type Components struct {
	Button ButtonStyle `json:"button"`
	Card   CardStyle   `json:"card"`
	Input  InputStyle  `json:"input"`
}

type Shadows struct {
	XS    string `json:"xs"`
	SM    string `json:"sm"`
	MD    string `json:"md"`
	LG    string `json:"lg"`
	XL    string `json:"xl"`
	XL2   string `json:"2xl"`
	Inner string `json:"inner"`
}

type Preview struct {
	ButtonStyle string `json:"buttonStyle"`
	CardStyle   string `json:"cardStyle"`
}

// Theme is one selectable visual identity: a light and a dark palette plus
// structured style tokens. Predefined themes (IsCustom false) are system-owned
// and immutable; custom themes are user-created and may be edited or deleted.
type Theme struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category" validate:"required,oneof=outdoor modern classic vibrant nature minimal"`
	IsCustom    bool       `json:"isCustom,omitempty"`
	LightMode   ThemeMode  `json:"lightMode" validate:"required"`
	DarkMode    ThemeMode  `json:"darkMode" validate:"required"`
	Radius      Radius     `json:"radius"`
	Spacing     Spacing    `json:"spacing"`
	Typography  Typography `json:"typography"`
	Components  Components `json:"components"`
	Shadows     Shadows    `json:"shadows"`
	Preview     Preview    `json:"preview"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	UpdatedAt   time.Time  `json:"updatedAt,omitzero"`
}

// ActiveSelection is the singleton record combining the active theme pointer
// with the active color mode. It backs the /themes/active, /themes/mode and
// /themes/settings routes.
type ActiveSelection struct {
	ThemeID   string    `json:"themeId"`
	Mode      string    `json:"mode"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func IsValidMode(mode string) bool {
	return mode == ModeLight || mode == ModeDark
}

// ModeVariant returns the ThemeMode matching mode. Anything other than
// "dark" selects the light variant.
func (t Theme) ModeVariant(mode string) ThemeMode {
	if mode == ModeDark {
		return t.DarkMode
	}
	return t.LightMode
}

// CheckRequiredShape reports whether the theme carries the minimum fields a
// create request must supply: id, name and both mode palettes.
func (t Theme) CheckRequiredShape() error {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("invalid theme structure")
	}
	if t.LightMode.Palette == (Palette{}) || t.DarkMode.Palette == (Palette{}) {
		return fmt.Errorf("invalid theme structure")
	}
	return nil
}

// Validate checks the full schema: required identity fields, closed category
// and mode enums, complete palettes and token keyword scales.
func (t Theme) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid theme: field %s failed %q validation", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid theme: %w", err)
	}
	return nil
}

// ApplyTokenDefaults fills any zero-valued token groups, mode identifiers and
// the category with the stock values every predefined theme ships with.
// It mirrors how the persistence schema defaults absent token fields.
func (t *Theme) ApplyTokenDefaults() {
	if t.Category == "" {
		t.Category = "minimal"
	}
	if t.LightMode.ID == "" {
		t.LightMode.ID = ModeLight
	}
	if t.DarkMode.ID == "" {
		t.DarkMode.ID = ModeDark
	}
	if t.Radius == (Radius{}) {
		t.Radius = DefaultRadius()
	}
	if t.Spacing == (Spacing{}) {
		t.Spacing = DefaultSpacing()
	}
	if t.Typography == (Typography{}) {
		t.Typography = DefaultTypography()
	}
	if t.Components == (Components{}) {
		t.Components = DefaultComponents()
	}
	if t.Shadows == (Shadows{}) {
		t.Shadows = DefaultShadows()
	}
	if t.Preview == (Preview{}) {
		t.Preview = DefaultPreview()
	}
}

func DefaultRadius() Radius {
	return Radius{Button: "md", Card: "lg", Input: "md", Image: "md", Badge: "full"}
}

func DefaultSpacing() Spacing {
	return Spacing{Scale: "normal", Padding: "md", Margin: "md", Gap: "md"}
}

func DefaultTypography() Typography {
	return Typography{
		FontFamily: FontFamily{
			Primary:   "Inter, system-ui, sans-serif",
			Secondary: "Inter, system-ui, sans-serif",
			Mono:      "JetBrains Mono, Consolas, monospace",
		},
		FontSize: FontSize{
			XS: "0.75rem", SM: "0.875rem", Base: "1rem", LG: "1.125rem", XL: "1.25rem",
			XL2: "1.5rem", XL3: "1.875rem", XL4: "2.25rem", XL5: "3rem", XL6: "3.75rem",
		},
		FontWeight: FontWeight{
			Light: "300", Normal: "400", Medium: "500",
			Semibold: "600", Bold: "700", Extrabold: "800",
		},
		LineHeight: LineHeight{
			Tight: "1.25", Snug: "1.375", Normal: "1.5", Relaxed: "1.625", Loose: "2",
		},
		LetterSpacing: LetterSpacing{
			Tighter: "-0.05em", Tight: "-0.025em", Normal: "0em",
			Wide: "0.025em", Wider: "0.05em", Widest: "0.1em",
		},
	}
}

func DefaultComponents() Components {
	return Components{
		Button: ButtonStyle{Size: "md", Variant: "solid"},
		Card:   CardStyle{Padding: "md", Shadow: "sm"},
		Input:  InputStyle{Size: "md", Variant: "outline"},
	}
}

func DefaultShadows() Shadows {
	return Shadows{
		XS:    "0 1px 2px 0 rgb(0 0 0 / 0.05)",
		SM:    "0 1px 3px 0 rgb(0 0 0 / 0.1), 0 1px 2px -1px rgb(0 0 0 / 0.1)",
		MD:    "0 4px 6px -1px rgb(0 0 0 / 0.1), 0 2px 4px -2px rgb(0 0 0 / 0.1)",
		LG:    "0 10px 15px -3px rgb(0 0 0 / 0.1), 0 4px 6px -4px rgb(0 0 0 / 0.1)",
		XL:    "0 20px 25px -5px rgb(0 0 0 / 0.1), 0 8px 10px -6px rgb(0 0 0 / 0.1)",
		XL2:   "0 25px 50px -12px rgb(0 0 0 / 0.25)",
		Inner: "inset 0 2px 4px 0 rgb(0 0 0 / 0.05)",
	}
}

func DefaultPreview() Preview {
	return Preview{
		ButtonStyle: "bg-slate-800 text-white hover:bg-slate-700",
		CardStyle:   "bg-gray-50 border-gray-200",
	}
}
