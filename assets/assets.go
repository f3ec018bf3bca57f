// assets/assets.go
package assets

import "embed"

//go:embed themes.json
var ThemesFS embed.FS

const ThemesPath = "themes.json"
