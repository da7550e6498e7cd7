package view

import "strings"

// NoModel marks a theme slot that draws nothing
const NoModel = -1

// Theme picks the host models used to dress the arena
type Theme struct {
	Name        string `json:"name"`
	WallModelID int    `json:"wallModelId"`
	TileModel1  int    `json:"tileModel1"`
	TileModel2  int    `json:"tileModel2"`
}

var (
	ThemeOriginal = Theme{Name: "ORIGINAL", WallModelID: 32693, TileModel1: NoModel, TileModel2: NoModel}
	ThemeTOA      = Theme{Name: "TOA", WallModelID: NoModel, TileModel1: 45510, TileModel2: 45432}
)

// ThemeByName looks a theme up case-insensitively, falling back to ORIGINAL
func ThemeByName(name string) Theme {
	switch strings.ToUpper(name) {
	case ThemeTOA.Name:
		return ThemeTOA
	default:
		return ThemeOriginal
	}
}

// HasWalls reports whether wall objects are drawn
func (t Theme) HasWalls() bool {
	return t.WallModelID != NoModel
}

// HasTiles reports whether checkerboard floor tiles are drawn
func (t Theme) HasTiles() bool {
	return t.TileModel1 != NoModel && t.TileModel2 != NoModel
}
