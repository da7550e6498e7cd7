// Package view turns engine snapshots into drawable scenes and overlays,
// and renders them as PNG images or terminal cells.
package view

import (
	"image/color"

	"snake-arena/internal/game"
)

const (
	TrailModelID = 29311
	FoodModelID  = 2317
)

// DefaultFoodColor is used for shared food and for the single food of a solo view
var DefaultFoodColor = color.RGBA{R: 186, G: 16, B: 225, A: 255}

// ObjectKind classifies scene objects
type ObjectKind string

const (
	KindWall  ObjectKind = "wall"
	KindTile  ObjectKind = "tile"
	KindFood  ObjectKind = "food"
	KindTrail ObjectKind = "trail"
)

// Object is one placed model in the host world
type Object struct {
	Kind    ObjectKind      `json:"kind"`
	Point   game.WorldPoint `json:"point"`
	ModelID int             `json:"modelId"`
	Color   string          `json:"color,omitempty"`
	RGBA    color.RGBA      `json:"-"`
	Owner   string          `json:"owner,omitempty"`
}

// Actor is a participant's body as drawn on the grid
type Actor struct {
	Name         string          `json:"name"`
	Color        string          `json:"color"`
	RGBA         color.RGBA      `json:"-"`
	Location     game.WorldPoint `json:"location"`
	Alive        bool            `json:"alive"`
	Active       bool            `json:"active"`
	OverheadText string          `json:"overheadText,omitempty"`
}

// Scene is everything a renderer needs for one frame
type Scene struct {
	Phase  game.Phase      `json:"phase"`
	Theme  string          `json:"theme"`
	Corner game.WorldPoint `json:"corner"`
	Size   int             `json:"size"`
	// Walkable is indexed [x][y] over interior cells
	Walkable [][]bool `json:"walkable,omitempty"`
	Walls    []Object `json:"walls"`
	Tiles    []Object `json:"tiles"`
	Food     []Object `json:"food"`
	Trails   []Object `json:"trails"`
	Actors   []Actor  `json:"actors"`
}

// HasArena reports whether a game is set up
func (s Scene) HasArena() bool {
	return s.Size > 0
}

// BuildScene lays out walls, floor tiles, food and trails for a snapshot
func BuildScene(snap *game.Snapshot, theme Theme, showAllFood bool) Scene {
	scene := Scene{
		Phase: snap.Phase,
		Theme: theme.Name,
	}
	if snap.Arena == nil {
		return scene
	}

	scene.Corner = snap.Arena.Corner
	scene.Size = snap.Arena.Size
	scene.Walkable = snap.Arena.Walkable

	if theme.HasWalls() {
		scene.Walls = wallObjects(scene.Corner, scene.Size, theme.WallModelID)
	}
	if theme.HasTiles() {
		scene.Tiles = tileObjects(snap.Arena, theme)
	}
	scene.Food = foodObjects(snap, showAllFood)

	for _, p := range snap.Participants {
		scene.Actors = append(scene.Actors, Actor{
			Name:         p.Name,
			Color:        p.Color,
			RGBA:         p.RGBA,
			Location:     p.Location,
			Alive:        p.Alive,
			Active:       p.Active,
			OverheadText: p.OverheadText,
		})
		if !p.Alive {
			continue
		}
		for _, pt := range p.Trail {
			scene.Trails = append(scene.Trails, Object{
				Kind:    KindTrail,
				Point:   pt,
				ModelID: TrailModelID,
				Color:   p.Color,
				RGBA:    p.RGBA,
				Owner:   p.Name,
			})
		}
	}
	return scene
}

// wallObjects rings the arena: two rows of size+2 and two columns of size
func wallObjects(corner game.WorldPoint, size, model int) []Object {
	walls := make([]Object, 0, 4*size+4)
	add := func(p game.WorldPoint) {
		walls = append(walls, Object{Kind: KindWall, Point: p, ModelID: model})
	}
	for x := 0; x < size+2; x++ {
		add(corner.Dx(x))
	}
	for x := 0; x < size+2; x++ {
		add(corner.Dx(x).Dy(-size - 1))
	}
	for y := 0; y < size; y++ {
		add(corner.Dy(-y - 1))
	}
	for y := 0; y < size; y++ {
		add(corner.Dx(size + 1).Dy(-y - 1))
	}
	return walls
}

// tileObjects lays a checkerboard over walkable cells
func tileObjects(arena *game.ArenaSnapshot, theme Theme) []Object {
	var tiles []Object
	for x := 0; x < arena.Size; x++ {
		for y := 0; y < arena.Size; y++ {
			if !arena.Walkable[x][y] {
				continue
			}
			model := theme.TileModel1
			if (x+y)%2 != 0 {
				model = theme.TileModel2
			}
			tiles = append(tiles, Object{
				Kind:    KindTile,
				Point:   game.CellPoint(arena.Corner, x, y),
				ModelID: model,
			})
		}
	}
	return tiles
}

// foodObjects shows one shared food, only the observer's food, or every
// participant's food in their own colour.
func foodObjects(snap *game.Snapshot, showAll bool) []Object {
	if len(snap.Participants) == 0 {
		return nil
	}

	food := func(p game.ParticipantSnapshot, c color.RGBA) Object {
		return Object{
			Kind:    KindFood,
			Point:   *p.Food,
			ModelID: FoodModelID,
			Color:   game.HexColor(c),
			RGBA:    c,
			Owner:   p.Name,
		}
	}

	if snap.SameFoodSpawn {
		first := snap.Participants[0]
		if first.Food == nil {
			return nil
		}
		shared := food(first, DefaultFoodColor)
		shared.Owner = ""
		return []Object{shared}
	}

	if !showAll || len(snap.Participants) == 1 {
		me, ok := snap.ActiveParticipant()
		if !ok || me.Food == nil {
			return nil
		}
		return []Object{food(me, DefaultFoodColor)}
	}

	var out []Object
	for _, p := range snap.Participants {
		if p.Food != nil {
			out = append(out, food(p, p.RGBA))
		}
	}
	return out
}
