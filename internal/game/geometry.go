package game

import "math"

// WorldPoint is a tile coordinate in the host world
type WorldPoint struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Plane int `json:"plane"`
}

// Dx returns the point shifted along the x axis
func (p WorldPoint) Dx(dx int) WorldPoint {
	return WorldPoint{X: p.X + dx, Y: p.Y, Plane: p.Plane}
}

// Dy returns the point shifted along the y axis
func (p WorldPoint) Dy(dy int) WorldPoint {
	return WorldPoint{X: p.X, Y: p.Y + dy, Plane: p.Plane}
}

// DistanceTo returns the Chebyshev distance in tiles.
// Points on different planes are infinitely far apart.
func (p WorldPoint) DistanceTo(o WorldPoint) int {
	if p.Plane != o.Plane {
		return math.MaxInt32
	}
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

// TerrainSource exposes static collision flags of the host world
type TerrainSource interface {
	// TileFlags returns the collision flags of a tile, 0 meaning nothing blocks it
	TileFlags(p WorldPoint) int
}

// WallStartPoint returns the top-left wall corner of an arena of the given size
// centred on position. The offset is ceil(size/2) on both axes.
func WallStartPoint(position WorldPoint, size int) WorldPoint {
	offset := (size + 1) / 2
	return position.Dx(-offset).Dy(offset)
}

// CellPoint maps interior cell (x, y) to its world tile
func CellPoint(corner WorldPoint, x, y int) WorldPoint {
	return corner.Dx(x + 1).Dy(-(y + 1))
}

// InArena reports whether p lies inside the interior of the arena.
// x is exclusive-low/inclusive-high, y is inclusive-low/exclusive-high,
// matching the one-tile wall ring around the corner.
func InArena(corner WorldPoint, size int, p WorldPoint) bool {
	return p.X > corner.X &&
		p.X <= corner.X+size &&
		p.Y < corner.Y &&
		p.Y >= corner.Y-size
}

// WalkableMatrix samples the terrain once for every interior cell.
// gridStart is the world tile of cell (0, 0); cell (x, y) is gridStart.Dx(x).Dy(-y).
func WalkableMatrix(size int, gridStart WorldPoint, terrain TerrainSource) [][]bool {
	walkable := make([][]bool, size)
	for x := 0; x < size; x++ {
		walkable[x] = make([]bool, size)
		for y := 0; y < size; y++ {
			walkable[x][y] = terrain.TileFlags(gridStart.Dx(x).Dy(-y)) == 0
		}
	}
	return walkable
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
