package game

import "testing"

func TestWallStartPoint(t *testing.T) {
	tests := []struct {
		name string
		size int
		want WorldPoint
	}{
		{"size 1", 1, WorldPoint{X: 99, Y: 101}},
		{"size 2", 2, WorldPoint{X: 99, Y: 101}},
		{"size 3", 3, WorldPoint{X: 98, Y: 102}},
		{"size 5", 5, WorldPoint{X: 97, Y: 103}},
		{"size 10", 10, WorldPoint{X: 95, Y: 105}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WallStartPoint(WorldPoint{X: 100, Y: 100}, tt.size)
			if got != tt.want {
				t.Errorf("WallStartPoint(size=%d) = %+v, want %+v", tt.size, got, tt.want)
			}
		})
	}
}

// TestInArenaMatchesCells sweeps every tile around a fixed corner and checks
// the boundary test accepts exactly the tiles that interior cells map to.
func TestInArenaMatchesCells(t *testing.T) {
	for _, size := range []int{1, 2, 3, 7} {
		corner := WorldPoint{X: 10, Y: 20}

		cells := make(map[WorldPoint]bool)
		for x := 0; x < size; x++ {
			for y := 0; y < size; y++ {
				cells[CellPoint(corner, x, y)] = true
			}
		}

		for x := corner.X - 3; x <= corner.X+size+3; x++ {
			for y := corner.Y - size - 3; y <= corner.Y+3; y++ {
				p := WorldPoint{X: x, Y: y}
				if got := InArena(corner, size, p); got != cells[p] {
					t.Errorf("size %d: InArena(%+v) = %v, want %v", size, p, got, cells[p])
				}
			}
		}
	}
}

func TestWallStartPointCentresArena(t *testing.T) {
	start := WorldPoint{X: 3200, Y: 3200}
	for size := 1; size <= 9; size++ {
		corner := WallStartPoint(start, size)
		if !InArena(corner, size, start) {
			t.Errorf("size %d: starting tile %+v not inside arena at %+v", size, start, corner)
		}
	}
}

func TestWalkableMatrix(t *testing.T) {
	w := newFakeWorld("me")
	gridStart := WorldPoint{X: 50, Y: 50}
	w.flags[gridStart.Dx(1)] = 0x100     // cell (1, 0)
	w.flags[gridStart.Dx(2).Dy(-2)] = 0x2 // cell (2, 2)

	m := WalkableMatrix(3, gridStart, w)

	if len(m) != 3 || len(m[0]) != 3 {
		t.Fatalf("Expected 3x3 matrix, got %dx%d", len(m), len(m[0]))
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			blocked := (x == 1 && y == 0) || (x == 2 && y == 2)
			if m[x][y] == blocked {
				t.Errorf("cell (%d, %d): walkable=%v, blocked=%v", x, y, m[x][y], blocked)
			}
		}
	}
}

func TestDistanceTo(t *testing.T) {
	a := WorldPoint{X: 0, Y: 0}
	tests := []struct {
		to   WorldPoint
		want int
	}{
		{WorldPoint{X: 0, Y: 0}, 0},
		{WorldPoint{X: 1, Y: 1}, 1},
		{WorldPoint{X: -1, Y: 0}, 1},
		{WorldPoint{X: 2, Y: 1}, 2},
		{WorldPoint{X: 0, Y: -3}, 3},
	}
	for _, tt := range tests {
		if got := a.DistanceTo(tt.to); got != tt.want {
			t.Errorf("DistanceTo(%+v) = %d, want %d", tt.to, got, tt.want)
		}
	}

	if got := a.DistanceTo(WorldPoint{Plane: 1}); got <= 1 {
		t.Errorf("Different planes should be far apart, got %d", got)
	}
}
