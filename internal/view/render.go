package view

import (
	"image"
	"image/color"
	"io"
	"os"

	"github.com/fogleman/gg"

	"snake-arena/internal/game"
)

const (
	panelWidth   = 220.0
	panelPadding = 12.0
	lineHeight   = 18.0
)

var (
	backgroundColor = color.RGBA{12, 12, 28, 255}
	wallColor       = color.RGBA{110, 110, 120, 255}
	blockedColor    = color.RGBA{40, 40, 48, 255}
	floorColors     = [2]color.RGBA{{30, 30, 45, 255}, {36, 36, 54, 255}}
	sandColors      = [2]color.RGBA{{196, 164, 110, 255}, {176, 146, 96, 255}}
	panelColor      = color.RGBA{18, 18, 24, 245}
	titleColor      = color.RGBA{0, 255, 0, 255}
	textColor       = color.RGBA{255, 255, 255, 255}
)

// Renderer draws scenes with gg
type Renderer struct {
	CellPixels int
	// FontPath is an optional TrueType font; the built-in face is used otherwise
	FontPath string
}

// NewRenderer returns a renderer using the first system font it can find
func NewRenderer(cellPixels int) Renderer {
	if cellPixels <= 0 {
		cellPixels = 24
	}
	return Renderer{CellPixels: cellPixels, FontPath: findFont()}
}

// Render draws the scene and the overlay panel
func (r Renderer) Render(scene Scene, overlay Overlay) image.Image {
	return r.draw(scene, overlay).Image()
}

// WritePNG renders and encodes the result as PNG
func (r Renderer) WritePNG(w io.Writer, scene Scene, overlay Overlay) error {
	return r.draw(scene, overlay).EncodePNG(w)
}

func (r Renderer) draw(scene Scene, overlay Overlay) *gg.Context {
	cells := 0
	if scene.HasArena() {
		cells = scene.Size + 2
	}
	px := float64(r.CellPixels)
	gridSize := float64(cells) * px
	height := gridSize
	if minHeight := panelPadding*2 + lineHeight*float64(len(overlay.Lines)+1); height < minHeight {
		height = minHeight
	}

	dc := gg.NewContext(int(gridSize+panelWidth), int(height))
	if r.FontPath != "" {
		_ = dc.LoadFontFace(r.FontPath, 13)
	}

	dc.SetColor(backgroundColor)
	dc.Clear()

	if scene.HasArena() {
		r.drawArena(dc, scene)
	}
	drawPanel(dc, overlay, gridSize, height)

	return dc
}

// cellOf maps a world point to grid column and row, wall ring included
func cellOf(scene Scene, p game.WorldPoint) (int, int) {
	return p.X - scene.Corner.X, scene.Corner.Y - p.Y
}

func (r Renderer) drawArena(dc *gg.Context, scene Scene) {
	px := float64(r.CellPixels)
	n := scene.Size

	fill := func(col, row int, c color.Color) {
		dc.SetColor(c)
		dc.DrawRectangle(float64(col)*px, float64(row)*px, px, px)
		dc.Fill()
	}

	// border ring is always drawn so arenas without wall models stay readable
	for i := 0; i < n+2; i++ {
		fill(i, 0, wallColor)
		fill(i, n+1, wallColor)
		fill(0, i, wallColor)
		fill(n+1, i, wallColor)
	}

	floor := floorColors
	if len(scene.Tiles) > 0 {
		floor = sandColors
	}
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			c := blockedColor
			if scene.Walkable == nil || scene.Walkable[x][y] {
				c = floor[(x+y)%2]
			}
			fill(x+1, y+1, c)
		}
	}

	for _, f := range scene.Food {
		col, row := cellOf(scene, f.Point)
		dc.SetColor(f.RGBA)
		dc.DrawCircle((float64(col)+0.5)*px, (float64(row)+0.5)*px, px*0.3)
		dc.Fill()
	}

	for _, t := range scene.Trails {
		col, row := cellOf(scene, t.Point)
		dc.SetColor(t.RGBA)
		dc.DrawRoundedRectangle(float64(col)*px+2, float64(row)*px+2, px-4, px-4, 3)
		dc.Fill()
	}

	for _, a := range scene.Actors {
		col, row := cellOf(scene, a.Location)
		cx, cy := (float64(col)+0.5)*px, (float64(row)+0.5)*px
		dc.SetColor(a.RGBA)
		dc.SetLineWidth(2)
		dc.DrawCircle(cx, cy, px*0.45)
		dc.Stroke()
		if a.OverheadText != "" {
			dc.SetColor(textColor)
			dc.DrawStringAnchored(a.OverheadText, cx, cy-px*0.6, 0.5, 0)
		}
	}
}

func drawPanel(dc *gg.Context, overlay Overlay, x, height float64) {
	dc.SetColor(panelColor)
	dc.DrawRectangle(x, 0, panelWidth, height)
	dc.Fill()

	y := panelPadding + lineHeight
	dc.SetColor(titleColor)
	dc.DrawString(overlay.Title, x+panelPadding, y)

	dc.SetColor(textColor)
	for _, line := range overlay.Lines {
		y += lineHeight
		dc.DrawString(line.Left, x+panelPadding, y)
		if line.Right != "" {
			dc.DrawStringAnchored(line.Right, x+panelWidth-panelPadding, y, 1, 0)
		}
	}
}

func findFont() string {
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
