package view

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
)

// Canvas is the part of tcell.Screen the terminal renderer writes to
type Canvas interface {
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
}

const (
	wallRune  = '█'
	floorRune = '·'
	trailRune = '■'
	foodRune  = '●'
	headRune  = '@'
)

// termCellWidth keeps grid cells roughly square in a terminal
const termCellWidth = 2

// DrawTerminal draws the scene at the top-left and the overlay to its right
func DrawTerminal(c Canvas, scene Scene, overlay Overlay) {
	panelX := 0
	if scene.HasArena() {
		drawTerminalArena(c, scene)
		panelX = (scene.Size+2)*termCellWidth + 2
	}

	title := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	drawText(c, panelX, 0, overlay.Title, title)
	for i, line := range overlay.Lines {
		text := line.Left
		if line.Right != "" {
			text += ": " + line.Right
		}
		drawText(c, panelX, i+1, text, tcell.StyleDefault)
	}
}

func drawTerminalArena(c Canvas, scene Scene) {
	n := scene.Size
	put := func(col, row int, r rune, style tcell.Style) {
		for i := 0; i < termCellWidth; i++ {
			ch := r
			if i > 0 && r != wallRune {
				ch = ' '
			}
			c.SetContent(col*termCellWidth+i, row, ch, nil, style)
		}
	}

	wall := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i := 0; i < n+2; i++ {
		put(i, 0, wallRune, wall)
		put(i, n+1, wallRune, wall)
		put(0, i, wallRune, wall)
		put(n+1, i, wallRune, wall)
	}

	floor := tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	blocked := tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			if scene.Walkable == nil || scene.Walkable[x][y] {
				put(x+1, y+1, floorRune, floor)
			} else {
				put(x+1, y+1, wallRune, blocked)
			}
		}
	}

	for _, f := range scene.Food {
		col, row := cellOf(scene, f.Point)
		put(col, row, foodRune, styleFor(f.RGBA))
	}
	for _, t := range scene.Trails {
		col, row := cellOf(scene, t.Point)
		put(col, row, trailRune, styleFor(t.RGBA))
	}
	for _, a := range scene.Actors {
		col, row := cellOf(scene, a.Location)
		if col < 0 || row < 0 || col > n+1 || row > n+1 {
			continue
		}
		put(col, row, headRune, styleFor(a.RGBA).Bold(true))
	}
}

func styleFor(c color.RGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

func drawText(c Canvas, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		c.SetContent(x+i, y, r, nil, style)
	}
}
