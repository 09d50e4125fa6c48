package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells, each holding 2x4 dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set turns on the dot at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Plot marks the point (x, y) of the rectangle [0, w) x [0, h), with y
// pointing up.
func (c *Canvas) Plot(x, y, w, h float64) {
	cw, ch := c.Width*2, c.Height*4
	px := int(x / w * float64(cw))
	py := ch - 1 - int(y/h*float64(ch))
	c.Set(px, py)
}

// Frame draws the outline of the canvas.
func (c *Canvas) Frame() {
	cw, ch := c.Width*2-1, c.Height*4-1
	c.DrawLine(0, 0, cw, 0)
	c.DrawLine(cw, 0, cw, ch)
	c.DrawLine(cw, ch, 0, ch)
	c.DrawLine(0, ch, 0, 0)
}
